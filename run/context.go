// Package run orchestrates an upload: it parses and transforms the export files, clears the target sheets and
// appends the transformed records, and optionally swaps the 'last updated' audit timestamp.
package run

import (
	"time"

	"github.com/google/uuid"

	"github.com/moves-management/moves-upload/config"
	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/sheets"
	"github.com/moves-management/moves-upload/sheetsync"
	"github.com/moves-management/moves-upload/transform"
)

// RunContext holds everything a run needs. It is built once when a command starts and passed explicitly to
// each step.
type RunContext struct {
	ID       uuid.UUID
	Config   *config.Config
	Location string
	Service  sheets.Service
	Options  sheetsync.Options
	Clock    func() time.Time
	Progress func(format string, args ...any)
	Warn     func(format string, args ...any)
}

// NewRunContext builds the run context for a location, with the batching configuration and a new run ID.
func NewRunContext(conf *config.Config, location string, service sheets.Service) (*RunContext, error) {
	l, err := conf.Location(location)
	if err != nil {
		return nil, err
	}

	options := sheetsync.DefaultOptions()
	options.DeleteBatch = conf.Batching.DeleteBatch
	options.DeletePause = conf.Batching.DeletePause
	options.AddBatch = conf.Batching.AddBatch
	options.AddPause = conf.Batching.AddPause

	return &RunContext{
		ID:       uuid.New(),
		Config:   conf,
		Location: l,
		Service:  service,
		Options:  options,
		Clock:    time.Now,
	}, nil
}

// SheetID returns the target sheet for a kind, taking the gifts sheet from the run location.
func (rc *RunContext) SheetID(kind transform.Kind) (string, error) {
	switch kind {
	case transform.KindActions:
		if rc.Config.Sheets.Actions == "" {
			return "", errs.ConfigError("config", "missing 'actions' sheet ID")
		}
		return rc.Config.Sheets.Actions, nil

	case transform.KindProposals:
		if rc.Config.Sheets.Proposals == "" {
			return "", errs.ConfigError("config", "missing 'proposals' sheet ID")
		}
		return rc.Config.Sheets.Proposals, nil

	case transform.KindGifts:
		return rc.Config.GiftsSheet(rc.Location)

	default:
		return "", errs.ConfigError("config", "unknown sheet kind '%v'", kind)
	}
}

// Synchronizer returns a sheet synchronizer that reports progress for a sheet kind.
func (rc *RunContext) Synchronizer(kind transform.Kind) *sheetsync.Synchronizer {
	options := rc.Options
	options.Progress = func(e sheetsync.Event) {
		switch e.Op {
		case sheetsync.OpClear:
			rc.progress("%-9v deleted %v of %v rows", kind, e.Done, e.Total)

		case sheetsync.OpAppend:
			rc.progress("%-9v added %v of %v rows", kind, e.Done, e.Total)
		}
	}

	return sheetsync.NewSynchronizer(rc.Service, options)
}

func (rc *RunContext) now() time.Time {
	if rc.Clock != nil {
		return rc.Clock()
	}

	return time.Now()
}

func (rc *RunContext) progress(format string, args ...any) {
	if rc.Progress != nil {
		rc.Progress(format, args...)
	}
}

func (rc *RunContext) warn(format string, args ...any) {
	if rc.Warn != nil {
		rc.Warn(format, args...)
	}
}
