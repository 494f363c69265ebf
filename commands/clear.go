package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/moves-management/moves-upload/config"
	"github.com/moves-management/moves-upload/run"
	"github.com/moves-management/moves-upload/sheetsync"
	"github.com/moves-management/moves-upload/transform"
)

var ClearCmd = Clear{
	command: command{
		workdir:  "",
		location: config.Denver,
		debug:    false,
	},

	sheet: "",
}

type Clear struct {
	command
	sheet string
}

func (cmd *Clear) Name() string {
	return "clear"
}

func (cmd *Clear) Description() string {
	return "Deletes all the non-blank rows from a sheet"
}

func (cmd *Clear) Usage() string {
	return "--sheet <sheet>"
}

func (cmd *Clear) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] clear [options] --sheet <sheet>\n", APP)
	fmt.Println()
	fmt.Println("  Deletes the non-blank rows from a sheet. The sheet may be 'actions', 'proposals', 'gifts', 'all'")
	fmt.Println("  or a sheet ID.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s clear --sheet actions\n", APP)
	fmt.Printf("    %s clear --location \"Western Slope\" --sheet gifts\n", APP)
	fmt.Printf("    %s clear --sheet all\n", APP)
	fmt.Println()
}

func (cmd *Clear) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("clear")

	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Sheet to clear ('actions', 'proposals', 'gifts', 'all' or a sheet ID)")

	return flagset
}

func (cmd *Clear) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	store, err := cmd.secretStore(ctx, conf)
	if err != nil {
		return err
	}

	if err := checkPassword(ctx, store); err != nil {
		return err
	}

	service, err := cmd.connect(ctx, conf, store)
	if err != nil {
		return err
	}

	rc, err := cmd.runContext(conf, service)
	if err != nil {
		return err
	}

	if normalise(cmd.sheet) == "all" {
		for _, kind := range transform.Kinds {
			sheetID, err := rc.SheetID(kind)
			if err != nil {
				return err
			}

			if err := clearSheet(ctx, rc.Synchronizer(kind), sheetID); err != nil {
				return err
			}
		}

		return nil
	}

	sheetID, err := resolveSheet(rc, cmd.sheet)
	if err != nil {
		return err
	}

	return clearSheet(ctx, synchronizer(rc, sheetID), sheetID)
}

func clearSheet(ctx context.Context, s *sheetsync.Synchronizer, sheetID string) error {
	deleted, err := s.ClearNonBlankRows(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("error clearing sheet %v (%w)", sheetID, err)
	}

	infof("Deleted %v rows from sheet %v", deleted, sheetID)

	return nil
}

// synchronizer returns a sheet synchronizer for an arbitrary sheet, with the batching options from the run
// context and progress reported to the log.
func synchronizer(rc *run.RunContext, sheetID string) *sheetsync.Synchronizer {
	options := rc.Options
	options.Progress = func(e sheetsync.Event) {
		infof("%v  %-6v %v of %v rows", sheetID, e.Op, e.Done, e.Total)
	}

	return sheetsync.NewSynchronizer(rc.Service, options)
}
