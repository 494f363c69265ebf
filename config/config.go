// Package config loads the moves-upload YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moves-management/moves-upload/errs"
)

const (
	Smartsheet = "smartsheet"
	Google     = "google"
)

const (
	Denver       = "Denver"
	WesternSlope = "Western Slope"
)

const (
	EncodingUTF8    = "utf-8"
	EncodingWin1252 = "windows-1252"
)

type Config struct {
	Backend     string     `yaml:"backend"`
	Workdir     string     `yaml:"workdir"`
	Credentials string     `yaml:"credentials"`
	Secrets     Secrets    `yaml:"secrets"`
	Locations   []string   `yaml:"locations"`
	Sheets      Sheets     `yaml:"sheets"`
	DateUpdate  DateUpdate `yaml:"date_update"`
	Batching    Batching   `yaml:"batching"`
	Input       Input      `yaml:"input"`
}

type Secrets struct {
	Store   string `yaml:"store"`
	Service string `yaml:"service"`
	AWS     struct {
		Region string `yaml:"region"`
		Prefix string `yaml:"prefix"`
	} `yaml:"aws"`
}

// Sheets holds the target sheet identifiers. Gifts are keyed by location.
type Sheets struct {
	Actions   string            `yaml:"actions"`
	Proposals string            `yaml:"proposals"`
	Gifts     map[string]string `yaml:"gifts"`
}

// DateUpdate names the cell pair used for the 'last updated' audit swap.
type DateUpdate struct {
	Location    string `yaml:"location"`
	SheetID     string `yaml:"sheet_id"`
	ColumnName  string `yaml:"column_name"`
	TargetRowID int64  `yaml:"target_row_id"`
	OldRowID    int64  `yaml:"old_row_id"`
}

type Batching struct {
	DeleteBatch int           `yaml:"delete_batch"`
	DeletePause time.Duration `yaml:"delete_pause"`
	AddBatch    int           `yaml:"add_batch"`
	AddPause    time.Duration `yaml:"add_pause"`
}

type Input struct {
	Encoding string `yaml:"encoding"`
}

func NewConfig() *Config {
	return &Config{
		Backend: Smartsheet,
		Secrets: Secrets{
			Store:   "file",
			Service: "smartsheet",
		},
		Locations: []string{Denver, WesternSlope},
		Sheets: Sheets{
			Gifts: map[string]string{},
		},
		DateUpdate: DateUpdate{
			Location: Denver,
		},
		Batching: Batching{
			DeleteBatch: 300,
			DeletePause: 1 * time.Second,
			AddBatch:    200,
			AddPause:    500 * time.Millisecond,
		},
		Input: Input{
			Encoding: EncodingUTF8,
		},
	}
}

// Load reads the YAML configuration file at path over the defaults. A missing file leaves the defaults in place.
func (c *Config) Load(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errs.ConfigError("config", "unable to read %v (%v)", path, err)
	}

	return c.Decode(b)
}

func (c *Config) Decode(b []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return errs.ConfigError("config", "invalid configuration (%v)", err)
	}

	return nil
}

// Validate checks that everything an upload run needs is present.
func (c *Config) Validate() error {
	switch c.Backend {
	case Smartsheet, Google:
	default:
		return errs.ConfigError("config", "unsupported backend '%v'", c.Backend)
	}

	if c.Backend == Google && strings.TrimSpace(c.Credentials) == "" {
		return errs.ConfigError("config", "Google Sheets backend requires a credentials file")
	}

	if strings.TrimSpace(c.Sheets.Actions) == "" {
		return errs.ConfigError("config", "missing 'actions' sheet ID")
	}

	if strings.TrimSpace(c.Sheets.Proposals) == "" {
		return errs.ConfigError("config", "missing 'proposals' sheet ID")
	}

	for _, location := range c.Locations {
		if _, err := c.GiftsSheet(location); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Input.Encoding) {
	case "", EncodingUTF8, "utf8", EncodingWin1252, "cp1252":
	default:
		return errs.ConfigError("config", "unsupported input encoding '%v'", c.Input.Encoding)
	}

	if c.Batching.DeleteBatch <= 0 || c.Batching.AddBatch <= 0 {
		return errs.ConfigError("config", "batch sizes must be greater than zero")
	}

	return nil
}

// Location returns the configured location matching name (case-insensitive).
func (c *Config) Location(name string) (string, error) {
	for _, l := range c.Locations {
		if strings.EqualFold(strings.TrimSpace(l), strings.TrimSpace(name)) {
			return l, nil
		}
	}

	return "", errs.ConfigError("config", "unknown location '%v' (expected one of %v)", name, strings.Join(c.Locations, ", "))
}

// GiftsSheet returns the gifts sheet ID for a location.
func (c *Config) GiftsSheet(location string) (string, error) {
	for k, v := range c.Sheets.Gifts {
		if strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(location)) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}

	return "", errs.ConfigError("config", "missing 'gifts' sheet ID for location '%v'", location)
}

// CanUpdateDate returns nil if the timestamp audit swap is configured and allowed for the location.
func (c *Config) CanUpdateDate(location string) error {
	if !strings.EqualFold(strings.TrimSpace(c.DateUpdate.Location), strings.TrimSpace(location)) {
		return errs.ConfigError("date-update", "last updated date can only be updated for location '%v'", c.DateUpdate.Location)
	}

	u := c.DateUpdate
	if strings.TrimSpace(u.SheetID) == "" || strings.TrimSpace(u.ColumnName) == "" || u.TargetRowID == 0 || u.OldRowID == 0 {
		return errs.ConfigError("date-update", "incomplete 'date_update' configuration")
	}

	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("backend:%v workdir:%v secrets:%v/%v actions:%v proposals:%v gifts:%v",
		c.Backend, c.Workdir, c.Secrets.Store, c.Secrets.Service, c.Sheets.Actions, c.Sheets.Proposals, c.Sheets.Gifts)
}
