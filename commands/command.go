package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/moves-management/moves-upload/auth"
	"github.com/moves-management/moves-upload/config"
	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/run"
	"github.com/moves-management/moves-upload/secrets"
	"github.com/moves-management/moves-upload/sheets"
	"github.com/moves-management/moves-upload/transform"
)

const APP = "moves-upload"

type Options struct {
	Config string
	Debug  bool
}

type command struct {
	workdir  string
	location string
	debug    bool
}

var stdin = bufio.NewReader(os.Stdin)

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (secrets, tokens). Defaults to the configured workdir")
	flagset.StringVar(&c.location, "location", c.location, fmt.Sprintf("Location ('%v' or '%v')", config.Denver, config.WesternSlope))

	return flagset
}

// configure loads the configuration file and applies the command line overrides.
func (c *command) configure(options *Options) (*config.Config, error) {
	c.debug = options.Debug

	conf := config.NewConfig()
	if err := conf.Load(options.Config); err != nil {
		return nil, err
	}

	if strings.TrimSpace(c.workdir) != "" {
		conf.Workdir = c.workdir
	} else if strings.TrimSpace(conf.Workdir) == "" {
		conf.Workdir = DEFAULT_WORKDIR
	}

	if c.debug {
		debugf("config  %v", conf)
	}

	return conf, nil
}

// secretStore returns the secret store for the configured service.
func (c *command) secretStore(ctx context.Context, conf *config.Config) (secrets.Store, error) {
	switch strings.ToLower(strings.TrimSpace(conf.Secrets.Store)) {
	case "", "file":
		store := secrets.NewFile(conf.Workdir, conf.Secrets.Service)
		if c.debug {
			debugf("secrets %v", store.Path())
		}

		return store, nil

	case "aws":
		return secrets.NewAWS(ctx, conf.Secrets.AWS.Region, conf.Secrets.AWS.Prefix, conf.Secrets.Service)

	default:
		return nil, errs.ConfigError("config", "unsupported secret store '%v'", conf.Secrets.Store)
	}
}

// provider returns the credential provider for the configured backend.
func (c *command) provider(ctx context.Context, conf *config.Config, store secrets.Store) (*auth.Provider, error) {
	prompt := auth.Interactive(listenAddr(auth.RedirectURL), stdin, os.Stdout)

	var p *auth.Provider
	var err error

	switch conf.Backend {
	case config.Google:
		credentials := conf.Credentials
		if credentials == "" {
			credentials = DEFAULT_CREDENTIALS
		}

		p, err = auth.NewGoogle(credentials, store, prompt)

	default:
		p, err = auth.NewSmartsheet(ctx, store, prompt)
	}

	if err != nil {
		return nil, err
	}

	p.Warn = warnf

	return p, nil
}

// connect acquires a credential and returns the remote spreadsheet service for the configured backend.
func (c *command) connect(ctx context.Context, conf *config.Config, store secrets.Store) (sheets.Service, error) {
	p, err := c.provider(ctx, conf, store)
	if err != nil {
		return nil, err
	}

	client, err := p.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%w)", err)
	}

	switch conf.Backend {
	case config.Google:
		google, err := sheets.NewGoogle(ctx, client)
		if err != nil {
			return nil, err
		}

		return google, nil

	default:
		return sheets.NewSmartsheet(client, sheets.SmartsheetAPI), nil
	}
}

// runContext builds the run context for the command's location, with progress reported to the log.
func (c *command) runContext(conf *config.Config, service sheets.Service) (*run.RunContext, error) {
	location := c.location
	if strings.TrimSpace(location) == "" {
		location = config.Denver
	}

	rc, err := run.NewRunContext(conf, location, service)
	if err != nil {
		return nil, err
	}

	rc.Progress = infof
	rc.Warn = warnf

	if c.debug {
		debugf("run     %v  location:%v", rc.ID, rc.Location)
	}

	return rc, nil
}

// resolveSheet resolves a sheet name ('actions', 'proposals' or 'gifts') to the configured sheet ID. Anything else
// is taken to be a sheet ID.
func resolveSheet(rc *run.RunContext, sheet string) (string, error) {
	switch normalise(sheet) {
	case "":
		return "", fmt.Errorf("--sheet is a required option")

	case "actions", "action":
		return rc.SheetID(transform.KindActions)

	case "proposals", "proposal":
		return rc.SheetID(transform.KindProposals)

	case "gifts", "gift":
		return rc.SheetID(transform.KindGifts)

	default:
		return clean(sheet), nil
	}
}

func listenAddr(redirect string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(redirect, "http://"), "https://")

	return strings.TrimSuffix(s, "/")
}

func helpOptions(flagset *flag.FlagSet) {
	fmt.Println("  Options:")
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	count := 0
	flag.VisitAll(func(f *flag.Flag) {
		count++
	})

	if count > 0 {
		fmt.Println()
		fmt.Println("  Global options:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}

func absolute(file string) string {
	if path, err := filepath.Abs(file); err == nil {
		return path
	}

	return file
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}
