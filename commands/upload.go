package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/moves-management/moves-upload/config"
	"github.com/moves-management/moves-upload/run"
)

var UploadCmd = Upload{
	command: command{
		workdir:  "",
		location: config.Denver,
		debug:    false,
	},

	updateDate: false,
	encoding:   "",
}

type Upload struct {
	command
	updateDate bool
	encoding   string
	flags      *flag.FlagSet
}

func (cmd *Upload) Name() string {
	return "upload"
}

func (cmd *Upload) Description() string {
	return "Replaces the actions, proposals and gifts sheets with the contents of a set of CSV exports"
}

func (cmd *Upload) Usage() string {
	return "[--location <location>] [--update-date] [--encoding <encoding>] <file> ..."
}

func (cmd *Upload) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] upload [options] <file> ...\n", APP)
	fmt.Println()
	fmt.Println("  Clears the actions, proposals and gifts sheets for a location and uploads the CSV exports. Each")
	fmt.Println("  file is matched to a sheet by name i.e. the file name must include 'action', 'proposal' or 'gift'.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s upload --location Denver actions.csv proposals.csv gifts.csv\n", APP)
	fmt.Printf("    %s --debug upload --location \"Western Slope\" --encoding windows-1252 gifts-2024.csv\n", APP)
	fmt.Println()
}

// FlagSet is created once so that the file arguments left after parsing are available to Execute.
func (cmd *Upload) FlagSet() *flag.FlagSet {
	if cmd.flags != nil {
		return cmd.flags
	}

	flagset := cmd.flagset("upload")

	flagset.BoolVar(&cmd.updateDate, "update-date", cmd.updateDate, fmt.Sprintf("Updates the 'last updated' date after the upload (%v only)", config.Denver))
	flagset.StringVar(&cmd.encoding, "encoding", cmd.encoding, "CSV file encoding ('utf-8' or 'windows-1252'). Defaults to the configured encoding")

	cmd.flags = flagset

	return flagset
}

func (cmd *Upload) Execute(args ...any) error {
	options := args[0].(*Options)
	files := cmd.FlagSet().Args()

	if len(files) == 0 {
		return fmt.Errorf("no files to upload")
	}

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if err := conf.Validate(); err != nil {
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

	infof("upload  %v  %v file(s) for %v", rc.ID, len(files), rc.Location)

	report, err := run.Run(ctx, rc, files, run.Options{
		UpdateDate: cmd.updateDate,
		Encoding:   cmd.encoding,
	})

	summarise(report)

	if err != nil {
		return fmt.Errorf("upload failed (%w)", err)
	}

	infof("upload  %v  complete", rc.ID)

	return nil
}

func summarise(report run.Report) {
	for _, s := range report.Sheets {
		infof("%-9v sheet:%v  files:%v  records:%v  cleared:%v  added:%v", s.Kind, s.SheetID, len(s.Files), s.Records, s.Cleared, s.Added)
	}

	if len(report.Skipped) > 0 {
		warnf("skipped %v file(s)", len(report.Skipped))
	}

	if report.Swap != nil {
		infof("last updated date %v (previous %v)", report.Swap.Today, report.Swap.Previous)
	}
}
