package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/moves-management/moves-upload/config"
)

var GetCmd = Get{
	command: command{
		workdir:  "",
		location: config.Denver,
		debug:    false,
	},

	sheet: "",
	file:  time.Now().Format("2006-01-02T150405.tsv"),
}

type Get struct {
	command
	sheet string
	file  string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves a sheet and stores it to a local TSV file"
}

func (cmd *Get) Usage() string {
	return "--sheet <sheet> --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] get [options] --sheet <sheet> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the non-blank rows of a sheet to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s --debug get --sheet actions --file actions.tsv\n", APP)
	fmt.Printf("    %s get --location \"Western Slope\" --sheet gifts\n", APP)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Sheet to retrieve ('actions', 'proposals', 'gifts' or a sheet ID)")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
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

	service, err := cmd.connect(ctx, conf, store)
	if err != nil {
		return err
	}

	rc, err := cmd.runContext(conf, service)
	if err != nil {
		return err
	}

	sheetID, err := resolveSheet(rc, cmd.sheet)
	if err != nil {
		return err
	}

	if cmd.debug {
		debugf("sheet   ID:%s", sheetID)
	}

	sheet, err := service.GetSheet(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("unable to retrieve sheet %v (%w)", sheetID, err)
	}

	tmp, err := os.CreateTemp(os.TempDir(), APP)
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := sheetToTSV(tmp, sheet); err != nil {
		return fmt.Errorf("error creating TSV file (%w)", err)
	}

	tmp.Close()

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	infof("Retrieved sheet %v to file %s", sheet, absolute(cmd.file))

	return nil
}
