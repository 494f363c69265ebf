package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/moves-management/moves-upload/config"
	"github.com/moves-management/moves-upload/records"
)

var PutCmd = Put{
	command: command{
		workdir:  "",
		location: config.Denver,
		debug:    false,
	},

	sheet:    "",
	file:     "",
	encoding: "",
}

type Put struct {
	command
	sheet    string
	file     string
	encoding string
}

func (cmd *Put) Name() string {
	return "put"
}

func (cmd *Put) Description() string {
	return "Replaces the rows in a sheet with the contents of a CSV file"
}

func (cmd *Put) Usage() string {
	return "--sheet <sheet> --file <file>"
}

func (cmd *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] put [options] --sheet <sheet> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Clears a sheet and uploads the rows from a CSV file as is. Columns are matched to the sheet")
	fmt.Println("  columns by title and unknown columns are ignored.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s put --sheet 4583173393803140 --file contacts.csv\n", APP)
	fmt.Printf("    %s put --sheet gifts --encoding windows-1252 --file gifts.csv\n", APP)
	fmt.Println()
}

func (cmd *Put) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("put")

	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Sheet to replace ('actions', 'proposals', 'gifts' or a sheet ID)")
	flagset.StringVar(&cmd.file, "file", cmd.file, "CSV file")
	flagset.StringVar(&cmd.encoding, "encoding", cmd.encoding, "CSV file encoding ('utf-8' or 'windows-1252'). Defaults to the configured encoding")

	return flagset
}

func (cmd *Put) Execute(args ...any) error {
	options := args[0].(*Options)

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	encoding := cmd.encoding
	if strings.TrimSpace(encoding) == "" {
		encoding = conf.Input.Encoding
	}

	list, err := readRecords(cmd.file, encoding)
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

	sheetID, err := resolveSheet(rc, cmd.sheet)
	if err != nil {
		return err
	}

	if cmd.debug {
		debugf("put     file:%v  sheet:%v  records:%v", absolute(cmd.file), sheetID, len(list))
	}

	s := synchronizer(rc, sheetID)

	deleted, err := s.ClearNonBlankRows(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("error clearing sheet %v (%w)", sheetID, err)
	}

	added, err := s.AppendRows(ctx, sheetID, list, "")
	if err != nil {
		return fmt.Errorf("error uploading %v to sheet %v (%w)", cmd.file, sheetID, err)
	}

	infof("Replaced %v rows in sheet %v with %v rows from %v", deleted, sheetID, added, cmd.file)

	return nil
}

func readRecords(file string, encoding string) ([]records.Record, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	_, rows, err := records.ReadCSV(f, encoding)
	if err != nil {
		return nil, fmt.Errorf("error reading %v (%w)", file, err)
	}

	list := make([]records.Record, 0, len(rows))
	for _, r := range rows {
		list = append(list, records.FromRaw(r))
	}

	return list, nil
}
