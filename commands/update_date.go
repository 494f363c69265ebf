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

var UpdateDateCmd = UpdateDate{
	command: command{
		workdir:  "",
		location: config.Denver,
		debug:    false,
	},
}

type UpdateDate struct {
	command
}

func (cmd *UpdateDate) Name() string {
	return "update-date"
}

func (cmd *UpdateDate) Description() string {
	return "Sets the 'last updated' date to today and moves the current date to the 'previous' row"
}

func (cmd *UpdateDate) Usage() string {
	return "[--location <location>]"
}

func (cmd *UpdateDate) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] update-date [options]\n", APP)
	fmt.Println()
	fmt.Println("  Copies the current 'last updated' date to the 'previous' row of the configured date sheet and")
	fmt.Printf("  sets the 'last updated' date to today. Only supported for %v.\n", config.Denver)
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s update-date\n", APP)
	fmt.Println()
}

func (cmd *UpdateDate) FlagSet() *flag.FlagSet {
	return cmd.flagset("update-date")
}

func (cmd *UpdateDate) Execute(args ...any) error {
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

	swap, err := run.SwapTimestamp(ctx, rc)
	if err != nil {
		return fmt.Errorf("error updating date (%w)", err)
	}

	infof("Updated '%v' in sheet %v to %v (previous %v)", swap.Column, swap.SheetID, swap.Today, swap.Previous)

	return nil
}
