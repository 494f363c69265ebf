package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir:  "",
		location: "",
		debug:    false,
	},
}

type Authorise struct {
	command
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises moves-upload to access the configured Smartsheet or Google Sheets account"
}

func (cmd *Authorise) Usage() string {
	return "[--workdir <dir>]"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] authorise [options]\n", APP)
	fmt.Println()
	fmt.Println("  Runs the OAuth2 authorisation flow and stores the resulting token in the configured secret store.")
	fmt.Println("  Open the displayed URL in a browser and either let the browser redirect back to the local listener")
	fmt.Println("  or paste the authorisation code (or the full redirect URL) at the prompt.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s authorise\n", APP)
	fmt.Printf("    %s --config moves-upload.yaml authorise --workdir ./.moves\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	return cmd.flagset("authorise")
}

func (cmd *Authorise) Execute(args ...any) error {
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

	p, err := cmd.provider(ctx, conf, store)
	if err != nil {
		return err
	}

	token, err := p.Authorise(ctx)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	if cmd.debug {
		debugf("token   type:%v  expires:%v", token.Type(), token.Expiry)
	}

	infof("Authorised %v access", conf.Backend)

	return nil
}
