package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/calvinalkan/remind/internal/config"
	"github.com/calvinalkan/remind/internal/reminder"

	flag "github.com/spf13/pflag"
)

func cmdNew(ctx context.Context, ioCtx *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		printNewHelp(ioCtx)

		return nil
	}

	flags := flag.NewFlagSet("new", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	at := flags.String("at", "", "reminder time (YYYY-MM-DDTHH:mm:ss, local)")
	recur := flags.String("recur", "", "recurrence rule")
	alarm := flags.Bool("alarm", false, "use the native full-screen alarm")
	persistent := flags.Int("persistent", 0, "resend every N minutes until dismissed")

	err := flags.Parse(args)
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}

	title := strings.TrimSpace(strings.Join(flags.Args(), " "))
	if title == "" {
		return errTitleRequired
	}

	if *at == "" {
		return errTimeRequired
	}

	when, err := reminder.ParseTime(*at)
	if err != nil {
		return fmt.Errorf("invalid --at value %q: %w", *at, err)
	}

	fields := reminder.Fields{}
	if flags.Changed("recur") {
		fields.Rule = reminder.RuleOf(*recur)
	}

	if flags.Changed("alarm") {
		fields.Alarm = reminder.AlarmOf(*alarm)
	}

	if flags.Changed("persistent") {
		fields.Persistent = reminder.PersistentOf(*persistent)
	}

	svc, _ := newService(cfg, nil)

	handle, err := svc.CreateStandalone(ctx, title, when, fields)
	if err != nil {
		return err
	}

	ioCtx.Printf("created %s\n", handle)

	return nil
}

func printNewHelp(ioCtx *IO) {
	ioCtx.Println(`Usage: remind new <title...> --at TIME [--recur RULE] [--alarm] [--persistent N]

Creates a standalone reminder document in the configured default folder.
Name collisions get a numeric suffix ("Buy Milk (1).md").`)
}
