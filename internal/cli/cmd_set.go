package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/remind/internal/config"
	"github.com/calvinalkan/remind/internal/reminder"
	"github.com/calvinalkan/remind/internal/vault"

	flag "github.com/spf13/pflag"
)

var (
	errDocumentRequired = errors.New("document path is required")
	errTimeRequired     = errors.New("--at is required")
	errTitleRequired    = errors.New("title is required")
)

func cmdSet(ctx context.Context, ioCtx *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		printSetHelp(ioCtx)

		return nil
	}

	flags := flag.NewFlagSet("set", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	at := flags.String("at", "", "reminder time (YYYY-MM-DDTHH:mm:ss, local)")
	recur := flags.String("recur", "", "recurrence rule (daily, weekly, \"3 days\", ...; empty clears)")
	alarm := flags.Bool("alarm", false, "use the native full-screen alarm")
	persistent := flags.Int("persistent", 0, "resend every N minutes until dismissed (0 clears)")

	err := flags.Parse(args)
	if err != nil {
		return fmt.Errorf("set: %w", err)
	}

	if flags.NArg() < 1 {
		return errDocumentRequired
	}

	if *at == "" {
		return errTimeRequired
	}

	when, err := reminder.ParseTime(*at)
	if err != nil {
		return fmt.Errorf("invalid --at value %q: %w", *at, err)
	}

	fields := reminder.Fields{}

	// Only flags the user actually passed are applied; everything else is
	// left as it is in the document.
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

	handle := documentHandle(cfg, flags.Arg(0))

	err = svc.SetReminder(ctx, handle, when, fields)
	if err != nil {
		return err
	}

	ioCtx.Printf("reminder set: %s at %s\n", flags.Arg(0), reminder.FormatTime(when))

	return nil
}

func cmdClear(ctx context.Context, ioCtx *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		ioCtx.Println(`Usage: remind clear <document>

Removes the reminder frontmatter from a vault document.`)

		return nil
	}

	if len(args) < 1 {
		return errDocumentRequired
	}

	svc, _ := newService(cfg, nil)

	err := svc.ClearReminder(ctx, documentHandle(cfg, args[0]))
	if err != nil {
		return err
	}

	ioCtx.Printf("reminder cleared: %s\n", args[0])

	return nil
}

// documentHandle maps a CLI document argument (vault-relative path, with or
// without extension) to a store handle.
func documentHandle(cfg config.Config, arg string) string {
	if !strings.HasSuffix(arg, vault.DocumentExt) {
		arg += vault.DocumentExt
	}

	if filepath.IsAbs(arg) {
		return arg
	}

	return filepath.Join(cfg.VaultDirAbs, arg)
}

func printSetHelp(ioCtx *IO) {
	ioCtx.Println(`Usage: remind set <document> --at TIME [--recur RULE] [--alarm] [--persistent N]

Sets or replaces the reminder on a vault document. The document path is
relative to the vault root; the .md extension is optional. Flags not
passed leave the document's existing settings untouched.`)
}
