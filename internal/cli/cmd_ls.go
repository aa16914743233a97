package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/calvinalkan/remind/internal/config"
	"github.com/calvinalkan/remind/internal/reminder"

	flag "github.com/spf13/pflag"
)

func cmdLs(ctx context.Context, ioCtx *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		printLsHelp(ioCtx)

		return nil
	}

	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	limit := flags.IntP("limit", "n", 0, "show at most N reminders (0 = all)")

	err := flags.Parse(args)
	if err != nil {
		return fmt.Errorf("ls: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	svc, _ := newService(cfg, nil)

	// The scan makes no ordering guarantee; sorting is the caller's job.
	found, faults := svc.ScanReport()
	for _, fault := range faults {
		ioCtx.Warn(fault)
	}

	slices.SortFunc(found, func(a, b reminder.Reminder) int { return a.Time.Compare(b.Time) })

	if *limit > 0 && len(found) > *limit {
		found = found[:*limit]
	}

	for _, rec := range found {
		printReminder(ioCtx, rec)
	}

	if len(found) == 0 {
		ioCtx.Println("no reminders")
	}

	return nil
}

func printReminder(ioCtx *IO, rec reminder.Reminder) {
	line := fmt.Sprintf("%s  %s", rec.TimeString(), rec.DocumentName)

	if rec.Rule != "" {
		line += fmt.Sprintf("  (every %s)", rec.Rule)
	}

	if rec.Alarm {
		line += "  [alarm]"
	}

	if rec.Persistent > 0 {
		line += fmt.Sprintf("  [nag %dm]", rec.Persistent)
	}

	ioCtx.Println(line)
}

func printLsHelp(ioCtx *IO) {
	ioCtx.Println(`Usage: remind ls [-n N]

Lists active reminders found in vault frontmatter, sorted by time.`)
}
