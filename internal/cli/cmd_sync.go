package cli

import (
	"context"

	"github.com/calvinalkan/remind/internal/config"
	"github.com/calvinalkan/remind/internal/reminder"
	"github.com/calvinalkan/remind/internal/vault"
)

func cmdSync(ctx context.Context, ioCtx *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		ioCtx.Println(`Usage: remind sync

Runs one scan + reconcile pass and reports what would be scheduled.`)

		return nil
	}

	svc, sched := newService(cfg, nil)

	found, faults := svc.ScanReport()
	for _, fault := range faults {
		ioCtx.Warn(fault)
	}

	err := svc.ReconcileWith(ctx, found)
	if err != nil {
		return err
	}

	scheduled, err := sched.Scheduled()
	if err != nil {
		return err
	}

	ioCtx.Printf("%d notification(s) scheduled\n", len(scheduled))

	for _, entry := range scheduled {
		ioCtx.Printf("  %s  %s\n", entry.Trigger.Format(reminder.TimeLayout), entry.Content.Body)
	}

	return nil
}

func cmdTags(ctx context.Context, ioCtx *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		ioCtx.Println(`Usage: remind tags

Lists the distinct frontmatter tags used across the vault.`)

		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tags := vault.ScanTags(newStore(cfg))

	for _, tag := range tags {
		ioCtx.Println(tag)
	}

	if len(tags) == 0 {
		ioCtx.Println("no tags")
	}

	return nil
}
