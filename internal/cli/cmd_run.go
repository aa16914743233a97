package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/calvinalkan/remind/internal/config"
	"github.com/calvinalkan/remind/internal/fs"
	"github.com/calvinalkan/remind/internal/notify"

	flag "github.com/spf13/pflag"
)

// lockFileName guards against two daemons reconciling the same vault.
const lockFileName = ".remind.lock"

func cmdRun(ctx context.Context, ioCtx *IO, logOut io.Writer, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		printRunHelp(ioCtx)

		return nil
	}

	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	err := flags.Parse(args)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fsys := fs.NewReal()

	lock, err := fs.TakeLock(fsys, filepath.Join(cfg.VaultDirAbs, lockFileName))
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer func() { _ = lock.Close() }()

	svc, sched := newService(cfg, logOut)

	sched.OnDeliver = func(p notify.Presented) {
		ioCtx.Printf("%s  %s\n", p.Content.Title, p.Content.Body)
	}

	ioCtx.Printf("watching %s (every %d minutes)\n", cfg.VaultDirAbs, cfg.CheckIntervalMinutes)

	return svc.Run(ctx)
}

func printRunHelp(ioCtx *IO) {
	ioCtx.Println(`Usage: remind run

Runs the background reconciler: scans the vault for reminder frontmatter,
reconciles scheduled notifications against it on the configured interval,
and prints notifications as they fire. Holds a lock so only one daemon
runs per vault. Stop with Ctrl-C.`)
}
