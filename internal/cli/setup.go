package cli

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/calvinalkan/remind/internal/config"
	"github.com/calvinalkan/remind/internal/engine"
	"github.com/calvinalkan/remind/internal/fs"
	"github.com/calvinalkan/remind/internal/notify"
	"github.com/calvinalkan/remind/internal/vault"
)

// newService assembles the engine over the real filesystem and an
// in-process scheduler.
//
// One-shot commands get a scheduler that lives only for the command: the
// document writes are the durable effect, and the daemon rebuilds its
// notification projection from them on its next pass.
func newService(cfg config.Config, logOut io.Writer) (*engine.Service, *notify.Memory) {
	store := newStore(cfg)
	sched := notify.NewMemory()

	svc := engine.New(store, sched, engine.Options{
		ScanFolder:    cfg.ScanFolder,
		DefaultFolder: cfg.DefaultFolder,
		CheckInterval: time.Duration(cfg.CheckIntervalMinutes) * time.Minute,
		Logger:        newLogger(cfg.LogLevel, logOut),
	})

	return svc, sched
}

func newStore(cfg config.Config) *vault.DirStore {
	return vault.NewDirStore(fs.NewReal(), cfg.VaultDirAbs)
}

// newLogger builds the slog logger commands hand to the engine. Scan and
// reconcile diagnostics go to stderr so stdout stays parseable.
func newLogger(level string, out io.Writer) *slog.Logger {
	if out == nil {
		out = io.Discard
	}

	lvl := slog.LevelInfo

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))
}
