// Package cli implements the remind command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calvinalkan/remind/internal/config"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// ErrFlagRequiresArg is returned when a global flag is missing its value.
var errFlagRequiresArg = fmt.Errorf("flag requires an argument")

// Run is the main entry point. Returns exit code.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmd := flags.remaining[0]
	if cmd == "-h" || cmd == helpFlag || cmd == "help" {
		printUsage(out)

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:  flags.workDir,
		ConfigPath:       flags.configPath,
		VaultDirOverride: flags.vaultDir,
		Env:              env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	// Cancel command context when a signal arrives.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ioCtx := NewIO(out, errOut)

	var cmdErr error

	switch cmd {
	case "run":
		cmdErr = cmdRun(ctx, ioCtx, errOut, cfg, flags.remaining[1:])
	case "sync":
		cmdErr = cmdSync(ctx, ioCtx, cfg, flags.remaining[1:])
	case "ls":
		cmdErr = cmdLs(ctx, ioCtx, cfg, flags.remaining[1:])
	case "set":
		cmdErr = cmdSet(ctx, ioCtx, cfg, flags.remaining[1:])
	case "clear":
		cmdErr = cmdClear(ctx, ioCtx, cfg, flags.remaining[1:])
	case "new":
		cmdErr = cmdNew(ctx, ioCtx, cfg, flags.remaining[1:])
	case "tags":
		cmdErr = cmdTags(ctx, ioCtx, cfg, flags.remaining[1:])
	case "repl":
		cmdErr = cmdRepl(ctx, ioCtx, stdin, cfg, flags.remaining[1:])
	case "print-config":
		cmdErr = cmdPrintConfig(ioCtx, cfg)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}

	if cmdErr != nil {
		fprintln(errOut, "error:", cmdErr)

		return 1
	}

	return ioCtx.Finish()
}

func printUsage(w io.Writer) {
	fprintln(w, `remind - reminders kept in markdown frontmatter

Usage: remind [global flags] <command> [args]

Commands:
  run           Run the background reconciler daemon
  sync          Run one scan + reconcile pass
  ls            List active reminders, sorted by time
  set           Set or replace the reminder on a document
  clear         Remove the reminder from a document
  new           Create a standalone reminder document
  tags          List frontmatter tags across the vault
  repl          Interactive reminder shell
  print-config  Show resolved configuration

Global flags:
  -C, --cwd DIR     Resolve relative paths from DIR
  -c, --config FILE Load configuration from FILE
      --vault DIR   Vault directory (overrides config)

Run 'remind <command> --help' for command details.`)
}

type globalFlags struct {
	workDir    string
	configPath string
	vaultDir   string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok && after != "" {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	if arg == "--vault" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.vaultDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--vault="); ok {
		flags.vaultDir = after

		return consumedOne, nil
	}

	return consumedNone, nil
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}
