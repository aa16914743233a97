package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/calvinalkan/remind/internal/config"
	"github.com/calvinalkan/remind/internal/optimistic"
	"github.com/calvinalkan/remind/internal/reminder"

	"github.com/peterh/liner"
)

var errBadIndex = errors.New("no reminder with that number")

// cmdRepl runs the interactive reminder shell. The shell works against the
// optimistic cache: every mutation updates the listing immediately and the
// vault write happens behind it, exactly like the mobile UI the engine was
// built for.
func cmdRepl(ctx context.Context, ioCtx *IO, _ io.Reader, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		printReplHelp(ioCtx)

		return nil
	}

	svc, _ := newService(cfg, nil)

	cache := optimistic.NewCache(svc, func(op string, err error) {
		ioCtx.Printf("! %s failed: %v (rolled back)\n", op, err)
	})
	cache.Refresh(svc.Scan())

	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)

	ioCtx.Println("remind repl - type 'help' for commands")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		prompt := "remind> "
		if cache.Syncing() {
			prompt = "remind(sync)> "
		}

		input, err := line.Prompt(prompt)
		if err != nil {
			// Ctrl-C / Ctrl-D both end the session.
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}

			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		if input == "exit" || input == "quit" || input == "q" {
			break
		}

		err = replDispatch(ctx, ioCtx, svc.Scan, cache, input)
		if err != nil {
			ioCtx.Printf("error: %v\n", err)
		}
	}

	// Let in-flight mutations settle before the process exits.
	cache.Wait()

	return nil
}

func replDispatch(ctx context.Context, ioCtx *IO, scan func() []reminder.Reminder, cache *optimistic.Cache, input string) error {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		printReplHelp(ioCtx)

		return nil
	case "ls":
		replList(ioCtx, cache)

		return nil
	case "refresh":
		cache.Refresh(scan())
		replList(ioCtx, cache)

		return nil
	case "add":
		return replAdd(ctx, cache, rest)
	case "del":
		return replDelete(ctx, cache, rest)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// replList prints the cached reminders, numbered for del.
func replList(ioCtx *IO, cache *optimistic.Cache) {
	reminders := sortedCache(cache)
	if len(reminders) == 0 {
		ioCtx.Println("no reminders")

		return
	}

	for i, rec := range reminders {
		ioCtx.Printf("%2d. ", i+1)
		printReminder(ioCtx, rec)
	}
}

// replAdd parses "add <time> <title...>" and creates a standalone reminder.
func replAdd(ctx context.Context, cache *optimistic.Cache, rest string) error {
	timeStr, title, _ := strings.Cut(rest, " ")

	when, err := reminder.ParseTime(timeStr)
	if err != nil {
		return fmt.Errorf("usage: add <YYYY-MM-DDTHH:mm:ss> <title>: %w", err)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return errTitleRequired
	}

	cache.Add(ctx, title, when, reminder.Fields{})

	return nil
}

// replDelete parses "del <number> [file]" against the current listing.
func replDelete(ctx context.Context, cache *optimistic.Cache, rest string) error {
	numStr, mode, _ := strings.Cut(rest, " ")

	idx, err := strconv.Atoi(numStr)
	if err != nil {
		return fmt.Errorf("usage: del <number> [file]: %w", err)
	}

	reminders := sortedCache(cache)
	if idx < 1 || idx > len(reminders) {
		return errBadIndex
	}

	deleteDocument := strings.TrimSpace(mode) == "file"
	cache.Delete(ctx, reminders[idx-1], deleteDocument)

	return nil
}

func sortedCache(cache *optimistic.Cache) []reminder.Reminder {
	reminders := cache.Reminders()
	slices.SortFunc(reminders, func(a, b reminder.Reminder) int { return a.Time.Compare(b.Time) })

	return reminders
}

func printReplHelp(ioCtx *IO) {
	ioCtx.Println(`Commands:
  ls                          List cached reminders
  refresh                     Re-scan the vault and list
  add <time> <title>          Create a standalone reminder
  del <number> [file]         Clear a reminder ('file' deletes the document)
  help                        Show this help
  exit / quit / q             Leave`)
}
