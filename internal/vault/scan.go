package vault

import (
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/remind/internal/frontmatter"
	"github.com/calvinalkan/remind/internal/reminder"
)

// Scan depth caps. A runaway symlink cycle or a pathological vault must not
// pin the background task; reminders get a generous cap, the tag scan stays
// shallow because it runs on the UI path.
const (
	ReminderScanMaxDepth = 24
	TagScanMaxDepth      = 5
)

// ScanReminders walks the store from scanRoot and returns a reminder record
// for every document with a valid reminder timestamp.
//
// The walk is best effort: per-directory and per-file failures are
// swallowed so one bad entry cannot abort the scan, and entries without a
// recognizable file extension are treated as subdirectories (a failing list
// just means it wasn't one). If scanRoot is empty or does not resolve to a
// listable entry, the walk falls back to the store root. No ordering
// guarantee is made on the returned list; callers sort by time themselves.
func ScanReminders(store Store, scanRoot string) []reminder.Reminder {
	found, _ := ScanRemindersReport(store, scanRoot)

	return found
}

// ScanRemindersReport is [ScanReminders] plus a human-readable note for
// every entry the walk had to skip. The notes exist so a command can warn
// the user about scan degradation; they never change the scan result.
func ScanRemindersReport(store Store, scanRoot string) ([]reminder.Reminder, []string) {
	root := resolveScanRoot(store, scanRoot)

	var (
		found []reminder.Reminder
		notes []string
	)

	visit := func(handle, document string) {
		rec, ok := reminder.FromDocument(handle, DocumentName(store, handle), document)
		if !ok {
			return
		}

		found = append(found, rec)
	}

	onFault := func(handle string, err error) {
		notes = append(notes, fmt.Sprintf("skipped %s: %v", handle, err))
	}

	walk(store, root, ReminderScanMaxDepth, visit, onFault)

	return found, notes
}

// ScanTags walks the store and collects the distinct values of the "tags"
// frontmatter array across all documents, sorted. The walk is capped at
// [TagScanMaxDepth].
func ScanTags(store Store) []string {
	seen := make(map[string]struct{})

	walk(store, store.Root(), TagScanMaxDepth, func(_, document string) {
		fields, _ := frontmatter.Parse(document)

		tags, ok := fields.GetList("tags")
		if !ok {
			return
		}

		for _, tag := range tags {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				seen[tag] = struct{}{}
			}
		}
	}, nil)

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}

	slices.Sort(tags)

	return tags
}

// resolveScanRoot narrows the walk to a subfolder of the root. Falls back
// to the root itself when the subfolder cannot be listed; scanning degrades
// gracefully, it never hard-fails.
func resolveScanRoot(store Store, scanRoot string) string {
	if scanRoot == "" {
		return store.Root()
	}

	handle := store.Resolve(store.Root(), scanRoot)

	_, err := store.ListChildren(handle)
	if err != nil {
		return store.Root()
	}

	return handle
}

// walk visits every document under dir, depth-first. Store errors never
// abort the walk; they are reported through onFault when it is non-nil and
// swallowed otherwise.
func walk(store Store, dir string, depthBudget int, visit func(handle, document string), onFault func(handle string, err error)) {
	if depthBudget <= 0 {
		return
	}

	children, err := store.ListChildren(dir)
	if err != nil {
		if onFault != nil {
			onFault(dir, err)
		}

		return
	}

	for _, child := range children {
		name := store.Name(child)

		if strings.HasSuffix(name, DocumentExt) {
			document, err := store.ReadText(child)
			if err != nil {
				if onFault != nil {
					onFault(child, err)
				}

				continue
			}

			visit(child, document)

			continue
		}

		// No extension: probably a folder. Recursing into a non-directory
		// fails the ListChildren inside, which is surfaced like any other
		// unlistable entry.
		if !strings.Contains(name, ".") {
			walk(store, child, depthBudget-1, visit, onFault)
		}
	}
}
