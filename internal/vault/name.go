package vault

import (
	"fmt"
	"strings"
)

// maxNameAttempts bounds collision-suffix probing when picking a unique
// document name.
const maxNameAttempts = 1000

// ErrNoUniqueName is returned when every collision suffix up to the attempt
// bound is taken.
var errNoUniqueName = fmt.Errorf("no unique document name after %d attempts", maxNameAttempts)

// UniqueDocumentName picks a document file name for title inside folder
// that does not collide with an existing entry. Collisions get a numeric
// suffix: "Buy Milk.md", "Buy Milk (1).md", ...
func UniqueDocumentName(store Store, folder, title string) (string, error) {
	base := sanitizeTitle(title)
	if base == "" {
		base = "Reminder"
	}

	existing := make(map[string]struct{})

	children, err := store.ListChildren(folder)
	if err == nil {
		for _, child := range children {
			existing[store.Name(child)] = struct{}{}
		}
	}

	name := base + DocumentExt
	for counter := 1; counter <= maxNameAttempts; counter++ {
		if _, taken := existing[name]; !taken {
			return name, nil
		}

		name = fmt.Sprintf("%s (%d)%s", base, counter, DocumentExt)
	}

	return "", errNoUniqueName
}

// sanitizeTitle replaces characters that are unsafe in file names.
func sanitizeTitle(title string) string {
	var builder strings.Builder

	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}

	return strings.TrimSpace(builder.String())
}
