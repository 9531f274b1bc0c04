// Package render projects want-list state into the shared summary text.
// Rendering is deterministic and idempotent: identical state always yields
// identical text, so the publisher can diff before re-publishing.
package render

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"wantbot/internal/logging"
	"wantbot/internal/wantlist"
)

const (
	// DefaultMaxLength bounds the rendered summary.
	DefaultMaxLength = 4000

	truncationMarker = "\n… (truncated)"
	emptySummary     = "Nobody wants anything right now."
)

// Renderer renders space snapshots. User and card names are ordered with a
// locale-aware collator; edition codes are plain lexicographic.
type Renderer struct {
	collator  *collate.Collator
	maxLength int
}

// New creates a Renderer for the given locale.
func New(tag language.Tag) *Renderer {
	return &Renderer{
		collator:  collate.New(tag, collate.IgnoreCase),
		maxLength: DefaultMaxLength,
	}
}

type entry struct {
	name     string
	edition  string
	foil     bool
	quantity int
}

// Summary renders the whole space. Output that would exceed the length
// bound is cut at a line boundary with an explicit truncation marker; the
// marker itself is never dropped.
func (r *Renderer) Summary(snap wantlist.SpaceSnapshot) string {
	if len(snap.Users) == 0 {
		return emptySummary
	}

	users := append([]wantlist.UserSnapshot(nil), snap.Users...)
	sort.SliceStable(users, func(i, j int) bool {
		return r.collator.CompareString(users[i].DisplayName, users[j].DisplayName) < 0
	})

	var lines []string
	for _, user := range users {
		lines = append(lines, fmt.Sprintf("**%s**", user.DisplayName))
		for _, e := range r.sortedEntries(user) {
			lines = append(lines, formatEntry(e))
		}
		lines = append(lines, "")
	}
	// Drop the trailing blank line.
	lines = lines[:len(lines)-1]

	text := strings.Join(lines, "\n")
	if len(text) <= r.maxLength {
		return text
	}

	logging.Render("summary exceeds %d chars, truncating", r.maxLength)
	budget := r.maxLength - len(truncationMarker)
	var b strings.Builder
	for _, line := range lines {
		need := len(line)
		if b.Len() > 0 {
			need++ // newline
		}
		if b.Len()+need > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	b.WriteString(truncationMarker)
	return b.String()
}

// sortedEntries orders one user's entries: card name (collated), then
// edition code lexicographic with the no-edition case last, then non-foil
// before foil.
func (r *Renderer) sortedEntries(user wantlist.UserSnapshot) []entry {
	entries := make([]entry, 0, len(user.Items))
	for key, qty := range user.Items {
		name, edition, foil, err := key.Decode()
		if err != nil {
			continue
		}
		entries = append(entries, entry{name: name, edition: edition, foil: foil, quantity: qty})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := r.collator.CompareString(a.name, b.name); c != 0 {
			return c < 0
		}
		if a.edition != b.edition {
			if a.edition == "" {
				return false
			}
			if b.edition == "" {
				return true
			}
			return a.edition < b.edition
		}
		return !a.foil && b.foil
	})
	return entries
}

func formatEntry(e entry) string {
	switch {
	case e.edition != "" && e.foil:
		return fmt.Sprintf("%dx %s [%s, foil]", e.quantity, e.name, e.edition)
	case e.edition != "":
		return fmt.Sprintf("%dx %s [%s]", e.quantity, e.name, e.edition)
	case e.foil:
		return fmt.Sprintf("%dx %s [foil]", e.quantity, e.name)
	default:
		return fmt.Sprintf("%dx %s", e.quantity, e.name)
	}
}
