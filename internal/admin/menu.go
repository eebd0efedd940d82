// Package admin implements the interactive filler lexicon manager.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"voice-filler-gate/internal/lexicon"
)

// Store is the lexicon contract the menu drives. Each menu action is one
// independent store call; there is no batching across operations.
type Store interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, word string) (bool, error)
	AddMany(ctx context.Context, words []string) (added, skipped []string, err error)
	Remove(ctx context.Context, word string) (bool, error)
	Clear(ctx context.Context) (int64, error)
}

// Menu is the blocking text-menu loop over a lexicon store.
type Menu struct {
	store Store
	in    *bufio.Scanner
	out   io.Writer
}

// NewMenu creates a menu reading choices from in and writing to out.
func NewMenu(store Store, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run loops until the user exits or input ends. Unrecognized choices
// re-prompt; EOF is a graceful exit.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.printMenu()

		choice, ok := m.readLine()
		if !ok {
			fmt.Fprintln(m.out, "\nGoodbye!")
			return nil
		}

		switch choice {
		case "1":
			m.viewAll(ctx)
		case "2":
			m.addOne(ctx)
		case "3":
			m.addMany(ctx)
		case "4":
			m.removeOne(ctx)
		case "5":
			m.clearAll(ctx)
		case "6":
			fmt.Fprintln(m.out, "\nGoodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "\nInvalid choice. Please enter a number between 1 and 6.")
		}
	}
}

func (m *Menu) printMenu() {
	sep := strings.Repeat("=", 50)
	fmt.Fprintf(m.out, "\n%s\nFILLER WORDS LEXICON MANAGER\n%s\n", sep, sep)
	fmt.Fprintln(m.out, "\n1. View all filler words")
	fmt.Fprintln(m.out, "2. Add a single filler word")
	fmt.Fprintln(m.out, "3. Add multiple filler words")
	fmt.Fprintln(m.out, "4. Remove a filler word")
	fmt.Fprintln(m.out, "5. Clear all filler words")
	fmt.Fprintln(m.out, "6. Exit")
	fmt.Fprint(m.out, "\nEnter your choice (1-6): ")
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) viewAll(ctx context.Context) {
	words, err := m.store.List(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "\nError listing filler words: %v\n", err)
		return
	}
	if len(words) == 0 {
		fmt.Fprintln(m.out, "\nNo filler words found in the lexicon.")
		return
	}

	fmt.Fprintf(m.out, "\nCurrent filler words (%d total):\n", len(words))
	fmt.Fprintln(m.out, strings.Repeat("-", 50))
	for i, word := range words {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, word)
	}
	fmt.Fprintln(m.out, strings.Repeat("-", 50))
}

func (m *Menu) addOne(ctx context.Context) {
	fmt.Fprint(m.out, "\nEnter the filler word to add: ")
	word, ok := m.readLine()
	if !ok {
		return
	}

	added, err := m.store.Add(ctx, word)
	switch {
	case errors.Is(err, lexicon.ErrEmptyWord):
		fmt.Fprintln(m.out, "Error: word cannot be empty.")
	case err != nil:
		fmt.Fprintf(m.out, "Error adding word: %v\n", err)
	case !added:
		fmt.Fprintf(m.out, "Word %q is already in the lexicon.\n", strings.ToLower(strings.TrimSpace(word)))
	default:
		fmt.Fprintf(m.out, "Added %q to the lexicon.\n", strings.ToLower(strings.TrimSpace(word)))
	}
}

func (m *Menu) addMany(ctx context.Context) {
	fmt.Fprint(m.out, "\nEnter filler words (comma-separated): ")
	line, ok := m.readLine()
	if !ok {
		return
	}
	if line == "" {
		fmt.Fprintln(m.out, "Error: input cannot be empty.")
		return
	}

	var words []string
	for _, w := range strings.Split(line, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		fmt.Fprintln(m.out, "Error: no valid words provided.")
		return
	}

	added, skipped, err := m.store.AddMany(ctx, words)
	if err != nil {
		fmt.Fprintf(m.out, "Error adding words: %v\n", err)
		return
	}

	for _, w := range skipped {
		fmt.Fprintf(m.out, "Skipped %q (already exists)\n", w)
	}
	fmt.Fprintf(m.out, "\nAdded %d word(s).\n", len(added))
	if len(skipped) > 0 {
		fmt.Fprintf(m.out, "Skipped %d word(s) that already existed.\n", len(skipped))
	}
}

func (m *Menu) removeOne(ctx context.Context) {
	fmt.Fprint(m.out, "\nEnter the filler word to remove: ")
	word, ok := m.readLine()
	if !ok {
		return
	}

	removed, err := m.store.Remove(ctx, word)
	switch {
	case errors.Is(err, lexicon.ErrEmptyWord):
		fmt.Fprintln(m.out, "Error: word cannot be empty.")
	case err != nil:
		fmt.Fprintf(m.out, "Error removing word: %v\n", err)
	case removed:
		fmt.Fprintf(m.out, "Removed %q from the lexicon.\n", strings.ToLower(strings.TrimSpace(word)))
	default:
		fmt.Fprintf(m.out, "Word %q not found in the lexicon.\n", strings.ToLower(strings.TrimSpace(word)))
	}
}

func (m *Menu) clearAll(ctx context.Context) {
	fmt.Fprint(m.out, "\nAre you sure you want to delete ALL filler words? (yes/no): ")
	confirm, ok := m.readLine()
	if !ok {
		return
	}

	if strings.ToLower(confirm) != "yes" {
		fmt.Fprintln(m.out, "Operation cancelled.")
		return
	}

	count, err := m.store.Clear(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "Error clearing lexicon: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Deleted %d filler word(s).\n", count)
}
