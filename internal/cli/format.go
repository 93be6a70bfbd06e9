// Package cli provides shared formatting helpers for CLI output.
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sgx-labs/zettel/internal/note"
)

// ANSI color constants.
const (
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
	Dim    = "\033[2m"
	Bold   = "\033[1m"
	Reset  = "\033[0m"
)

// Box width is the inner content width (between the border characters).
const boxWidth = 48

// Margin is the left indent for all boxed output.
const margin = "  "

// ShortenHome replaces $HOME prefix with ~.
func ShortenHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

// FormatNumber adds comma separators (1234 -> "1,234").
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return FormatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}

// Header prints a heavy-border box with a title.
func Header(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s\u250f%s\u2513%s\n", Cyan, margin, strings.Repeat("\u2501", boxWidth), Reset)
	fmt.Fprintf(w, "%s%s\u2503%s\u2503%s\n", Cyan, margin, padRight("  "+title, boxWidth), Reset)
	fmt.Fprintf(w, "%s%s\u2517%s\u251b%s\n", Cyan, margin, strings.Repeat("\u2501", boxWidth), Reset)
}

// Section prints a section divider line: ── Name ─────────────────
func Section(w io.Writer, name string) {
	prefix := "\u2500\u2500 " + name + " "
	remaining := boxWidth + 2 - runeLen(prefix)
	if remaining < 0 {
		remaining = 0
	}
	fmt.Fprintf(w, "\n%s%s%s%s%s\n\n", margin, Cyan, prefix, strings.Repeat("\u2500", remaining), Reset)
}

// Box prints a light-border box around content lines.
func Box(w io.Writer, lines []string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\u250c%s\u2510\n", margin, strings.Repeat("\u2500", boxWidth))
	for _, line := range lines {
		fmt.Fprintf(w, "%s\u2502%s\u2502\n", margin, padRight("  "+line, boxWidth))
	}
	fmt.Fprintf(w, "%s\u2514%s\u2518\n", margin, strings.Repeat("\u2500", boxWidth))
}

// NoteCard prints a note's metadata block followed by its body.
func NoteCard(w io.Writer, n note.Note) {
	lines := []string{
		n.Name,
		"type:     " + n.Metadata.Kind.String(),
		"scope:    " + n.Metadata.Scope,
		"created:  " + n.Metadata.Created,
		"modified: " + n.Metadata.Modified,
	}
	if src := n.Metadata.SourceOrEmpty(); src != "" {
		lines = append(lines, "source:   "+src)
	}
	Box(w, lines)
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimRight(n.Body, "\n"))
}

// NoteRow prints one line per note: name, type and scope in aligned columns.
func NoteRow(w io.Writer, n note.Note) {
	fmt.Fprintf(w, "%s%-40s %s%-7s%s %s\n",
		margin, n.Name, Dim, n.Metadata.Kind.String(), Reset, n.Metadata.Scope)
}

// Counts prints label/count pairs sorted by label.
func Counts(w io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%-16s %s\n", margin, k, FormatNumber(counts[k]))
	}
}

// padRight pads s with spaces to exactly width characters.
// If s is longer than width, it is truncated.
func padRight(s string, width int) string {
	n := runeLen(s)
	if n >= width {
		r := []rune(s)
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// runeLen counts the display width in runes.
func runeLen(s string) int {
	return len([]rune(s))
}
