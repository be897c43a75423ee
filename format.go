package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// statusf prints a status message to stderr unless quiet mode is set.
func statusf(quiet bool, format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Statusf prints a status message to stderr unless quiet mode is set.
// Method form of statusf — avoids threading `quiet bool` through call
// chains.
func (cc *CLIContext) Statusf(format string, args ...any) {
	statusf(flagQuiet, format, args...)
}

// stdoutIsTerminal reports whether stdout is attached to a terminal,
// used to decide whether a run summary may use ANSI color.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

const (
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

// colorize wraps s in the given ANSI color code, unless stdout isn't a
// terminal (piped output, redirected to a file, CI logs).
func colorize(code, s string) string {
	if !stdoutIsTerminal() {
		return s
	}

	return code + s + ansiReset
}

// formatCount renders an integer with humanize's thousands separators,
// e.g. 12345 -> "12,345" — readable in a run summary without reaching
// for a wall of digits.
func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

// formatDuration renders a run duration rounded to a readable precision,
// e.g. "3m2s" rather than "3m2.348219s".
func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// formatTime returns a relative, human-readable timestamp, e.g.
// "3 days ago".
func formatTime(t time.Time) string {
	return humanize.Time(t)
}

// printTable writes aligned columns to the given writer.
// headers and each row must have the same length.
func printTable(w io.Writer, headers []string, rows [][]string) {
	// Compute column widths.
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header.
	printRow(w, headers, widths)

	// Print rows.
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

// printRow writes a single padded row.
func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}

	fmt.Fprintln(w, strings.Join(parts, "  "))
}
