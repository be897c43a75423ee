// Package template implements vaultmodel.TemplateResolver over the fixed
// token set the engine supports for computed paths and content (§6):
// date components and a handful of named context values the reconciler
// supplies (project name, section name, task title, and similar).
package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resolver is the default vaultmodel.TemplateResolver implementation.
type Resolver struct{}

// New returns a ready-to-use Resolver. It holds no state.
func New() *Resolver {
	return &Resolver{}
}

// dateTokens are the fixed %-prefixed date tokens Resolve understands,
// evaluated against the date argument rather than wall-clock time so
// callers get deterministic output in tests via the Clock seam.
var dateTokens = map[string]func(time.Time) string{
	"%Y":  func(d time.Time) string { return strconv.Itoa(d.Year()) },
	"%m":  func(d time.Time) string { return fmt.Sprintf("%02d", int(d.Month())) },
	"%d":  func(d time.Time) string { return fmt.Sprintf("%02d", d.Day()) },
	"%B":  func(d time.Time) string { return d.Month().String() },
	"%A":  func(d time.Time) string { return d.Weekday().String() },
	"%j":  func(d time.Time) string { return fmt.Sprintf("%03d", d.YearDay()) },
}

// Resolve expands every "%X" date token and every "{{key}}" context token
// found in template, using date for the former and context for the
// latter. An unrecognized "{{key}}" token is an error — a typo in a
// configured template should fail loudly rather than leave literal
// "{{...}}" text in a generated path.
func (r *Resolver) Resolve(tmpl string, date time.Time, context map[string]string) (string, error) {
	out := tmpl

	for token, fn := range dateTokens {
		out = strings.ReplaceAll(out, token, fn(date))
	}

	for out != "" {
		start := strings.Index(out, "{{")
		if start < 0 {
			break
		}

		end := strings.Index(out[start:], "}}")
		if end < 0 {
			return "", fmt.Errorf("template: unterminated token in %q", tmpl)
		}

		end += start

		key := strings.TrimSpace(out[start+2 : end])

		value, ok := context[key]
		if !ok {
			return "", fmt.Errorf("template: unrecognized token %q in %q", key, tmpl)
		}

		out = out[:start] + value + out[end+2:]
	}

	return out, nil
}
