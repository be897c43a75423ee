package template

import (
	"testing"
	"time"
)

func TestResolve_ExpandsDateTokens(t *testing.T) {
	r := New()
	date := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	got, err := r.Resolve("%Y-%m-%d", date, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "2026-07-30" {
		t.Fatalf("expected 2026-07-30, got %q", got)
	}
}

func TestResolve_ExpandsContextTokens(t *testing.T) {
	r := New()

	got, err := r.Resolve("{{project}}/{{title}}", time.Time{}, map[string]string{
		"project": "Work",
		"title":   "Buy milk",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "Work/Buy milk" {
		t.Fatalf("expected 'Work/Buy milk', got %q", got)
	}
}

func TestResolve_UnrecognizedTokenErrors(t *testing.T) {
	r := New()

	_, err := r.Resolve("{{nope}}", time.Time{}, map[string]string{})
	if err == nil {
		t.Fatalf("expected an error for an unrecognized token")
	}
}

func TestResolve_UnterminatedTokenErrors(t *testing.T) {
	r := New()

	_, err := r.Resolve("{{oops", time.Time{}, map[string]string{})
	if err == nil {
		t.Fatalf("expected an error for an unterminated token")
	}
}

func TestResolve_MixesDateAndContextTokens(t *testing.T) {
	r := New()
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	got, err := r.Resolve("{{project}}/%Y/%m", date, map[string]string{"project": "Personal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "Personal/2026/01" {
		t.Fatalf("expected 'Personal/2026/01', got %q", got)
	}
}
