package todo

import (
	"testing"
	"time"
)

func TestFormatTimestamp_CanonicalUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2026, 8, 1, 13, 30, 0, 0, loc)

	got := formatTimestamp(in)
	if got != "2026-08-01T12:30:00Z" {
		t.Fatalf("unexpected timestamp format: %q", got)
	}
}

func TestToResponse_SerializesBothTimestamps(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(90 * time.Minute)

	resp := toResponse(Todo{ID: 1, Title: "x", CreatedAt: created, UpdatedAt: updated})
	if resp.CreatedAt != formatTimestamp(created) {
		t.Fatalf("created_at mismatch: %q", resp.CreatedAt)
	}
	if resp.UpdatedAt != formatTimestamp(updated) {
		t.Fatalf("updated_at mismatch: %q", resp.UpdatedAt)
	}
}

func TestToResponseList_EmptySliceStaysEmpty(t *testing.T) {
	// An empty table must serialize as [] rather than null.
	out := toResponseList(nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", out)
	}
}
