package env

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("TODO_TEST_STRING", "value")
	if got := String("TODO_TEST_STRING", "fallback"); got != "value" {
		t.Fatalf("expected set value, got %q", got)
	}
	if got := String("TODO_TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("TODO_TEST_INT", "12")
	if got := Int("TODO_TEST_INT", 5); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("TODO_TEST_INT", "not-a-number")
	if got := Int("TODO_TEST_INT", 5); got != 5 {
		t.Fatalf("expected fallback on parse error, got %d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("TODO_TEST_BOOL", "true")
	if !Bool("TODO_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("TODO_TEST_BOOL", "nope")
	if Bool("TODO_TEST_BOOL", false) {
		t.Fatal("expected fallback on parse error")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("TODO_TEST_DURATION", "90s")
	if got := Duration("TODO_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
	t.Setenv("TODO_TEST_DURATION", "-5s")
	if got := Duration("TODO_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected fallback for non-positive duration, got %s", got)
	}
}
