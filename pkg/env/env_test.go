package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("DZORDERS_LOG_FORMAT", "console")
	t.Setenv("LOG_FORMAT", "json")

	if got := First("json", "DZORDERS_LOG_FORMAT", "LOG_FORMAT"); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}
}

func TestFirstFallsBack(t *testing.T) {
	t.Setenv("DZORDERS_UNSET_KEY", "")
	if got := First("fallback", "DZORDERS_UNSET_KEY"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := Get("DZORDERS_UNSET_KEY", "x"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}
