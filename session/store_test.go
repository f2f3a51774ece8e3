package session

import (
	"strings"
	"testing"
)

func TestDefaultsForUnknownChat(t *testing.T) {
	s := NewStore("gpt-5-mini")
	if got := s.Mode(42); got != ModeForward {
		t.Fatalf("default mode = %v, want forward", got)
	}
	if got := s.Model(42); got != "gpt-5-mini" {
		t.Fatalf("default model = %q, want gpt-5-mini", got)
	}
}

func TestSetModeIsolatedPerChat(t *testing.T) {
	s := NewStore("m")
	s.SetMode(1, ModeChat)
	if s.Mode(1) != ModeChat {
		t.Fatalf("chat 1 mode not updated")
	}
	if s.Mode(2) != ModeForward {
		t.Fatalf("chat 2 mode affected by chat 1")
	}
	s.SetMode(2, ModeChat)
	s.SetMode(2, ModeForward)
	if s.Mode(1) != ModeChat {
		t.Fatalf("chat 1 mode affected by chat 2 writes")
	}
}

func TestSetModelNoValidation(t *testing.T) {
	s := NewStore("default")
	if err := s.SetModel(7, "anything-goes"); err != nil {
		t.Fatalf("SetModel: %v", err)
	}
	if got := s.Model(7); got != "anything-goes" {
		t.Fatalf("model = %q", got)
	}
	if err := s.SetModel(7, "  "); err == nil {
		t.Fatalf("expected error for empty model")
	}
}

func TestSetModelAllowList(t *testing.T) {
	s := NewStore("gpt-5-mini")
	s.RestrictModels([]string{"gpt-5-mini", "gpt-5"})

	if err := s.SetModel(1, "gpt-5"); err != nil {
		t.Fatalf("allowed model rejected: %v", err)
	}
	err := s.SetModel(1, "gpt-3")
	if err == nil {
		t.Fatalf("expected rejection for model outside allow-list")
	}
	if !strings.Contains(err.Error(), "gpt-5-mini") {
		t.Fatalf("error should list allowed models, got %q", err)
	}
	if got := s.Model(1); got != "gpt-5" {
		t.Fatalf("rejected SetModel must not change selection, got %q", got)
	}
}
