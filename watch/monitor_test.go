package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMatchCaseInsensitive(t *testing.T) {
	m := NewMonitor([]string{"Netflix", "合租"})

	tests := []struct {
		text string
		want bool
	}{
		{"anyone sharing NETFLIX?", true},
		{"netflix family plan", true},
		{"想找人合租", true},
		{"just chatting", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestNoteKeepsLastFive(t *testing.T) {
	m := NewMonitor(nil)
	var last []string
	for _, s := range []string{"one", "two", "three", "four", "five", "six"} {
		last = m.Note(9, s)
	}
	if len(last) != 5 {
		t.Fatalf("retained %d messages, want 5", len(last))
	}
	if last[0] != "two" || last[4] != "six" {
		t.Fatalf("oldest not evicted first: %v", last)
	}

	// Other senders are unaffected.
	if got := m.Note(10, "hello"); len(got) != 1 {
		t.Fatalf("sender 10 retained %d, want 1", len(got))
	}
}

func TestAlertTextOmitsEmptySummary(t *testing.T) {
	with := AlertText("hdr", []string{"a", "b"}, "the summary")
	if !strings.Contains(with, "🧠 Summary:\nthe summary") {
		t.Fatalf("summary missing: %q", with)
	}
	without := AlertText("hdr", []string{"a", "b"}, "  ")
	if strings.Contains(without, "🧠") {
		t.Fatalf("blank summary should be omitted: %q", without)
	}
	if !strings.Contains(without, "a\nb") {
		t.Fatalf("raw messages missing: %q", without)
	}
}

func TestLoadKeywordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("keywords:\n  - rent\n  - 上车\n  - \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	kws, err := LoadKeywordsFile(path)
	if err != nil {
		t.Fatalf("LoadKeywordsFile: %v", err)
	}
	if len(kws) != 2 || kws[0] != "rent" || kws[1] != "上车" {
		t.Fatalf("keywords = %v", kws)
	}

	if _, err := LoadKeywordsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
