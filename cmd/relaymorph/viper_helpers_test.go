package main

import (
	"testing"
)

func TestParseChatIDs(t *testing.T) {
	ids, err := parseChatIDs("owners", []string{" 123 ", "", "-100456"})
	if err != nil {
		t.Fatalf("parseChatIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 123 || ids[1] != -100456 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestParseChatIDsRejectsUsernames(t *testing.T) {
	_, err := parseChatIDs("owners", []string{"@admin"})
	if err == nil {
		t.Fatalf("expected error for @username entry")
	}
}
