// Package watch implements the optional group keyword monitor: messages
// matching a keyword list are retained per sender (last five), summarized by
// the AI provider, and surfaced to the owner as an alert.
package watch

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const historyMax = 5

// DefaultKeywords is the watch list the bot originally shipped with.
var DefaultKeywords = []string{"Netflix", "YouTube", "shared", "rent", "group", "上车", "合租"}

type Monitor struct {
	keywords []string

	mu     sync.Mutex
	recent map[int64][]string
}

func NewMonitor(keywords []string) *Monitor {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &Monitor{
		keywords: keywords,
		recent:   make(map[int64][]string),
	}
}

// Match reports whether text contains any watched keyword,
// case-insensitively.
func (m *Monitor) Match(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range m.keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Note appends a matching message to the sender's retained sequence and
// returns a copy of it. Only the most recent five messages are kept; the
// oldest is evicted first.
func (m *Monitor) Note(senderID int64, text string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append(m.recent[senderID], text)
	if len(msgs) > historyMax {
		msgs = msgs[len(msgs)-historyMax:]
	}
	m.recent[senderID] = msgs
	return append([]string(nil), msgs...)
}

// SummaryPrompt builds the user turn sent to the AI provider to condense the
// retained messages for the owner.
func SummaryPrompt(msgs []string) string {
	return "Please summarize the following user messages into concise, useful points for the group owner. " +
		"Focus on any keyword-related content.\n\n" + strings.Join(msgs, "\n")
}

// AlertText formats the owner alert: the sender header, the raw retained
// messages, and the AI summary (omitted when empty).
func AlertText(header string, msgs []string, summary string) string {
	parts := []string{
		header,
		"🗣 Recent Messages:\n" + strings.Join(msgs, "\n"),
	}
	if strings.TrimSpace(summary) != "" {
		parts = append(parts, "🧠 Summary:\n"+summary)
	}
	return strings.Join(parts, "\n\n")
}

// NotifyText is the in-group notice sent to the triggering sender.
func NotifyText(username string) string {
	if strings.TrimSpace(username) == "" {
		return "🔔 Hey, your message triggered a keyword alert!"
	}
	return fmt.Sprintf("🔔 Hey @%s, your message triggered a keyword alert!", username)
}

type keywordsFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywordsFile reads a YAML keyword list ({keywords: [...]}).
func LoadKeywordsFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f keywordsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse keywords file %s: %w", path, err)
	}
	out := f.Keywords[:0]
	for _, k := range f.Keywords {
		if strings.TrimSpace(k) != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("keywords file %s: empty keyword list", path)
	}
	return out, nil
}
