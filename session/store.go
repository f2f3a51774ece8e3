package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Mode decides what the router does with a private message: forward it to
// the configured destinations, or answer it via the AI provider.
type Mode int

const (
	ModeForward Mode = iota
	ModeChat
)

func (m Mode) String() string {
	switch m {
	case ModeChat:
		return "chat"
	default:
		return "forward"
	}
}

// Validation is the model-name policy applied by SetModel.
type Validation int

const (
	// ValidationNone accepts any non-empty model name.
	ValidationNone Validation = iota
	// ValidationAllowList restricts SetModel to an enumerated set.
	ValidationAllowList
)

// Store holds per-chat mode and model selection. Absent chats read as
// ModeForward with the process default model; entries are created lazily and
// live for the process lifetime.
type Store struct {
	mu           sync.RWMutex
	modes        map[int64]Mode
	models       map[int64]string
	defaultModel string
	validation   Validation
	allowed      map[string]bool
}

func NewStore(defaultModel string) *Store {
	return &Store{
		modes:        make(map[int64]Mode),
		models:       make(map[int64]string),
		defaultModel: defaultModel,
	}
}

// RestrictModels switches the store to allow-list validation.
func (s *Store) RestrictModels(allowed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validation = ValidationAllowList
	s.allowed = make(map[string]bool, len(allowed))
	for _, m := range allowed {
		m = strings.TrimSpace(m)
		if m != "" {
			s.allowed[m] = true
		}
	}
}

func (s *Store) Mode(chatID int64) Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes[chatID]
}

func (s *Store) SetMode(chatID int64, m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[chatID] = m
}

func (s *Store) Model(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.models[chatID]; ok {
		return m
	}
	return s.defaultModel
}

func (s *Store) DefaultModel() string {
	return s.defaultModel
}

func (s *Store) SetModel(chatID int64, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("empty model name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validation == ValidationAllowList && !s.allowed[model] {
		return fmt.Errorf("model %q not allowed (allowed: %s)", model, strings.Join(s.allowedList(), ", "))
	}
	s.models[chatID] = model
	return nil
}

// AllowedModels returns the allow-list sorted, or nil when validation is off.
func (s *Store) AllowedModels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.validation != ValidationAllowList {
		return nil
	}
	return s.allowedList()
}

func (s *Store) allowedList() []string {
	out := make([]string, 0, len(s.allowed))
	for m := range s.allowed {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
