// Package auth decides who may use the AI chat path. Owners are always
// authorized; everyone else must present the shared secret once via /auth.
// The gate never guards forwarding receipt or reply-bridge delivery.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
)

var (
	ErrWrongSecret        = errors.New("wrong secret")
	ErrNoSecretConfigured = errors.New("no secret configured")
)

type Gate struct {
	mu         sync.RWMutex
	owners     map[int64]bool
	authorized map[int64]bool
	secret     string
}

func NewGate(owners []int64, secret string) *Gate {
	g := &Gate{
		owners:     make(map[int64]bool, len(owners)),
		authorized: make(map[int64]bool),
		secret:     secret,
	}
	for _, id := range owners {
		g.owners[id] = true
	}
	return g
}

func (g *Gate) IsOwner(principalID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.owners[principalID]
}

func (g *Gate) IsAuthorized(principalID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.owners[principalID] || g.authorized[principalID]
}

func (g *Gate) SecretConfigured() bool {
	return g.secret != ""
}

// Authorize grants principalID access when suppliedSecret matches the
// configured secret exactly. Owners pass without a secret check. Granting is
// idempotent.
func (g *Gate) Authorize(principalID int64, suppliedSecret string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.owners[principalID] {
		return nil
	}
	if g.secret == "" {
		return ErrNoSecretConfigured
	}
	if subtle.ConstantTimeCompare([]byte(suppliedSecret), []byte(g.secret)) != 1 {
		return ErrWrongSecret
	}
	g.authorized[principalID] = true
	return nil
}
