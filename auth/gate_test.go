package auth

import (
	"errors"
	"testing"
)

func TestOwnersAlwaysAuthorized(t *testing.T) {
	g := NewGate([]int64{100, 200}, "")
	if !g.IsAuthorized(100) || !g.IsAuthorized(200) {
		t.Fatalf("owners must be authorized")
	}
	if g.IsAuthorized(300) {
		t.Fatalf("non-owner authorized without secret grant")
	}
}

func TestAuthorizeOwnerSkipsSecret(t *testing.T) {
	g := NewGate([]int64{100}, "s3cret")
	if err := g.Authorize(100, "wrong"); err != nil {
		t.Fatalf("owner Authorize: %v", err)
	}
}

func TestAuthorizeNoSecretConfigured(t *testing.T) {
	g := NewGate([]int64{100}, "")
	if err := g.Authorize(300, "whatever"); !errors.Is(err, ErrNoSecretConfigured) {
		t.Fatalf("err = %v, want ErrNoSecretConfigured", err)
	}
}

func TestAuthorizeWrongSecret(t *testing.T) {
	g := NewGate([]int64{100}, "s3cret")
	if err := g.Authorize(300, "S3CRET"); !errors.Is(err, ErrWrongSecret) {
		t.Fatalf("secret compare must be case-sensitive, err = %v", err)
	}
	if g.IsAuthorized(300) {
		t.Fatalf("failed Authorize must not grant access")
	}
}

func TestAuthorizeIdempotent(t *testing.T) {
	g := NewGate([]int64{100}, "s3cret")
	if err := g.Authorize(300, "s3cret"); err != nil {
		t.Fatalf("first Authorize: %v", err)
	}
	if err := g.Authorize(300, "s3cret"); err != nil {
		t.Fatalf("second Authorize: %v", err)
	}
	if !g.IsAuthorized(300) {
		t.Fatalf("principal not authorized after Authorize")
	}
}
