package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/revogue/storefront-client/internal/core/domain"
)

func tempStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return NewFileStore(path, zerolog.Nop()), path
}

func TestFileStore_BootstrapHydration(t *testing.T) {
	s, _ := tempStore(t)

	session := s.Hydrate(context.Background())
	if session != nil {
		t.Fatalf("fresh store should have no session, got %+v", session)
	}

	for _, username := range []string{"admin", "sophie", "lucas"} {
		if _, ok := s.FindCredential(username); !ok {
			t.Fatalf("seed account %q missing", username)
		}
	}
	if _, ok := s.FindCredential("ghost"); ok {
		t.Fatalf("unexpected extra credential")
	}

	admin, _ := s.FindCredential("admin")
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("seed admin should hold the admin role, got %q", admin.Role)
	}
}

func TestFileStore_WriteThroughSurvivesRehydration(t *testing.T) {
	s, path := tempStore(t)
	ctx := context.Background()
	s.Hydrate(ctx)

	cred := domain.StoredCredential{
		AuthUser: domain.AuthUser{Username: "Nina", Role: domain.RoleUser, FirstName: "Nina"},
		Password: "secret1",
	}
	if err := s.UpsertCredential(ctx, cred); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.SetSession(ctx, &cred.AuthUser); err != nil {
		t.Fatalf("set session failed: %v", err)
	}
	if err := s.SetToken(ctx, "tok-1"); err != nil {
		t.Fatalf("set token failed: %v", err)
	}

	// A brand new store over the same file sees everything.
	fresh := NewFileStore(path, zerolog.Nop())
	session := fresh.Hydrate(ctx)
	if session == nil || session.Username != "Nina" {
		t.Fatalf("session did not survive rehydration: %+v", session)
	}
	got, ok := fresh.FindCredential("NINA")
	if !ok {
		t.Fatalf("credential did not survive rehydration")
	}
	if got.Username != "Nina" || got.Password != "secret1" {
		t.Fatalf("stored record should keep original casing: %+v", got)
	}
	if fresh.Token() != "tok-1" {
		t.Fatalf("token did not survive rehydration, got %q", fresh.Token())
	}
	// Seeds remain alongside persisted entries.
	if _, ok := fresh.FindCredential("admin"); !ok {
		t.Fatalf("seed accounts should survive rehydration")
	}
}

func TestFileStore_UpsertOverwritesByLowercasedUsername(t *testing.T) {
	s, _ := tempStore(t)
	ctx := context.Background()
	s.Hydrate(ctx)

	first := domain.StoredCredential{AuthUser: domain.AuthUser{Username: "Nina"}, Password: "one"}
	second := domain.StoredCredential{AuthUser: domain.AuthUser{Username: "NINA", Role: domain.RoleAdmin}, Password: "two"}
	if err := s.UpsertCredential(ctx, first); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.UpsertCredential(ctx, second); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, ok := s.FindCredential("nina")
	if !ok {
		t.Fatalf("credential missing")
	}
	if got.Password != "two" || got.Username != "NINA" {
		t.Fatalf("expected overwrite with latest record, got %+v", got)
	}
}

func TestFileStore_CorruptStateDegradesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := NewFileStore(path, zerolog.Nop())
	session := s.Hydrate(context.Background())
	if session != nil {
		t.Fatalf("corrupt state should yield no session, got %+v", session)
	}
	if _, ok := s.FindCredential("admin"); !ok {
		t.Fatalf("corrupt state should fall back to seed accounts")
	}
}

func TestFileStore_ClearSession(t *testing.T) {
	s, path := tempStore(t)
	ctx := context.Background()
	s.Hydrate(ctx)

	user := domain.AuthUser{Username: "sophie"}
	if err := s.SetSession(ctx, &user); err != nil {
		t.Fatalf("set session failed: %v", err)
	}
	if err := s.SetSession(ctx, nil); err != nil {
		t.Fatalf("clear session failed: %v", err)
	}

	fresh := NewFileStore(path, zerolog.Nop())
	if session := fresh.Hydrate(ctx); session != nil {
		t.Fatalf("cleared session should stay cleared, got %+v", session)
	}
}
