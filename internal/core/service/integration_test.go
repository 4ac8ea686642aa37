package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/revogue/storefront-client/internal/core/domain"
	"github.com/revogue/storefront-client/internal/core/ports"
	"github.com/revogue/storefront-client/internal/core/service"
	"github.com/revogue/storefront-client/internal/identitytest"
	"github.com/revogue/storefront-client/internal/infrastructure/identity"
	"github.com/revogue/storefront-client/internal/infrastructure/store"
)

func buildService(t *testing.T, backendURL, statePath string) *service.AuthService {
	t.Helper()
	client, err := identity.NewClient(backendURL, 5*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	svc := service.NewAuthService(store.NewFileStore(statePath, zerolog.Nop()), client, zerolog.Nop())
	svc.Hydrate(context.Background())
	return svc
}

func TestEndToEnd_RegisterLogoutLogin(t *testing.T) {
	backend := identitytest.New()
	defer backend.Close()
	statePath := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	svc := buildService(t, backend.URL, statePath)
	if svc.State() != domain.StateAnonymous {
		t.Fatalf("fresh client should start anonymous, got %s", svc.State())
	}

	user, err := svc.Register(ctx, ports.RegisterInput{
		Identity:             "nina@example.com",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
		FirstName:            "Nina",
		LastName:             "Kovac",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.FirstName != "Nina" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected registered user: %+v", user)
	}
	if svc.State() != domain.StateAuthenticated {
		t.Fatalf("registration should auto-authenticate")
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if svc.CurrentUser() != nil {
		t.Fatalf("expected no session after logout")
	}

	if _, err := svc.Login(ctx, "nina@example.com", "secret1"); err != nil {
		t.Fatalf("login after registration failed: %v", err)
	}
	// Preflight ran for both the register and the login.
	if backend.Preflights() < 2 {
		t.Fatalf("expected preflights for both writes, got %d", backend.Preflights())
	}
}

func TestEndToEnd_SessionSurvivesRestart(t *testing.T) {
	backend := identitytest.New()
	defer backend.Close()
	backend.AddAccount(identitytest.Account{
		Email: "sophie@example.com", Password: "sophie123", Name: "Sophie Marchand", Role: "user",
	})
	statePath := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	svc := buildService(t, backend.URL, statePath)
	if _, err := svc.Login(ctx, "sophie@example.com", "sophie123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// A second process over the same state file picks the session up.
	restarted := buildService(t, backend.URL, statePath)
	if restarted.State() != domain.StateAuthenticated {
		t.Fatalf("session should survive a restart, got %s", restarted.State())
	}
	current := restarted.CurrentUser()
	if current == nil || current.Username != "sophie@example.com" {
		t.Fatalf("unexpected restored user: %+v", current)
	}
}

func TestEndToEnd_OfflineFallbackAfterRemoteLogin(t *testing.T) {
	backend := identitytest.New()
	backend.AddAccount(identitytest.Account{
		Email: "sophie@example.com", Password: "sophie123", Name: "Sophie Marchand", Role: "user",
	})
	statePath := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	svc := buildService(t, backend.URL, statePath)
	if _, err := svc.Login(ctx, "sophie@example.com", "sophie123"); err != nil {
		t.Fatalf("online login failed: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// Backend goes away; the cached credential still authenticates.
	backend.Close()

	offline := buildService(t, backend.URL, statePath)
	user, err := offline.Login(ctx, "sophie@example.com", "sophie123")
	if err != nil {
		t.Fatalf("offline fallback login failed: %v", err)
	}
	if user.Username != "sophie@example.com" {
		t.Fatalf("unexpected fallback user: %+v", user)
	}
	if offline.State() != domain.StateAuthenticated {
		t.Fatalf("expected authenticated state, got %s", offline.State())
	}

	// Wrong password stays rejected offline.
	if _, err := offline.Login(ctx, "sophie@example.com", "wrong"); domain.FailureOf(err) == nil {
		t.Fatalf("wrong password must fail offline, got %v", err)
	}
}

func TestEndToEnd_SeedAdminWorksOffline(t *testing.T) {
	backend := identitytest.New()
	backend.Close() // network forced unreachable
	statePath := filepath.Join(t.TempDir(), "state.json")

	svc := buildService(t, backend.URL, statePath)
	user, err := svc.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("seed admin offline login failed: %v", err)
	}
	if user.Role != domain.RoleAdmin || !svc.IsAdmin() {
		t.Fatalf("seed admin should authenticate with the admin role, got %+v", user)
	}
}
