package ports

import (
	"context"

	"github.com/revogue/storefront-client/internal/core/domain"
)

// SessionStore owns the persisted local state of the auth subsystem: the
// credential fallback table, the current session, and the bearer token.
// Every mutation persists synchronously before returning (write-through);
// there is no dirty/flush window to lose on a crash.
type SessionStore interface {
	// Hydrate loads persisted state and returns the surviving session, nil
	// when nobody is signed in. Missing or corrupt state never fails: it
	// degrades to the bootstrap seed table and an empty session, logged only.
	Hydrate(ctx context.Context) *domain.AuthUser

	// UpsertCredential inserts or overwrites the credential keyed by its
	// lowercased username.
	UpsertCredential(ctx context.Context, cred domain.StoredCredential) error

	// FindCredential looks a credential up case-insensitively.
	FindCredential(username string) (domain.StoredCredential, bool)

	// SetSession replaces the current session; nil clears it.
	SetSession(ctx context.Context, user *domain.AuthUser) error

	// SetToken stores the bearer token issued by the identity backend,
	// independently of the session record. Empty clears it.
	SetToken(ctx context.Context, token string) error

	// Token returns the stored bearer token, empty when none.
	Token() string

	// Close releases the store's resources. The store must not be used after.
	Close() error
}
