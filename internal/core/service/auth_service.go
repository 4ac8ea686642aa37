package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/revogue/storefront-client/internal/core/domain"
	"github.com/revogue/storefront-client/internal/core/ports"
	"github.com/revogue/storefront-client/internal/metrics"
)

// User-facing failure messages. Server-sourced messages (401/422 bodies) are
// surfaced verbatim instead of these.
const (
	msgInvalidCredentials = "invalid username or password"
	msgServerUnreachable  = "server unreachable"
	msgGenericFailure     = "something went wrong, please try again"
)

// AuthService reconciles the remote identity backend with the local session
// store. It is the single owner of the current-session invariant: at most one
// session, surviving reloads through the store, cleared unconditionally on
// logout.
//
// Operations are not serialized or deduplicated; when callers overlap them,
// the last operation to complete wins the session.
type AuthService struct {
	store  ports.SessionStore
	remote ports.IdentityClient
	logger zerolog.Logger

	mu      sync.Mutex
	state   domain.AuthState
	current *domain.AuthUser
}

func NewAuthService(store ports.SessionStore, remote ports.IdentityClient, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		remote: remote,
		logger: logger,
		state:  domain.StateAnonymous,
	}
}

// Hydrate primes the session machine from persisted state. Call once at
// startup, before any operation.
func (s *AuthService) Hydrate(ctx context.Context) {
	user := s.store.Hydrate(ctx)
	if user != nil {
		s.setState(domain.StateAuthenticated, user)
		s.logger.Info().Str("username", user.Username).Msg("session restored")
		return
	}
	s.setState(domain.StateAnonymous, nil)
}

// Login authenticates against the remote backend, falling back to the local
// credential cache only when the backend is unreachable. A successful remote
// login is authoritative: the cached role and names for that username are
// overwritten with the remote's values.
func (s *AuthService) Login(ctx context.Context, identity, password string) (*domain.AuthUser, error) {
	s.setState(domain.StateAuthenticating, nil)

	sess, err := s.remoteLogin(ctx, identity, password)
	if err == nil {
		user := s.adoptSession(ctx, sess, password, domain.AuthUser{})
		metrics.LoginsTotal.WithLabelValues("success").Inc()
		s.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("logged in")
		return user, nil
	}

	fail := classify(err)
	switch fail.Kind {
	case domain.FailureNetworkUnreachable:
		return s.fallbackLogin(ctx, identity, password)
	case domain.FailureInvalidCredentials, domain.FailureValidationFailed:
		// The backend explicitly confirmed or denied the identity; no local
		// fallback, and its message goes to the user verbatim.
		s.setState(domain.StateAnonymous, nil)
		metrics.LoginsTotal.WithLabelValues(string(fail.Kind)).Inc()
		return nil, fail
	default:
		s.setState(domain.StateAnonymous, nil)
		metrics.LoginsTotal.WithLabelValues("server_rejected").Inc()
		s.logger.Error().Err(err).Msg("login rejected by backend")
		return nil, domain.Failure(domain.FailureServerRejected, msgGenericFailure)
	}
}

// Register creates an account on the remote backend. There is no offline
// path: without a reachable backend there is no authoritative identity to
// create. A successful registration auto-authenticates.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.AuthUser, error) {
	// Local preconditions run before any network or store traffic.
	if fail := validateRegistration(input); fail != nil {
		metrics.RegistrationsTotal.WithLabelValues("precondition_failed").Inc()
		return nil, fail
	}

	s.setState(domain.StateAuthenticating, nil)

	sess, err := s.remoteRegister(ctx, input)
	if err == nil {
		// Locally supplied names win over the remote's split of the full name.
		user := s.adoptSession(ctx, sess, input.Password, domain.AuthUser{
			FirstName: input.FirstName,
			LastName:  input.LastName,
		})
		metrics.RegistrationsTotal.WithLabelValues("success").Inc()
		s.logger.Info().Str("username", user.Username).Msg("registered")
		return user, nil
	}

	s.setState(domain.StateAnonymous, nil)

	fail := classify(err)
	switch fail.Kind {
	case domain.FailureValidationFailed:
		metrics.RegistrationsTotal.WithLabelValues("validation_failed").Inc()
		return nil, fail
	case domain.FailureNetworkUnreachable:
		metrics.RegistrationsTotal.WithLabelValues("network_unreachable").Inc()
		return nil, domain.Failure(domain.FailureNetworkUnreachable, msgServerUnreachable)
	default:
		metrics.RegistrationsTotal.WithLabelValues("server_rejected").Inc()
		s.logger.Error().Err(err).Msg("registration rejected by backend")
		return nil, domain.Failure(domain.FailureServerRejected, msgGenericFailure)
	}
}

// Logout always succeeds locally. The remote call is best-effort: failures
// are logged, never surfaced, and never keep the session alive.
func (s *AuthService) Logout(ctx context.Context) error {
	remoteOutcome := "success"
	if err := s.remote.Logout(ctx); err != nil {
		remoteOutcome = "failure"
		s.logger.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}
	metrics.LogoutsTotal.WithLabelValues(remoteOutcome).Inc()

	if err := s.store.SetToken(ctx, ""); err != nil {
		s.logger.Error().Err(err).Msg("clearing bearer token failed")
	}
	if err := s.store.SetSession(ctx, nil); err != nil {
		s.logger.Error().Err(err).Msg("clearing session failed")
	}
	s.setState(domain.StateAnonymous, nil)
	return nil
}

// CurrentUser returns the signed-in user, nil when anonymous.
func (s *AuthService) CurrentUser() *domain.AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.current)
}

// IsAdmin reports whether the current user holds the admin role.
func (s *AuthService) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.IsAdmin()
}

// State returns the session machine's current state.
func (s *AuthService) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *AuthService) remoteLogin(ctx context.Context, identity, password string) (*ports.IdentitySession, error) {
	if err := s.remote.Preflight(ctx); err != nil {
		return nil, err
	}
	return s.remote.Login(ctx, identity, password)
}

func (s *AuthService) remoteRegister(ctx context.Context, input ports.RegisterInput) (*ports.IdentitySession, error) {
	if err := s.remote.Preflight(ctx); err != nil {
		return nil, err
	}
	return s.remote.Register(ctx, input)
}

// adoptSession reconciles a successful remote session into local state:
// resolves the role, caches the credential for fallback use, persists the
// token and session, and moves the machine to Authenticated. Fields set on
// override take precedence over the remote's values.
func (s *AuthService) adoptSession(ctx context.Context, sess *ports.IdentitySession, password string, override domain.AuthUser) *domain.AuthUser {
	user := domain.AuthUser{
		Username:  sess.User.Username,
		Role:      domain.ResolveRole(sess.User.RawRole),
		FirstName: sess.User.FirstName,
		LastName:  sess.User.LastName,
	}
	if override.FirstName != "" {
		user.FirstName = override.FirstName
	}
	if override.LastName != "" {
		user.LastName = override.LastName
	}

	if err := s.store.UpsertCredential(ctx, domain.StoredCredential{AuthUser: user, Password: password}); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("credential cache update failed")
	}
	if err := s.store.SetToken(ctx, sess.Token); err != nil {
		s.logger.Error().Err(err).Msg("storing bearer token failed")
	}
	if err := s.store.SetSession(ctx, &user); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("persisting session failed")
	}

	s.setState(domain.StateAuthenticated, &user)
	return &user
}

// fallbackLogin verifies the supplied credentials against the local cache
// while the backend is unreachable. A miss never mutates the session.
func (s *AuthService) fallbackLogin(ctx context.Context, identity, password string) (*domain.AuthUser, error) {
	cred, ok := s.store.FindCredential(identity)
	if !ok || cred.Password != password {
		s.setState(domain.StateAnonymous, nil)
		metrics.FallbackLoginsTotal.WithLabelValues("miss").Inc()
		return nil, domain.Failure(domain.FailureInvalidCredentials, msgInvalidCredentials)
	}

	user := cred.AuthUser
	if err := s.store.SetSession(ctx, &user); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("persisting session failed")
	}
	s.setState(domain.StateAuthenticated, &user)
	metrics.FallbackLoginsTotal.WithLabelValues("hit").Inc()
	s.logger.Warn().Str("username", user.Username).Msg("backend unreachable, authenticated from local credential cache")
	return &user, nil
}

func (s *AuthService) setState(state domain.AuthState, user *domain.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.current = user
}

// classify guarantees the orchestrator always branches on an AuthFailure,
// even if an implementation leaks an unclassified error.
func classify(err error) *domain.AuthFailure {
	if fail := domain.FailureOf(err); fail != nil {
		return fail
	}
	return domain.Failure(domain.FailureServerRejected, msgGenericFailure)
}

func cloneUser(u *domain.AuthUser) *domain.AuthUser {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
