package ports

import "context"

// RemoteUser is the identity backend's view of an account after response
// shape normalization but before role resolution. RawRole is passed through
// untouched so the core decides what it means.
type RemoteUser struct {
	Username  string
	RawRole   string
	FirstName string
	LastName  string
}

// IdentitySession is the outcome of a successful remote login or
// registration: the remote user plus the issued bearer token.
type IdentitySession struct {
	User  RemoteUser
	Token string
}

// RegisterInput carries the fields of a registration request. FirstName and
// LastName are optional; PasswordConfirmation, when present, must match
// Password.
type RegisterInput struct {
	Identity             string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
}

// IdentityClient wraps the remote identity service. Implementations classify
// every failure into a *domain.AuthFailure so the orchestrator's branching
// is total. Preflight must precede Login and Register on a cookie-session
// backend.
type IdentityClient interface {
	Preflight(ctx context.Context) error
	Login(ctx context.Context, identity, password string) (*IdentitySession, error)
	Register(ctx context.Context, input RegisterInput) (*IdentitySession, error)
	Logout(ctx context.Context) error
}
