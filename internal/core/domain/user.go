package domain

import "strings"

// Role is the canonical role of a storefront account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ResolveRole normalizes the raw role string reported by the identity
// backend. Only "admin" (any casing) maps to RoleAdmin; everything else,
// including the empty string, is a regular user.
func ResolveRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// AuthUser is the publicly visible identity of a signed-in shopper or
// back-office admin. It carries no secret material.
type AuthUser struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u AuthUser) IsAdmin() bool { return u.Role == RoleAdmin }

// StoredCredential is an AuthUser plus the password cached for offline
// fallback logins. It lives only in the local session store and is never
// sent anywhere wholesale.
type StoredCredential struct {
	AuthUser
	Password string `json:"password"`
}

// CredentialKey returns the lookup key for a username. Lookups compare
// case-insensitively while the stored record keeps its original casing.
func CredentialKey(username string) string {
	return strings.ToLower(username)
}

// AuthState is the lifecycle state of the session machine.
type AuthState string

const (
	StateAnonymous      AuthState = "anonymous"
	StateAuthenticating AuthState = "authenticating"
	StateAuthenticated  AuthState = "authenticated"
)
