// Package identity wraps the remote identity service: the CSRF preflight,
// the three account operations, and the classification of every transport
// and HTTP outcome into the domain failure taxonomy. Response shape
// ambiguity (role and name fields appearing under alternative keys) is
// resolved here and never leaks upstream.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/revogue/storefront-client/internal/core/domain"
	"github.com/revogue/storefront-client/internal/core/ports"
)

const (
	preflightPath = "/sanctum/csrf-cookie"
	loginPath     = "/login"
	registerPath  = "/register"
	logoutPath    = "/logout"

	xsrfCookieName = "XSRF-TOKEN"
	xsrfHeaderName = "X-XSRF-TOKEN"
)

// Client talks to the cookie-session identity backend. The cookie jar holds
// the session and XSRF cookies established by Preflight; writes echo the
// XSRF token back in a header, which the backend checks.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger
}

// NewClient builds a Client for the given backend base URL. A zero timeout
// means requests wait as long as the transport does.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return &Client{
		base:   base,
		http:   &http.Client{Jar: jar, Timeout: timeout},
		logger: logger,
	}, nil
}

// Preflight fetches the CSRF cookie the backend requires before any
// state-changing call.
func (c *Client) Preflight(ctx context.Context) error {
	_, fail := c.send(ctx, http.MethodGet, preflightPath, nil)
	if fail != nil {
		return fail
	}
	return nil
}

// Login authenticates against the backend and returns the normalized session.
func (c *Client) Login(ctx context.Context, identity, password string) (*ports.IdentitySession, error) {
	body, fail := c.send(ctx, http.MethodPost, loginPath, map[string]string{
		"email":    identity,
		"password": password,
	})
	if fail != nil {
		return nil, fail
	}
	return c.decodeSession(body, identity)
}

// Register creates an account. The backend takes one full-name field, so the
// caller's first/last names are joined here; splitting them back apart from
// the response is the caller's concern only when it never supplied them.
func (c *Client) Register(ctx context.Context, input ports.RegisterInput) (*ports.IdentitySession, error) {
	name := strings.TrimSpace(input.FirstName + " " + input.LastName)
	if name == "" {
		name = input.Identity
	}

	body, fail := c.send(ctx, http.MethodPost, registerPath, map[string]string{
		"name":                  name,
		"email":                 input.Identity,
		"password":              input.Password,
		"password_confirmation": input.PasswordConfirmation,
	})
	if fail != nil {
		return nil, fail
	}
	return c.decodeSession(body, input.Identity)
}

// Logout tells the backend to drop the remote session.
func (c *Client) Logout(ctx context.Context) error {
	_, fail := c.send(ctx, http.MethodPost, logoutPath, nil)
	if fail != nil {
		return fail
	}
	return nil
}

// send performs one request and classifies its outcome. A nil failure means
// a 2xx response; body is the raw response payload.
func (c *Client) send(ctx context.Context, method, path string, payload any) ([]byte, *domain.AuthFailure) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, domain.Failure(domain.FailureServerRejected, msgGenericRejection)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reqBody)
	if err != nil {
		return nil, domain.Failure(domain.FailureServerRejected, msgGenericRejection)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token := c.xsrfToken(); token != "" {
			req.Header.Set(xsrfHeaderName, token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// No response at all: backend down or unroutable.
		return nil, domain.Failure(domain.FailureNetworkUnreachable, "identity service unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Failure(domain.FailureNetworkUnreachable, "identity service unreachable")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, classifyHTTP(resp.StatusCode, body)
}

// xsrfToken returns the URL-decoded XSRF cookie captured by the preflight,
// empty when none was established yet.
func (c *Client) xsrfToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == xsrfCookieName {
			if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
				return decoded
			}
			return cookie.Value
		}
	}
	return ""
}

const msgGenericRejection = "identity service rejected the request"

// errorEnvelope is the backend's error payload: a top-level message plus,
// on 422, per-field violation lists.
type errorEnvelope struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// classifyHTTP maps a non-2xx response to the failure taxonomy.
func classifyHTTP(status int, body []byte) *domain.AuthFailure {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	switch status {
	case http.StatusUnauthorized:
		msg := envelope.Message
		if msg == "" {
			msg = "invalid username or password"
		}
		return domain.Failure(domain.FailureInvalidCredentials, msg)
	case http.StatusUnprocessableEntity:
		field, msg := firstFieldError(envelope)
		return &domain.AuthFailure{Kind: domain.FailureValidationFailed, Field: field, Message: msg}
	default:
		msg := envelope.Message
		if msg == "" {
			msg = fmt.Sprintf("%s (status %d)", msgGenericRejection, status)
		}
		return domain.Failure(domain.FailureServerRejected, msg)
	}
}

// firstFieldError picks the first violated field deterministically (field
// names sorted) and its first message.
func firstFieldError(envelope errorEnvelope) (field, msg string) {
	fields := make([]string, 0, len(envelope.Errors))
	for f, msgs := range envelope.Errors {
		if len(msgs) > 0 {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	if len(fields) > 0 {
		return fields[0], envelope.Errors[fields[0]][0]
	}
	if envelope.Message != "" {
		return "", envelope.Message
	}
	return "", "the given data was invalid"
}

// authEnvelope covers the shapes the backend emits on success: the token
// under "token" or "access_token", the user at the top level or nested
// under "data".
type authEnvelope struct {
	Token       string          `json:"token"`
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
	Data        struct {
		User json.RawMessage `json:"user"`
	} `json:"data"`
}

// userPayload covers the alternative keys a user object may carry. Candidate
// order is fixed: role → user_role → type, first_name/last_name → split of
// name.
type userPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	UserRole  string `json:"user_role"`
	Type      string `json:"type"`
}

// decodeSession normalizes a successful auth response into one canonical
// shape. identity is the username the caller supplied, used when the
// response omits any identity field of its own.
func (c *Client) decodeSession(body []byte, identity string) (*ports.IdentitySession, error) {
	var envelope authEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, domain.Failure(domain.FailureServerRejected, msgGenericRejection)
	}

	rawUser := envelope.User
	if len(rawUser) == 0 {
		rawUser = envelope.Data.User
	}

	var payload userPayload
	if len(rawUser) > 0 {
		if err := json.Unmarshal(rawUser, &payload); err != nil {
			return nil, domain.Failure(domain.FailureServerRejected, msgGenericRejection)
		}
	}

	remote := ports.RemoteUser{
		Username: firstNonEmpty(payload.Username, payload.Email, identity),
		RawRole:  firstNonEmpty(payload.Role, payload.UserRole, payload.Type),
	}
	remote.FirstName = payload.FirstName
	remote.LastName = payload.LastName
	if remote.FirstName == "" && remote.LastName == "" {
		remote.FirstName, remote.LastName = splitName(payload.Name)
	}

	token := firstNonEmpty(envelope.Token, envelope.AccessToken)
	if exp, ok := TokenExpiry(token); ok {
		c.logger.Debug().Time("expires_at", exp).Msg("bearer token issued")
	}

	return &ports.IdentitySession{User: remote, Token: token}, nil
}

// splitName divides a full name at its first whitespace boundary.
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if i := strings.IndexFunc(full, unicode.IsSpace); i >= 0 {
		return full[:i], strings.TrimSpace(full[i+1:])
	}
	return full, ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
