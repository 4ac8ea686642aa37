// Package identitytest provides an in-process stand-in for the storefront
// identity backend, for use in tests. It honours the Sanctum contract: a
// preflight GET establishes an XSRF cookie, and every write must echo the
// token back in a header or is rejected with 419.
package identitytest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	xsrfCookieName = "XSRF-TOKEN"
	xsrfHeaderName = "X-XSRF-TOKEN"
	xsrfToken      = "identitytest-csrf-token"

	statusPageExpired = 419

	signingKey = "identitytest-signing-key"
)

// Account is a user known to the fake backend.
type Account struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Server is the fake backend. Configure the exported knobs before issuing
// requests; counters record how often each endpoint was hit.
type Server struct {
	URL string

	// Nested switches success responses from {token, user:{..., role}} to
	// the alternative {access_token, data:{user:{..., user_role}}} shape.
	Nested bool
	// FailLogout makes POST /logout answer 500.
	FailLogout bool

	httpServer *httptest.Server

	mu         sync.Mutex
	accounts   map[string]Account
	preflights int
	logins     int
	registers  int
	logouts    int
}

// New starts a fake backend. Callers must Close it.
func New() *Server {
	s := &Server{accounts: make(map[string]Account)}

	e := echo.New()
	e.HideBanner = true
	e.GET("/sanctum/csrf-cookie", s.preflight)
	e.POST("/login", s.login, s.requireXSRF)
	e.POST("/register", s.register, s.requireXSRF)
	e.POST("/logout", s.logout)

	s.httpServer = httptest.NewServer(e)
	s.URL = s.httpServer.URL
	return s
}

func (s *Server) Close() { s.httpServer.Close() }

// AddAccount registers an account the fake backend will authenticate.
func (s *Server) AddAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Email] = a
}

func (s *Server) Preflights() int { s.mu.Lock(); defer s.mu.Unlock(); return s.preflights }
func (s *Server) Logins() int     { s.mu.Lock(); defer s.mu.Unlock(); return s.logins }
func (s *Server) Registers() int  { s.mu.Lock(); defer s.mu.Unlock(); return s.registers }
func (s *Server) Logouts() int    { s.mu.Lock(); defer s.mu.Unlock(); return s.logouts }

// Requests returns the total number of requests the backend served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preflights + s.logins + s.registers + s.logouts
}

func (s *Server) preflight(c echo.Context) error {
	s.mu.Lock()
	s.preflights++
	s.mu.Unlock()

	c.SetCookie(&http.Cookie{
		Name:  xsrfCookieName,
		Value: xsrfToken,
		Path:  "/",
	})
	return c.NoContent(http.StatusNoContent)
}

// requireXSRF rejects writes that did not run the preflight handshake.
func (s *Server) requireXSRF(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get(xsrfHeaderName) != xsrfToken {
			return c.JSON(statusPageExpired, map[string]string{"message": "CSRF token mismatch."})
		}
		return next(c)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	s.mu.Lock()
	s.logins++
	s.mu.Unlock()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}

	s.mu.Lock()
	account, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || account.Password != req.Password {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"message": "These credentials do not match our records.",
		})
	}

	return c.JSON(http.StatusOK, s.successBody(account))
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (s *Server) register(c echo.Context) error {
	s.mu.Lock()
	s.registers++
	s.mu.Unlock()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
	}

	fieldErrors := map[string][]string{}
	if req.Email == "" {
		fieldErrors["email"] = []string{"The email field is required."}
	}
	if req.Password == "" {
		fieldErrors["password"] = []string{"The password field is required."}
	} else if req.Password != req.PasswordConfirmation {
		fieldErrors["password"] = []string{"The password confirmation does not match."}
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		fieldErrors["email"] = []string{"The email has already been taken."}
	}
	s.mu.Unlock()

	if len(fieldErrors) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  fieldErrors,
		})
	}

	account := Account{Email: req.Email, Password: req.Password, Name: req.Name, Role: "user"}
	s.mu.Lock()
	s.accounts[req.Email] = account
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, s.successBody(account))
}

func (s *Server) logout(c echo.Context) error {
	s.mu.Lock()
	s.logouts++
	fail := s.FailLogout
	s.mu.Unlock()

	if fail {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// successBody renders a successful auth response in one of the two shapes
// real backends have been seen emitting.
func (s *Server) successBody(account Account) map[string]any {
	token := s.issueToken(account)
	if s.Nested {
		return map[string]any{
			"access_token": token,
			"data": map[string]any{
				"user": map[string]any{
					"email":     account.Email,
					"name":      account.Name,
					"user_role": account.Role,
				},
			},
		}
	}
	return map[string]any{
		"token": token,
		"user": map[string]any{
			"email": account.Email,
			"name":  account.Name,
			"role":  account.Role,
		},
	}
}

func (s *Server) issueToken(account Account) string {
	claims := jwt.MapClaims{
		"sub": account.Email,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		return "opaque-token"
	}
	return token
}
