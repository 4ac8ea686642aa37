package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/revogue/storefront-client/internal/core/domain"
)

// persistedState is the on-disk layout: the credential table, the current
// session, and the bearer token in one JSON document.
type persistedState struct {
	Credentials []domain.StoredCredential `json:"credentials"`
	Session     *domain.AuthUser          `json:"session"`
	Token       string                    `json:"token,omitempty"`
}

// FileStore is the default SessionStore: a single JSON file rewritten
// atomically (temp file + rename) on every mutation.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	creds   map[string]domain.StoredCredential
	session *domain.AuthUser
	token   string
}

func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
		creds:  seedCredentials(),
	}
}

// Hydrate loads the state file, overlaying persisted credentials on the
// bootstrap seeds. A missing or unreadable file degrades to the seeds and an
// empty session; corruption is logged, never surfaced.
func (s *FileStore) Hydrate(_ context.Context) *domain.AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = seedCredentials()
	s.session = nil
	s.token = ""

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("session state unreadable, starting from defaults")
		}
		return nil
	}

	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("session state corrupt, starting from defaults")
		return nil
	}

	for _, cred := range state.Credentials {
		if cred.Username == "" {
			continue
		}
		s.creds[domain.CredentialKey(cred.Username)] = cred
	}
	s.session = state.Session
	s.token = state.Token

	return cloneUser(s.session)
}

func (s *FileStore) UpsertCredential(_ context.Context, cred domain.StoredCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[domain.CredentialKey(cred.Username)] = cred
	return s.persistLocked()
}

func (s *FileStore) FindCredential(username string) (domain.StoredCredential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[domain.CredentialKey(username)]
	return cred, ok
}

func (s *FileStore) SetSession(_ context.Context, user *domain.AuthUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = cloneUser(user)
	return s.persistLocked()
}

func (s *FileStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return s.persistLocked()
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *FileStore) Close() error { return nil }

// persistLocked writes the whole state synchronously. Callers hold s.mu.
func (s *FileStore) persistLocked() error {
	state := persistedState{
		Credentials: make([]domain.StoredCredential, 0, len(s.creds)),
		Session:     s.session,
		Token:       s.token,
	}
	for _, cred := range s.creds {
		state.Credentials = append(state.Credentials, cred)
	}
	// Stable file output regardless of map iteration order.
	sort.Slice(state.Credentials, func(i, j int) bool {
		return domain.CredentialKey(state.Credentials[i].Username) < domain.CredentialKey(state.Credentials[j].Username)
	})

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session state: %w", err)
	}
	return nil
}

func cloneUser(u *domain.AuthUser) *domain.AuthUser {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
