package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/revogue/storefront-client/internal/core/domain"
)

const (
	credentialsKey = "storefront:credentials"
	sessionKey     = "storefront:session"
	tokenKey       = "storefront:token"

	defaultPingTimeout = 5 * time.Second
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisStore is the SessionStore variant for shared-kiosk deployments where
// the client state lives in a cache instead of the local filesystem. The
// credential table is mirrored in memory so lookups stay synchronous;
// mutations write through to Redis before returning.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger

	mu      sync.Mutex
	creds   map[string]domain.StoredCredential
	session *domain.AuthUser
	token   string
}

func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
		creds:  seedCredentials(),
	}
}

// Hydrate loads the three records from Redis, overlaying persisted
// credentials on the bootstrap seeds. Read failures and malformed entries
// degrade to defaults, logged only.
func (s *RedisStore) Hydrate(ctx context.Context) *domain.AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = seedCredentials()
	s.session = nil
	s.token = ""

	entries, err := s.client.HGetAll(ctx, credentialsKey).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("credential table unreadable, starting from defaults")
		return nil
	}
	for key, raw := range entries {
		var cred domain.StoredCredential
		if err := json.Unmarshal([]byte(raw), &cred); err != nil || cred.Username == "" {
			s.logger.Warn().Str("key", key).Msg("dropping corrupt credential entry")
			continue
		}
		s.creds[domain.CredentialKey(cred.Username)] = cred
	}

	if raw, err := s.client.Get(ctx, sessionKey).Result(); err == nil {
		var user domain.AuthUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.logger.Warn().Err(err).Msg("session record corrupt, starting anonymous")
		} else {
			s.session = &user
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("session record unreadable, starting anonymous")
	}

	if tok, err := s.client.Get(ctx, tokenKey).Result(); err == nil {
		s.token = tok
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("bearer token unreadable")
	}

	return cloneUser(s.session)
}

func (s *RedisStore) UpsertCredential(ctx context.Context, cred domain.StoredCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	key := domain.CredentialKey(cred.Username)
	if err := s.client.HSet(ctx, credentialsKey, key, raw).Err(); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.creds[key] = cred
	return nil
}

func (s *RedisStore) FindCredential(username string) (domain.StoredCredential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[domain.CredentialKey(username)]
	return cred, ok
}

func (s *RedisStore) SetSession(ctx context.Context, user *domain.AuthUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		s.session = nil
		return nil
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.session = cloneUser(user)
	return nil
}

func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		if err := s.client.Del(ctx, tokenKey).Err(); err != nil {
			return fmt.Errorf("clear bearer token: %w", err)
		}
	} else if err := s.client.Set(ctx, tokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("persist bearer token: %w", err)
	}
	s.token = token
	return nil
}

func (s *RedisStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *RedisStore) Close() error { return s.client.Close() }
