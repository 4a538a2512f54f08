// Package auth guards the admin surface with a single credential pair and
// per-client session tokens persisted in the store.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dfryer1193/journal/shared/kv"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionKeyPrefix namespaces session entries; the value is the expiry
	// in unix seconds.
	SessionKeyPrefix = "admin_session_"

	DefaultSessionTTL = 24 * time.Hour
)

func SessionKey(token string) string {
	return SessionKeyPrefix + token
}

type Gate struct {
	store    kv.Store
	username string
	hash     []byte
	ttl      time.Duration
	log      zerolog.Logger

	now      func() time.Time
	newToken func() string
}

// NewGate hashes password with bcrypt; the plain password is not retained.
func NewGate(store kv.Store, username, password string, log zerolog.Logger) (*Gate, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return NewGateWithHash(store, username, hash, log)
}

// NewGateWithHash uses an existing bcrypt hash.
func NewGateWithHash(store kv.Store, username string, hash []byte, log zerolog.Logger) (*Gate, error) {
	if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &Gate{
		store:    store,
		username: username,
		hash:     hash,
		ttl:      DefaultSessionTTL,
		log:      log.With().Str("component", "auth").Logger(),
		now:      time.Now,
		newToken: uuid.NewString,
	}, nil
}

// TTL is how long a session stays valid after login.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

func (g *Gate) ValidateCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
	if !userOK || !passOK {
		g.log.Warn().Str("username", username).Msg("Rejected admin credentials")
		return false
	}
	return true
}

// StartSession issues a fresh token and marks it authenticated.
func (g *Gate) StartSession(ctx context.Context) (string, error) {
	token := g.newToken()
	if err := g.SetAuthenticated(ctx, token, true); err != nil {
		return "", err
	}
	return token, nil
}

// IsAuthenticated reports whether token belongs to a live session. Expired
// sessions are removed on sight.
func (g *Gate) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	v, err := g.store.Get(ctx, SessionKey(token))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}

	expiry, err := strconv.ParseInt(v, 10, 64)
	if err == nil && g.now().Unix() < expiry {
		return true, nil
	}

	if err := g.store.Remove(ctx, SessionKey(token)); err != nil {
		g.log.Warn().Err(err).Msg("Failed to remove expired session")
	}
	return false, nil
}

// SetAuthenticated starts (true) or ends (false) the session for token.
func (g *Gate) SetAuthenticated(ctx context.Context, token string, value bool) error {
	if token == "" {
		return fmt.Errorf("session token is required")
	}

	if !value {
		if err := g.store.Remove(ctx, SessionKey(token)); err != nil {
			return fmt.Errorf("failed to end session: %w", err)
		}
		g.log.Info().Msg("Admin session ended")
		return nil
	}

	expiry := g.now().Add(g.ttl).Unix()
	if err := g.store.Put(ctx, SessionKey(token), strconv.FormatInt(expiry, 10)); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	g.log.Info().Time("expires", time.Unix(expiry, 0)).Msg("Admin session started")
	return nil
}
