// Package session persists the authenticated identity between runs.
//
// A session is the pair (user, bearer token). Both halves are stored under
// separate keys and are only ever reported together: a missing half, an
// empty token or an unparsable user record all read back as "no session".
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/harvesthub/internal/client/models"
	"github.com/dmitrijs2005/harvesthub/internal/client/storage"
	"github.com/dmitrijs2005/harvesthub/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Storage keys, namespaced for the application.
const (
	UserKey  = "harvesthub_user"
	TokenKey = "harvesthub_token"
)

// Session is an authenticated user together with its bearer token.
type Session struct {
	User  models.User
	Token string
}

// Store reads and writes the session through an injected storage.Store.
type Store struct {
	kv  storage.Store
	log logging.Logger
}

func NewStore(kv storage.Store, log logging.Logger) *Store {
	return &Store{kv: kv, log: log.With("component", "session")}
}

// SetSession stores user and token in one storage transaction.
func (s *Store) SetSession(ctx context.Context, user models.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = s.kv.Update(ctx, func(ctx context.Context, kv storage.KV) error {
		if err := kv.Set(ctx, UserKey, raw); err != nil {
			return err
		}
		return kv.Set(ctx, TokenKey, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.log.Debug(ctx, "session stored", "user_id", user.ID, "role", user.Role)
	return nil
}

// GetSession returns the stored session and true, or false when there is none.
// Storage failures and malformed data are logged and reported as absence.
func (s *Store) GetSession(ctx context.Context) (Session, bool) {
	rawUser, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		s.log.Warn(ctx, "read user entry", "error", err)
		return Session{}, false
	}
	token, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		s.log.Warn(ctx, "read token entry", "error", err)
		return Session{}, false
	}
	if len(rawUser) == 0 || len(token) == 0 {
		return Session{}, false
	}

	var user *models.User
	if err := json.Unmarshal(rawUser, &user); err != nil || user == nil {
		s.log.Warn(ctx, "stored user entry is malformed", "error", err)
		return Session{}, false
	}

	return Session{User: *user, Token: string(token)}, true
}

// ClearSession removes both entries. Clearing an empty store is not an error.
func (s *Store) ClearSession(ctx context.Context) error {
	err := s.kv.Update(ctx, func(ctx context.Context, kv storage.KV) error {
		if err := kv.Delete(ctx, UserKey); err != nil {
			return err
		}
		return kv.Delete(ctx, TokenKey)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Debug(ctx, "session cleared")
	return nil
}

// TokenExpiry reads the exp claim of a JWT bearer token without checking
// its signature; the server remains the authority on validity. ok is false
// for opaque tokens and JWTs without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// Expired reports whether the token carries an exp claim that is before now.
func (s Session) Expired(now time.Time) bool {
	exp, ok := TokenExpiry(s.Token)
	return ok && !now.Before(exp)
}
