package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yshengliao/antoree/pkg/storage"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// TokenHolder is the part of the HTTP client a Session drives
type TokenHolder interface {
	SetAuthToken(token string)
	RemoveAuthToken()
	AuthToken() (string, bool)
	SetLanguage(lang string)
	Language() string
}

// Session mirrors the client's token and language into a storage.Store so
// they survive restarts.
type Session struct {
	holder TokenHolder
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewSession creates a session over holder, persisted in store
func NewSession(holder TokenHolder, store storage.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		holder: holder,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Restore loads the persisted token and language into the client.
// A stored token that has already expired is discarded.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Get(ctx, storage.KeyAuthToken)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("auth: failed to read token: %w", err)
	default:
		if claims, perr := ParseClaims(token); perr == nil && claims.Expired(s.now()) {
			s.logger.Info("discarding expired session token", zap.String("user_id", claims.UserID))
			if err := s.store.Remove(ctx, storage.KeyAuthToken); err != nil {
				return fmt.Errorf("auth: failed to remove token: %w", err)
			}
		} else {
			s.holder.SetAuthToken(token)
		}
	}

	lang, err := s.storedLanguage(ctx)
	if err != nil {
		return err
	}
	if lang != "" {
		s.holder.SetLanguage(lang)
	}
	return nil
}

func (s *Session) storedLanguage(ctx context.Context) (string, error) {
	for _, key := range []string{storage.KeyLanguage, storage.KeyLegacyLanguage} {
		lang, err := s.store.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("auth: failed to read language: %w", err)
		}
		return lang, nil
	}
	return "", nil
}

// SetToken sets the client token and persists it
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.holder.SetAuthToken(token)
	if err := s.store.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("auth: failed to persist token: %w", err)
	}
	return nil
}

// Clear removes the token from the client and the store
func (s *Session) Clear(ctx context.Context) error {
	s.holder.RemoveAuthToken()
	if err := s.store.Remove(ctx, storage.KeyAuthToken); err != nil {
		return fmt.Errorf("auth: failed to remove token: %w", err)
	}
	return nil
}

// Token returns the current token
func (s *Session) Token() (string, bool) {
	return s.holder.AuthToken()
}

// Claims decodes the current token
func (s *Session) Claims() (*Claims, error) {
	token, ok := s.holder.AuthToken()
	if !ok {
		return nil, ErrNoToken
	}
	return ParseClaims(token)
}

// Authenticated reports whether a token is set and not known to be expired
func (s *Session) Authenticated() bool {
	token, ok := s.holder.AuthToken()
	if !ok || token == "" {
		return false
	}
	claims, err := ParseClaims(token)
	if err != nil {
		// Opaque tokens are trusted until the backend rejects them
		return true
	}
	return !claims.Expired(s.now())
}

// SetLanguage canonicalizes lang as a BCP 47 tag, sets it as
// Accept-Language and persists it under both language keys.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("auth: invalid language %q: %w", lang, err)
	}
	lang = tag.String()
	s.holder.SetLanguage(lang)
	for _, key := range []string{storage.KeyLanguage, storage.KeyLegacyLanguage} {
		if err := s.store.Set(ctx, key, lang); err != nil {
			return fmt.Errorf("auth: failed to persist language: %w", err)
		}
	}
	return nil
}
