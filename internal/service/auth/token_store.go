package auth

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/repository/storage"
)

// tokenStore keeps the access token in client storage.
type tokenStore struct {
	repo storage.Repository
}

func newTokenStore(repo storage.Repository) *tokenStore {
	return &tokenStore{repo: repo}
}

func (s *tokenStore) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, storage.KeyAccessToken, token)
}

// Load returns the stored token, "" when none is stored.
func (s *tokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.repo.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *tokenStore) Forget(ctx context.Context) error {
	if err := s.repo.Delete(ctx, storage.KeyAccessToken); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// TokenSource reads the stored access token for every request. Storage
// failures send the request anonymously.
func TokenSource(repo storage.Repository) commerce.TokenSource {
	tokens := newTokenStore(repo)
	return func(ctx context.Context) string {
		token, err := tokens.Load(ctx)
		if err != nil {
			return ""
		}
		return token
	}
}
