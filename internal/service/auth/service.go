package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/notify"
	"storefront/internal/repository/storage"

	"go.uber.org/zap"
)

type authAPI interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, token string) (*domain.User, error)
}

type cartRefresher interface {
	FetchCart(ctx context.Context) error
}

// Service handles login/logout flows and remembers the signed-in user.
type Service struct {
	api      authAPI
	tokens   *tokenStore
	notifier notify.Notifier
	logger   *zap.Logger

	mu   sync.RWMutex
	user *domain.User
	cart cartRefresher
}

func New(api authAPI, repo storage.Repository, notifier notify.Notifier, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{
		api:      api,
		tokens:   newTokenStore(repo),
		notifier: notifier,
		logger:   logging.OrNop(logger),
	}
}

// AttachCart makes login and logout refetch the cart under the new identity.
func (s *Service) AttachCart(cart cartRefresher) {
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
}

// Current returns the signed-in user, nil when anonymous.
func (s *Service) Current() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login exchanges credentials for a token, stores it and loads the user.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: password required", domain.ErrInvalidInput)
	}

	token, user, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("email", email), zap.Error(err))
		s.notifier.Error(commerce.UserMessage(err, "Login failed"))
		return nil, err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		s.logger.Warn("persist access token failed", zap.Error(err))
	}
	if user == nil || user.ID.IsZero() {
		if user, err = s.api.Me(ctx, token); err != nil {
			_ = s.tokens.Forget(ctx)
			s.notifier.Error(commerce.UserMessage(err, "Failed to fetch user data"))
			return nil, err
		}
	}
	s.setUser(user)
	s.logger.Info("signed in", zap.String("user_id", user.ID.String()))
	s.notifier.Success("Login successful")
	s.refreshCart(ctx)
	return s.Current(), nil
}

// LoadUser restores the user from the stored token. A rejected token is
// forgotten and domain.ErrUnauthorized returned; no token yields the same error.
func (s *Service) LoadUser(ctx context.Context) (*domain.User, error) {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		s.setUser(nil)
		return nil, domain.ErrUnauthorized
	}
	user, err := s.api.Me(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.logger.Info("stored token rejected, signing out")
			if ferr := s.tokens.Forget(ctx); ferr != nil {
				s.logger.Warn("forget access token failed", zap.Error(ferr))
			}
			s.setUser(nil)
		}
		return nil, err
	}
	s.setUser(user)
	return s.Current(), nil
}

// Logout forgets the token and user and refetches the session cart.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.tokens.Forget(ctx); err != nil {
		return err
	}
	s.setUser(nil)
	s.notifier.Success("Logged out")
	s.refreshCart(ctx)
	return nil
}

// Token returns the stored access token, "" when anonymous.
func (s *Service) Token(ctx context.Context) string {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.logger.Warn("read access token failed", zap.Error(err))
		return ""
	}
	return token
}

func (s *Service) setUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

func (s *Service) refreshCart(ctx context.Context) {
	s.mu.RLock()
	cart := s.cart
	s.mu.RUnlock()
	if cart == nil {
		return
	}
	if err := cart.FetchCart(ctx); err != nil {
		s.logger.Warn("refresh cart after identity change failed", zap.Error(err))
	}
}
