package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/repository/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver decides which identity scopes cart requests: the signed-in user, or
// the anonymous session of this installation.
type Resolver struct {
	store  storage.Repository
	logger *zap.Logger
	newID  func() string

	mu     sync.Mutex
	cached string
}

func New(store storage.Repository, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logging.OrNop(logger),
		newID:  uuid.NewString,
	}
}

// Resolve returns the user variant for a user with an id, the session variant otherwise.
func (r *Resolver) Resolve(ctx context.Context, user *domain.User) domain.CartIdentity {
	if user != nil && !user.ID.IsZero() {
		return domain.UserIdentity(user.ID)
	}
	return domain.SessionIdentity(r.SessionID(ctx))
}

// SessionID returns the persisted session id, creating and persisting one on
// first use. It never fails: when storage can't be read or written a fresh
// id is returned for this call only.
func (r *Resolver) SessionID(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != "" {
		return r.cached
	}

	existing, err := r.store.Get(ctx, storage.KeySessionID)
	switch {
	case err == nil && strings.TrimSpace(existing) != "":
		r.cached = existing
		return existing
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		r.logger.Warn("session storage unreadable, using ephemeral session id", zap.Error(err))
		return r.newID()
	}

	id := r.newID()
	if err := r.store.Set(ctx, storage.KeySessionID, id); err != nil {
		r.logger.Warn("session storage unwritable, using ephemeral session id", zap.Error(err))
		return id
	}
	r.cached = id
	r.logger.Info("created session id", zap.String("session_id", id))
	return id
}

// Reset replaces the persisted session id.
func (r *Resolver) Reset(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: session id required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Set(ctx, storage.KeySessionID, id); err != nil {
		return err
	}
	r.cached = id
	return nil
}
