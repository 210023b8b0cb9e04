package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/notify"
	"storefront/internal/tracking"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type commerceAPI interface {
	FetchCart(ctx context.Context, identity domain.CartIdentity) (json.RawMessage, error)
	AddToCart(ctx context.Context, identity domain.CartIdentity, in commerce.AddItemInput) (string, error)
	RemoveFromCart(ctx context.Context, identity domain.CartIdentity, itemID domain.ID) (string, error)
	UpdateQuantity(ctx context.Context, identity domain.CartIdentity, itemID domain.ID, quantity int) (string, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, user *domain.User) domain.CartIdentity
}

type userSource interface {
	Current() *domain.User
}

type eventTracker interface {
	Track(ctx context.Context, e tracking.Event) bool
}

// Store owns the client view of the cart. Only the store writes the state;
// every mutation is request-then-refetch so the state always mirrors the server.
type Store struct {
	api      commerceAPI
	identity identityResolver
	users    userSource
	notifier notify.Notifier
	tracker  eventTracker
	logger   *zap.Logger

	mu       sync.Mutex
	state    domain.CartState
	inflight int
	subs     map[int]func(domain.CartState)
	nextSub  int
}

// Option customizes a Store.
type Option func(*Store)

// WithUsers makes the store scope requests to the signed-in user when there is one.
func WithUsers(users userSource) Option {
	return func(s *Store) { s.users = users }
}

// WithNotifier routes user-facing messages.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithTracker reports add-to-cart events.
func WithTracker(t eventTracker) Option {
	return func(s *Store) { s.tracker = t }
}

func New(api commerceAPI, identity identityResolver, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		api:      api,
		identity: identity,
		notifier: notify.Discard{},
		logger:   logging.OrNop(logger),
		state:    domain.EmptyCart(),
		subs:     make(map[int]func(domain.CartState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Loading reports whether any cart request, including a chained refetch, is outstanding.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Subscribe calls fn with a fresh snapshot after every state change until cancel is called.
func (s *Store) Subscribe(fn func(domain.CartState)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Identity is the identity cart requests are currently scoped to.
func (s *Store) Identity(ctx context.Context) domain.CartIdentity {
	var user *domain.User
	if s.users != nil {
		user = s.users.Current()
	}
	return s.identity.Resolve(ctx, user)
}

// FetchCart replaces the state with the server's cart. On failure the items
// are cleared and the error is recorded.
func (s *Store) FetchCart(ctx context.Context) error {
	s.begin()
	defer s.end()
	return s.fetch(ctx)
}

// AddToCart adds quantity of a product (or variation) and refetches.
func (s *Store) AddToCart(ctx context.Context, productID domain.ID, quantity int, variationID domain.ID) error {
	if productID.IsZero() {
		return fmt.Errorf("%w: product id required", domain.ErrInvalidInput)
	}
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	err := s.mutate(ctx, "add", "Failed to add to cart", "Added to cart", func(identity domain.CartIdentity) (string, error) {
		return s.api.AddToCart(ctx, identity, commerce.AddItemInput{
			ProductID:   productID,
			VariationID: variationID,
			Quantity:    quantity,
		})
	})
	if err == nil {
		s.trackAdd(ctx, productID, variationID, quantity)
	}
	return err
}

// RemoveFromCart deletes a line item and refetches.
func (s *Store) RemoveFromCart(ctx context.Context, itemID domain.ID) error {
	if itemID.IsZero() {
		return fmt.Errorf("%w: item id required", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, "remove", "Failed to remove from cart", "Item removed from cart", func(identity domain.CartIdentity) (string, error) {
		return s.api.RemoveFromCart(ctx, identity, itemID)
	})
}

// UpdateCartQuantity sets the absolute quantity of a line item and refetches.
func (s *Store) UpdateCartQuantity(ctx context.Context, itemID domain.ID, quantity int) error {
	if itemID.IsZero() {
		return fmt.Errorf("%w: item id required", domain.ErrInvalidInput)
	}
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	return s.mutate(ctx, "update", "Failed to update cart quantity", "Cart updated", func(identity domain.CartIdentity) (string, error) {
		return s.api.UpdateQuantity(ctx, identity, itemID, quantity)
	})
}

// StepQuantity converts an increment/decrement into an absolute quantity
// based on the current state.
func (s *Store) StepQuantity(ctx context.Context, itemID domain.ID, delta int) error {
	item, ok := s.Snapshot().Item(itemID)
	if !ok {
		return domain.ErrNotFound
	}
	return s.UpdateCartQuantity(ctx, itemID, item.Quantity+delta)
}

// ClearCart empties the local state without a request, e.g. after an order is placed.
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.state.Items = []domain.CartLineItem{}
	s.state.Subtotal = decimal.Zero
	s.state.ItemsCount = 0
	s.mu.Unlock()
	s.publish()
}

func (s *Store) mutate(ctx context.Context, op, failure, success string, call func(domain.CartIdentity) (string, error)) error {
	s.begin()
	defer s.end()

	identity := s.Identity(ctx)
	msg, err := call(identity)
	if err != nil {
		s.logger.Warn("cart mutation failed", zap.String("op", op), zap.String("identity", string(identity.Kind)), zap.Error(err))
		s.notifier.Error(commerce.UserMessage(err, failure))
		return err
	}
	if strings.TrimSpace(msg) == "" {
		msg = success
	}
	s.notifier.Success(msg)
	if err := s.fetch(ctx); err != nil {
		return fmt.Errorf("refresh cart after %s: %w", op, err)
	}
	return nil
}

func (s *Store) fetch(ctx context.Context) error {
	s.mu.Lock()
	s.state.Error = nil
	s.mu.Unlock()

	raw, err := s.api.FetchCart(ctx, s.Identity(ctx))
	if err != nil {
		msg := commerce.UserMessage(err, "Failed to fetch cart")
		s.logger.Warn("fetch cart failed", zap.Error(err))
		failed := domain.EmptyCart()
		failed.Error = &msg
		s.replace(failed)
		s.notifier.Error(msg)
		return err
	}
	next := Normalize(raw)
	s.logger.Debug("cart fetched", zap.Int("items", len(next.Items)), zap.String("subtotal", next.Subtotal.String()))
	s.replace(next)
	return nil
}

func (s *Store) replace(next domain.CartState) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.publish()
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	s.publish()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.publish()
}

func (s *Store) snapshotLocked() domain.CartState {
	snap := s.state.Clone()
	snap.Loading = s.inflight > 0
	return snap
}

func (s *Store) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]func(domain.CartState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) trackAdd(ctx context.Context, productID, variationID domain.ID, quantity int) {
	if s.tracker == nil {
		return
	}
	ev := tracking.Event{
		Name:       tracking.EventAddToCart,
		ContentIDs: []string{productID.String()},
		NumItems:   quantity,
	}
	for _, item := range s.Snapshot().Items {
		if item.ProductID == productID && item.VariationID == variationID {
			ev.ContentName = item.Name
			ev.Value = item.Price.Mul(decimal.NewFromInt(int64(quantity)))
			break
		}
	}
	s.tracker.Track(ctx, ev)
}
