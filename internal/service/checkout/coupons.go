package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type couponAPI interface {
	ListCoupons(ctx context.Context, cartID domain.ID) ([]domain.Coupon, error)
	ApplyCoupon(ctx context.Context, code string, cartID domain.ID) (*domain.CouponApplication, error)
}

// CouponStatus is the display pre-check for one coupon. The server decides
// for real when the coupon is applied.
type CouponStatus struct {
	Valid      bool `json:"valid"`
	Expired    bool `json:"expired"`
	MaxUsed    bool `json:"max_used"`
	Applicable bool `json:"applicable"`
}

// Eligibility pre-checks coupon against the cart total at now. A coupon
// without an expiry never expires and MaxUses <= 0 means unlimited.
func Eligibility(coupon domain.Coupon, cartTotal decimal.Decimal, now time.Time) CouponStatus {
	st := CouponStatus{
		Valid:   cartTotal.GreaterThanOrEqual(coupon.MinimumOrderAmount),
		Expired: coupon.ExpiryDate != nil && !coupon.ExpiryDate.IsZero() && coupon.ExpiryDate.Before(now),
		MaxUsed: coupon.MaxUses > 0 && coupon.UsesCount >= coupon.MaxUses,
	}
	st.Applicable = st.Valid && !st.Expired && !st.MaxUsed
	return st
}

// Coupons lists coupons and holds the single active coupon application.
type Coupons struct {
	api    couponAPI
	opts   options
	logger *zap.Logger

	mu     sync.RWMutex
	active *domain.CouponApplication
}

func NewCoupons(api couponAPI, logger *zap.Logger, opts ...Option) *Coupons {
	return &Coupons{api: api, opts: buildOptions(opts), logger: logging.OrNop(logger)}
}

// List returns the coupons offered for cartID.
func (c *Coupons) List(ctx context.Context, cartID domain.ID) ([]domain.Coupon, error) {
	coupons, err := c.api.ListCoupons(ctx, cartID)
	if err != nil {
		c.logger.Warn("list coupons failed", zap.Error(err))
		c.opts.notifier.Error(commerce.UserMessage(err, "Failed to fetch coupons"))
		return nil, err
	}
	return coupons, nil
}

// Apply asks the server to apply code to cartID. On success the result
// replaces the active application; on failure the previous one is kept.
func (c *Coupons) Apply(ctx context.Context, code string, cartID domain.ID) (*domain.CouponApplication, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: coupon code required", domain.ErrInvalidInput)
	}
	if cartID.IsZero() {
		return nil, domain.ErrNoCart
	}
	app, err := c.api.ApplyCoupon(ctx, code, cartID)
	if err != nil {
		c.logger.Warn("apply coupon failed", zap.String("code", code), zap.Error(err))
		c.opts.notifier.Error(commerce.UserMessage(err, "Failed to apply coupon"))
		return nil, err
	}
	c.mu.Lock()
	c.active = app.Clone()
	c.mu.Unlock()
	c.logger.Info("coupon applied", zap.String("code", code), zap.String("discount", ComputeDiscount(app).String()))
	c.opts.notifier.Success("Coupon applied successfully")
	return app, nil
}

// Active returns a copy of the active application, nil when none.
func (c *Coupons) Active() *domain.CouponApplication {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active.Clone()
}

// Clear drops the active application. It returns domain.ErrNoCoupon when
// nothing was applied.
func (c *Coupons) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.ErrNoCoupon
	}
	c.active = nil
	return nil
}
