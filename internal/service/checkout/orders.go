package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/tracking"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderAPI interface {
	SubmitOrder(ctx context.Context, identity domain.CartIdentity, in domain.OrderRequest) (domain.PlacedOrder, error)
	FetchOrder(ctx context.Context, orderNumber string) (*domain.Order, error)
}

type cartStore interface {
	Snapshot() domain.CartState
	Identity(ctx context.Context) domain.CartIdentity
	FetchCart(ctx context.Context) error
}

type settingsSource interface {
	Current() *domain.Settings
}

// Orders builds checkout summaries and submits orders from the cart.
type Orders struct {
	api      orderAPI
	cart     cartStore
	settings settingsSource
	coupons  *Coupons
	opts     options
	logger   *zap.Logger
}

func NewOrders(api orderAPI, cart cartStore, settings settingsSource, coupons *Coupons, logger *zap.Logger, opts ...Option) *Orders {
	return &Orders{
		api:      api,
		cart:     cart,
		settings: settings,
		coupons:  coupons,
		opts:     buildOptions(opts),
		logger:   logging.OrNop(logger),
	}
}

func (o *Orders) activeCoupon() *domain.CouponApplication {
	if o.coupons == nil {
		return nil
	}
	return o.coupons.Active()
}

// Summary derives the checkout view for zone from the current cart. A
// non-empty cart reports an InitiateCheckout event.
func (o *Orders) Summary(ctx context.Context, zone domain.Zone) Summary {
	state := o.cart.Snapshot()
	sum := Summarize(state, zone, o.settings.Current(), o.activeCoupon())
	if sum.Clamped {
		o.logger.Warn("checkout total clamped at zero",
			zap.String("subtotal", sum.Subtotal.String()),
			zap.String("discount", sum.TotalDiscount.String()))
	}
	if len(state.Items) > 0 && state.Subtotal.IsPositive() {
		o.track(ctx, tracking.EventInitiateCheckout, state, state.Subtotal)
	}
	return sum
}

// Submit places an order for the current cart. On success the active coupon
// is dropped and the cart is refetched.
func (o *Orders) Submit(ctx context.Context, info domain.CustomerInfo, zone domain.Zone, paymentMethod string) (domain.PlacedOrder, error) {
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.ShippingAddress = strings.TrimSpace(info.ShippingAddress)
	switch {
	case info.Name == "":
		return domain.PlacedOrder{}, fmt.Errorf("%w: customer name required", domain.ErrInvalidInput)
	case info.Phone == "":
		return domain.PlacedOrder{}, fmt.Errorf("%w: customer phone required", domain.ErrInvalidInput)
	case info.ShippingAddress == "":
		return domain.PlacedOrder{}, fmt.Errorf("%w: shipping address required", domain.ErrInvalidInput)
	}
	if zone != domain.ZoneInside && zone != domain.ZoneOutside {
		return domain.PlacedOrder{}, fmt.Errorf("%w: delivery zone required", domain.ErrInvalidInput)
	}
	switch paymentMethod {
	case "":
		paymentMethod = domain.PaymentCOD
	case domain.PaymentCOD, domain.PaymentOnline:
	default:
		return domain.PlacedOrder{}, fmt.Errorf("%w: unsupported payment method", domain.ErrInvalidInput)
	}

	state := o.cart.Snapshot()
	if len(state.Items) == 0 {
		return domain.PlacedOrder{}, domain.ErrNoCart
	}
	app := o.activeCoupon()
	settings := o.settings.Current()
	req := domain.OrderRequest{
		CustomerInfo:  info,
		ShippingCost:  ComputeShipping(zone, settings),
		Area:          zone,
		PaymentMethod: paymentMethod,
		Items:         OrderItems(state.Items, app),
	}

	placed, err := o.api.SubmitOrder(ctx, o.cart.Identity(ctx), req)
	if err != nil {
		o.logger.Warn("submit order failed", zap.Error(err))
		o.opts.notifier.Error(commerce.UserMessage(err, "Error submitting order"))
		return domain.PlacedOrder{}, err
	}
	o.logger.Info("order placed", zap.String("order_number", placed.OrderNumber), zap.Int("items", len(req.Items)))
	o.opts.notifier.Success("Order submitted successfully")

	total, _ := ComputeTotal(state.Subtotal, req.ShippingCost, ComputeDiscount(app))
	o.track(ctx, tracking.EventPurchase, state, total)
	if o.coupons != nil {
		_ = o.coupons.Clear()
	}
	if err := o.cart.FetchCart(ctx); err != nil {
		o.logger.Warn("refresh cart after order failed", zap.Error(err))
	}
	return placed, nil
}

// Get loads a placed order. Unknown numbers yield domain.ErrNotFound.
func (o *Orders) Get(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := o.api.FetchOrder(ctx, orderNumber)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			o.opts.notifier.Error(commerce.UserMessage(err, "Failed to load order details."))
		}
		return nil, err
	}
	return order, nil
}

// OrderItems normalizes cart lines into order lines, copying the coupon
// override of the matching line when the server returned one.
func OrderItems(items []domain.CartLineItem, app *domain.CouponApplication) []domain.OrderItemRequest {
	out := make([]domain.OrderItemRequest, 0, len(items))
	for _, item := range items {
		line := domain.OrderItemRequest{
			ProductID:          item.ProductID,
			ProductVariationID: item.VariationID,
			Quantity:           item.Quantity,
		}
		if override, ok := app.ItemFor(item.ID); ok {
			if override.CouponCode != "" {
				code := override.CouponCode
				line.CouponCode = &code
			}
			if override.DiscountType != "" {
				kind := override.DiscountType
				line.DiscountType = &kind
			}
			line.DiscountAmount = override.DiscountAmount
			line.DiscountedPrice = override.DiscountedPrice
		}
		out = append(out, line)
	}
	return out
}

func (o *Orders) track(ctx context.Context, name string, state domain.CartState, value decimal.Decimal) {
	if o.opts.tracker == nil {
		return
	}
	ev := tracking.Event{
		Name:       name,
		ContentIDs: make([]string, 0, len(state.Items)),
		Value:      value,
		NumItems:   len(state.Items),
	}
	for _, item := range state.Items {
		ev.ContentIDs = append(ev.ContentIDs, item.ProductID.String())
	}
	o.opts.tracker.Track(ctx, ev)
}
