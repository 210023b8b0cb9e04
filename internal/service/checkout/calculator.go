// Package checkout derives checkout totals from the cart, the storefront
// settings and the active coupon, and owns coupon application and order
// submission.
package checkout

import (
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// ComputeShipping returns the flat charge for zone, zero when settings are not
// loaded or the zone is unknown.
func ComputeShipping(zone domain.Zone, settings *domain.Settings) decimal.Decimal {
	if settings == nil {
		return decimal.Zero
	}
	switch zone {
	case domain.ZoneInside:
		return settings.ShippingInside
	case domain.ZoneOutside:
		return settings.ShippingOutside
	default:
		return decimal.Zero
	}
}

// ComputeDiscount returns the aggregate discount of the first applied coupon.
func ComputeDiscount(app *domain.CouponApplication) decimal.Decimal {
	primary, ok := app.Primary()
	if !ok || primary.Summary == nil {
		return decimal.Zero
	}
	return primary.Summary.TotalDiscount
}

// ComputeTotal returns subtotal + shipping - discount, floored at zero.
// clamped reports that the floor was hit.
func ComputeTotal(subtotal, shipping, discount decimal.Decimal) (total decimal.Decimal, clamped bool) {
	total = subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero, true
	}
	return total, false
}

// LineDisplayPrice is the coupon's discounted price for item when the server
// returned one, the item price otherwise.
func LineDisplayPrice(item domain.CartLineItem, app *domain.CouponApplication) decimal.Decimal {
	if override, ok := app.ItemFor(item.ID); ok && override.DiscountedPrice != nil {
		return *override.DiscountedPrice
	}
	return item.Price
}

// Line is one display row of the checkout summary.
type Line struct {
	domain.CartLineItem
	DisplayPrice decimal.Decimal `json:"display_price"`
	Discounted   bool            `json:"discounted"`
}

// Summary is everything a checkout view renders.
type Summary struct {
	domain.CheckoutTotals
	Zone       domain.Zone `json:"zone"`
	CouponCode string      `json:"coupon_code,omitempty"`
	Lines      []Line      `json:"lines"`
}

// Summarize derives the checkout summary. The subtotal is the server-declared
// cart subtotal, never a sum of display prices.
func Summarize(state domain.CartState, zone domain.Zone, settings *domain.Settings, app *domain.CouponApplication) Summary {
	shipping := ComputeShipping(zone, settings)
	discount := ComputeDiscount(app)
	total, clamped := ComputeTotal(state.Subtotal, shipping, discount)

	out := Summary{
		CheckoutTotals: domain.CheckoutTotals{
			Subtotal:      state.Subtotal,
			ShippingCost:  shipping,
			TotalDiscount: discount,
			Total:         total,
			Clamped:       clamped,
		},
		Zone:  zone,
		Lines: make([]Line, 0, len(state.Items)),
	}
	if primary, ok := app.Primary(); ok {
		out.CouponCode = primary.CouponCode
	}
	for _, item := range state.Items {
		price := LineDisplayPrice(item, app)
		out.Lines = append(out.Lines, Line{
			CartLineItem: item,
			DisplayPrice: price,
			Discounted:   !price.Equal(item.Price),
		})
	}
	return out
}
