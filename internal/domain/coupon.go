package domain

import "github.com/shopspring/decimal"

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a coupon definition as listed by the commerce API.
type Coupon struct {
	ID                 ID              `json:"id"`
	Name               string          `json:"name"`
	Code               string          `json:"code"`
	DiscountType       string          `json:"discount_type"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	MinimumOrderAmount decimal.Decimal `json:"minimum_order_amount"`
	ExpiryDate         *Date           `json:"expiry_date,omitempty"`
	UsesCount          int             `json:"uses_count"`
	MaxUses            int             `json:"max_uses"`
}

// CouponSummary carries the aggregate discount of an applied coupon.
type CouponSummary struct {
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

// CouponItem is a per-line override returned by the server.
type CouponItem struct {
	CartItemID      ID               `json:"cart_item_id"`
	CouponCode      string           `json:"coupon_code,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	DiscountType    string           `json:"discount_type,omitempty"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
}

// AppliedCoupon is one entry of a coupon application.
type AppliedCoupon struct {
	CouponCode string         `json:"coupon_code,omitempty"`
	Summary    *CouponSummary `json:"summary,omitempty"`
	Items      []CouponItem   `json:"items,omitempty"`
}

// CouponApplication is the server result of applying a code to a cart. Only the
// first applied entry is honored.
type CouponApplication struct {
	Applied []AppliedCoupon `json:"applied"`
}

// Primary returns the honored entry, if any.
// Clone returns a deep copy; nil stays nil.
func (c *CouponApplication) Clone() *CouponApplication {
	if c == nil {
		return nil
	}
	out := &CouponApplication{Applied: make([]AppliedCoupon, len(c.Applied))}
	for i, applied := range c.Applied {
		if applied.Summary != nil {
			summary := *applied.Summary
			applied.Summary = &summary
		}
		if applied.Items != nil {
			items := make([]CouponItem, len(applied.Items))
			for j, item := range applied.Items {
				if item.DiscountAmount != nil {
					amount := *item.DiscountAmount
					item.DiscountAmount = &amount
				}
				if item.DiscountedPrice != nil {
					price := *item.DiscountedPrice
					item.DiscountedPrice = &price
				}
				items[j] = item
			}
			applied.Items = items
		}
		out.Applied[i] = applied
	}
	return out
}

func (c *CouponApplication) Primary() (AppliedCoupon, bool) {
	if c == nil || len(c.Applied) == 0 {
		return AppliedCoupon{}, false
	}
	return c.Applied[0], true
}

// ItemFor returns the per-line override for a cart item.
func (c *CouponApplication) ItemFor(cartItemID ID) (CouponItem, bool) {
	primary, ok := c.Primary()
	if !ok {
		return CouponItem{}, false
	}
	for _, item := range primary.Items {
		if item.CartItemID == cartItemID {
			return item, true
		}
	}
	return CouponItem{}, false
}
