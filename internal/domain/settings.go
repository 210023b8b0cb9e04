package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zone is a delivery zone used to pick a flat shipping charge. The values are
// the area codes the order endpoint expects.
type Zone string

const (
	ZoneInside  Zone = "inside_dhaka"
	ZoneOutside Zone = "outside_dhaka"
)

// ParseZone accepts "inside"/"outside" or the full area code in any case.
func ParseZone(raw string) (Zone, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inside", string(ZoneInside):
		return ZoneInside, true
	case "outside", string(ZoneOutside):
		return ZoneOutside, true
	default:
		return "", false
	}
}

// Settings are the storefront settings consumed by checkout.
type Settings struct {
	ShippingInside  decimal.Decimal `json:"shipping_charge_inside_dhaka"`
	ShippingOutside decimal.Decimal `json:"shipping_charge_outside_dhaka"`
}

// CheckoutTotals is the derived order summary.
type CheckoutTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	Total         decimal.Decimal `json:"total"`
	Clamped       bool            `json:"clamped,omitempty"`
}
