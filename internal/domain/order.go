package domain

import "github.com/shopspring/decimal"

const (
	PaymentCOD    = "cod"
	PaymentOnline = "online"
)

// CustomerInfo is what the shopper enters at checkout.
type CustomerInfo struct {
	Name            string `json:"customer_name"`
	Email           string `json:"customer_email"`
	Phone           string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address"`
}

// OrderItemRequest is a normalized line sent with an order, coupon fields are
// null when no override matched the line.
type OrderItemRequest struct {
	ProductID          ID               `json:"product_id"`
	ProductVariationID ID               `json:"product_variation_id"`
	Quantity           int              `json:"quantity"`
	CouponCode         *string          `json:"coupon_code"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	DiscountType       *string          `json:"discount_type"`
	DiscountedPrice    *decimal.Decimal `json:"discounted_price"`
}

// OrderRequest is the order submission payload. Identity fields are merged in
// by the client.
type OrderRequest struct {
	CustomerInfo
	ShippingCost  decimal.Decimal    `json:"shipping_cost"`
	Area          Zone               `json:"area"`
	PaymentMethod string             `json:"payment_method"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderItem is a confirmed order line.
type OrderItem struct {
	ID        ID              `json:"id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   struct {
		Name         string `json:"name"`
		FeatureImage string `json:"feature_image"`
	} `json:"product"`
}

// Order is the order detail shown on the confirmation page.
type Order struct {
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	Items         []OrderItem     `json:"items"`
}

// PlacedOrder is the submission result.
type PlacedOrder struct {
	OrderNumber string `json:"order_number"`
}
