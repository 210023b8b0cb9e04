package domain

import "github.com/shopspring/decimal"

// VariationAttribute is one ordered attribute/value pair of a product variation.
type VariationAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CartLineItem is one product or product variation in the cart. Price is the
// server-delivered unit price.
type CartLineItem struct {
	ID                  ID                   `json:"id"`
	ProductID           ID                   `json:"product_id"`
	VariationID         ID                   `json:"variation_id,omitempty"`
	Name                string               `json:"product_name"`
	Image               string               `json:"product_image"`
	VariationAttributes []VariationAttribute `json:"variation_attributes,omitempty"`
	Price               decimal.Decimal      `json:"price"`
	Quantity            int                  `json:"quantity"`
}

// LineTotal returns price times quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartState is the client view of the cart. Items is never nil.
type CartState struct {
	CartID     *ID             `json:"cart_id"`
	Items      []CartLineItem  `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	ItemsCount int             `json:"items_count"`
	Loading    bool            `json:"loading"`
	Error      *string         `json:"error"`
}

// EmptyCart returns the canonical empty state.
func EmptyCart() CartState {
	return CartState{Items: []CartLineItem{}, Subtotal: decimal.Zero}
}

// Usable reports whether the cart holds items and no error.
func (s CartState) Usable() bool {
	return len(s.Items) > 0 && s.Error == nil
}

// Clone deep-copies the state so callers can't alias the owner's slices.
func (s CartState) Clone() CartState {
	out := s
	if s.CartID != nil {
		id := *s.CartID
		out.CartID = &id
	}
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	out.Items = make([]CartLineItem, len(s.Items))
	for i, item := range s.Items {
		if item.VariationAttributes != nil {
			item.VariationAttributes = append([]VariationAttribute(nil), item.VariationAttributes...)
		}
		out.Items[i] = item
	}
	return out
}

// Item looks up a line item by id.
func (s CartState) Item(id ID) (CartLineItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartLineItem{}, false
}
