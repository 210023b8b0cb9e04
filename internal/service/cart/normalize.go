package cart

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// cartBody is the cart object found either at the top level or under "data".
type cartBody struct {
	ID         *domain.ID      `json:"id"`
	Items      json.RawMessage `json:"items"`
	Total      json.RawMessage `json:"total"`
	ItemsCount json.RawMessage `json:"items_count"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	cartBody
}

// Normalize turns any of the cart payload shapes the API returns into the
// canonical state:
//
//	{"data": {"id", "items", "total", "items_count"}}
//	[item, ...]
//	{"items", "total", "items_count"}
//
// Anything else, including bodies that fail to decode, is the empty cart.
func Normalize(raw []byte) domain.CartState {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return domain.EmptyCart()
	}

	switch raw[0] {
	case '[':
		items, ok := decodeItems(raw)
		if !ok {
			return domain.EmptyCart()
		}
		subtotal := decimal.Zero
		for _, item := range items {
			subtotal = subtotal.Add(item.LineTotal())
		}
		return domain.CartState{Items: items, Subtotal: subtotal, ItemsCount: len(items)}
	case '{':
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return domain.EmptyCart()
		}
		if present(env.Data) {
			var body cartBody
			if err := json.Unmarshal(env.Data, &body); err != nil {
				return domain.EmptyCart()
			}
			return fromBody(body, true)
		}
		if present(env.Items) {
			return fromBody(env.cartBody, false)
		}
	}
	return domain.EmptyCart()
}

// fromBody builds state from a cart object. lenientItems mirrors the nested
// shape, where a non-array items field still yields the cart id and totals.
// An items array with no readable line is the empty cart in every shape.
func fromBody(body cartBody, lenientItems bool) domain.CartState {
	items, ok := decodeItems(body.Items)
	if !ok {
		if !lenientItems || isArray(body.Items) {
			return domain.EmptyCart()
		}
		items = []domain.CartLineItem{}
	}
	state := domain.CartState{
		Items:      items,
		Subtotal:   lenientDecimal(body.Total),
		ItemsCount: lenientInt(body.ItemsCount),
	}
	if body.ID != nil && !body.ID.IsZero() {
		id := *body.ID
		state.CartID = &id
	}
	return state
}

// lineBody accepts the loose field shapes the API produces for a line:
// numbers as strings and variation attributes as a name to value object.
type lineBody struct {
	ID                  domain.ID       `json:"id"`
	ProductID           domain.ID       `json:"product_id"`
	VariationID         domain.ID       `json:"variation_id"`
	Name                string          `json:"product_name"`
	Image               string          `json:"product_image"`
	VariationAttributes json.RawMessage `json:"variation_attributes"`
	Price               json.RawMessage `json:"price"`
	Quantity            json.RawMessage `json:"quantity"`
}

// decodeItems decodes an items array line by line. Lines that cannot be read
// are dropped; when every line is dropped ok is false so totals never outlive
// their lines.
func decodeItems(raw json.RawMessage) ([]domain.CartLineItem, bool) {
	if !isArray(raw) {
		return nil, false
	}
	var lines []json.RawMessage
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, false
	}
	items := make([]domain.CartLineItem, 0, len(lines))
	for _, line := range lines {
		if item, ok := decodeLine(line); ok {
			items = append(items, item)
		}
	}
	if len(lines) > 0 && len(items) == 0 {
		return nil, false
	}
	return items, true
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func decodeLine(raw json.RawMessage) (domain.CartLineItem, bool) {
	if !present(raw) {
		return domain.CartLineItem{}, false
	}
	var line lineBody
	if err := json.Unmarshal(raw, &line); err != nil {
		return domain.CartLineItem{}, false
	}
	price, err := strictDecimal(line.Price)
	if err != nil {
		return domain.CartLineItem{}, false
	}
	quantity, err := strictInt(line.Quantity)
	if err != nil {
		return domain.CartLineItem{}, false
	}
	return domain.CartLineItem{
		ID:                  line.ID,
		ProductID:           line.ProductID,
		VariationID:         line.VariationID,
		Name:                line.Name,
		Image:               line.Image,
		VariationAttributes: decodeAttributes(line.VariationAttributes),
		Price:               price,
		Quantity:            quantity,
	}, true
}

// decodeAttributes reads either [{"name","value"}] or {"name": "value"}.
// Object keys are sorted since JSON objects carry no order.
func decodeAttributes(raw json.RawMessage) []domain.VariationAttribute {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		var attrs []domain.VariationAttribute
		if err := json.Unmarshal(raw, &attrs); err != nil {
			return nil
		}
		return attrs
	case '{':
		var byName map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byName); err != nil {
			return nil
		}
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
		attrs := make([]domain.VariationAttribute, 0, len(names))
		for _, name := range names {
			attrs = append(attrs, domain.VariationAttribute{Name: name, Value: scalarString(byName[name])})
		}
		return attrs
	}
	return nil
}

func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", "0", `""`:
		return false
	}
	return true
}

func lenientDecimal(raw json.RawMessage) decimal.Decimal {
	s := unquote(raw)
	if s == "" || s == "null" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func unquote(raw json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

// strictDecimal parses a line price. Missing prices read as zero.
func strictDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	s := unquote(raw)
	if s == "" || s == "null" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func strictInt(raw json.RawMessage) (int, error) {
	s := unquote(raw)
	if s == "" || s == "null" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func lenientInt(raw json.RawMessage) int {
	n, err := strictInt(raw)
	if err != nil {
		return 0
	}
	return n
}
