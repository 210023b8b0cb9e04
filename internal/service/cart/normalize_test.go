package cart

import (
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

const twoItems = `[
	{"id": 1, "product_id": 10, "product_name": "Air Max", "product_image": "a.jpg", "price": "500.00", "quantity": 1,
	 "variation_attributes": [{"name": "Size", "value": "42"}, {"name": "Color", "value": "Red"}]},
	{"id": 2, "product_id": 11, "variation_id": 3, "product_name": "Socks", "product_image": "s.jpg", "price": 250, "quantity": 2}
]`

func assertSameState(t *testing.T, want, got domain.CartState) {
	t.Helper()
	if (want.CartID == nil) != (got.CartID == nil) || (want.CartID != nil && *want.CartID != *got.CartID) {
		t.Fatalf("cart id mismatch: %v vs %v", want.CartID, got.CartID)
	}
	if !want.Subtotal.Equal(got.Subtotal) || want.ItemsCount != got.ItemsCount {
		t.Fatalf("totals mismatch: %s/%d vs %s/%d", want.Subtotal, want.ItemsCount, got.Subtotal, got.ItemsCount)
	}
	if len(want.Items) != len(got.Items) {
		t.Fatalf("item count mismatch: %d vs %d", len(want.Items), len(got.Items))
	}
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		if w.ID != g.ID || w.ProductID != g.ProductID || w.VariationID != g.VariationID || w.Name != g.Name ||
			w.Image != g.Image || w.Quantity != g.Quantity || !w.Price.Equal(g.Price) ||
			len(w.VariationAttributes) != len(g.VariationAttributes) {
			t.Fatalf("item %d mismatch: %+v vs %+v", i, w, g)
		}
		for j := range w.VariationAttributes {
			if w.VariationAttributes[j] != g.VariationAttributes[j] {
				t.Fatalf("attribute %d/%d mismatch", i, j)
			}
		}
	}
	if want.Error != nil || got.Error != nil {
		t.Fatalf("normalized states must not carry errors")
	}
}

func TestNormalizeShapesAgree(t *testing.T) {
	nested := Normalize([]byte(`{"data": {"items": ` + twoItems + `, "total": 1000, "items_count": 2}}`))
	bare := Normalize([]byte(twoItems))
	flat := Normalize([]byte(`{"items": ` + twoItems + `, "total": "1000.00", "items_count": 2}`))

	assertSameState(t, nested, bare)
	assertSameState(t, nested, flat)

	if !nested.Subtotal.Equal(decimal.NewFromInt(1000)) || nested.ItemsCount != 2 {
		t.Fatalf("unexpected totals %s/%d", nested.Subtotal, nested.ItemsCount)
	}
	if nested.Items[0].VariationAttributes[1].Name != "Color" {
		t.Fatalf("variation attributes must keep their order: %+v", nested.Items[0].VariationAttributes)
	}
	if nested.Items[1].VariationID != "3" {
		t.Fatalf("expected variation id 3, got %q", nested.Items[1].VariationID)
	}
}

func TestNormalizeKeepsServerSubtotal(t *testing.T) {
	state := Normalize([]byte(`{"data": {"id": 77, "items": ` + twoItems + `, "total": 900, "items_count": 3}}`))
	if state.CartID == nil || *state.CartID != "77" {
		t.Fatalf("expected cart id 77, got %v", state.CartID)
	}
	if !state.Subtotal.Equal(decimal.NewFromInt(900)) || state.ItemsCount != 3 {
		t.Fatalf("server-declared totals must win, got %s/%d", state.Subtotal, state.ItemsCount)
	}
}

func TestNormalizeUnknownShapesAreEmpty(t *testing.T) {
	cases := map[string]string{
		"empty body":          ``,
		"null":                `null`,
		"string":              `"cart"`,
		"unrelated object":    `{"message": "ok"}`,
		"broken json":         `{"items": [`,
		"items not an array":  `{"items": {"1": {}}}`,
		"bad item":            `[{"id": 1, "price": "free"}]`,
		"data is an array":    `{"data": []}`,
		"nested bad item":     `{"data": {"items": [{"quantity": "many"}]}}`,
		"data null, no items": `{"data": null}`,
	}
	for name, raw := range cases {
		state := Normalize([]byte(raw))
		if state.Items == nil || len(state.Items) != 0 || !state.Subtotal.IsZero() || state.ItemsCount != 0 || state.CartID != nil {
			t.Fatalf("%s: expected empty cart, got %+v", name, state)
		}
	}
}

func TestNormalizeNestedWithoutItems(t *testing.T) {
	state := Normalize([]byte(`{"data": {"id": 5, "items": null, "total": 0}}`))
	if state.Items == nil || len(state.Items) != 0 {
		t.Fatalf("expected concrete empty items, got %#v", state.Items)
	}
	if state.CartID == nil || *state.CartID != "5" {
		t.Fatalf("expected cart id kept, got %v", state.CartID)
	}
}

func TestNormalizeEmptyArray(t *testing.T) {
	state := Normalize([]byte(`[]`))
	if state.Items == nil || len(state.Items) != 0 || !state.Subtotal.IsZero() {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestNormalizeDropsOnlyUnreadableLines(t *testing.T) {
	raw := `{"data": {"id": 7, "items": [
		{"id": 1, "product_id": 10, "product_name": "Panjabi", "price": "300.00", "quantity": "2",
		 "variation_attributes": {"Size": "M", "Color": "Blue"}},
		{"id": 2, "product_id": 11, "product_name": "Cap", "price": "free", "quantity": 1},
		null
	], "total": "600.00", "items_count": 2}}`

	state := Normalize([]byte(raw))
	if len(state.Items) != 1 {
		t.Fatalf("expected the readable line only, got %+v", state.Items)
	}
	line := state.Items[0]
	if line.Quantity != 2 || !line.Price.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected quantity 2 at 300, got %d at %s", line.Quantity, line.Price)
	}
	if len(line.VariationAttributes) != 2 || line.VariationAttributes[0] != (domain.VariationAttribute{Name: "Color", Value: "Blue"}) {
		t.Fatalf("expected attributes read from the object form, got %+v", line.VariationAttributes)
	}
	if state.CartID == nil || *state.CartID != "7" || !state.Subtotal.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected cart 7 with subtotal 600, got %v/%s", state.CartID, state.Subtotal)
	}
}

func TestNormalizeNoReadableLinesIsEmpty(t *testing.T) {
	raw := `{"data": {"id": 7, "items": [{"id": 2, "price": "300", "quantity": "many"}], "total": "600.00", "items_count": 1}}`

	state := Normalize([]byte(raw))
	if len(state.Items) != 0 || !state.Subtotal.IsZero() || state.ItemsCount != 0 || state.CartID != nil {
		t.Fatalf("expected empty cart, got %+v", state)
	}
}

func TestNormalizeBareArraySubtotalFollowsKeptLines(t *testing.T) {
	state := Normalize([]byte(`[{"id": 1, "price": 100, "quantity": 3}, {"id": 2, "price": {}, "quantity": 1}]`))
	if len(state.Items) != 1 || state.ItemsCount != 1 || !state.Subtotal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected state %+v", state)
	}
}
