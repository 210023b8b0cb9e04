package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

// AddItemInput describes an add-to-cart request.
type AddItemInput struct {
	ProductID   domain.ID
	VariationID domain.ID
	Quantity    int
}

func identityBody(identity domain.CartIdentity, fields map[string]interface{}) map[string]interface{} {
	for k, v := range identity.Fields() {
		fields[k] = v
	}
	return fields
}

// FetchCart returns the raw cart payload for identity. The payload shape varies
// between API versions, callers normalize it.
func (c *Client) FetchCart(ctx context.Context, identity domain.CartIdentity) (json.RawMessage, error) {
	query := url.Values{}
	for k, v := range identity.Params() {
		query.Set(k, v)
	}
	_, raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/cart",
		query:    query,
		fallback: "Failed to fetch cart",
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// AddToCart creates a line item. The server must confirm with success:true.
func (c *Client) AddToCart(ctx context.Context, identity domain.CartIdentity, in AddItemInput) (string, error) {
	fields := map[string]interface{}{
		"product_id": in.ProductID,
		"quantity":   in.Quantity,
	}
	if !in.VariationID.IsZero() {
		fields["variation_id"] = in.VariationID
	}
	return c.mutate(ctx, request{
		method:   http.MethodPost,
		path:     "/cart/add",
		body:     identityBody(identity, fields),
		fallback: "Failed to add to cart",
	}, true)
}

// RemoveFromCart deletes one line item.
func (c *Client) RemoveFromCart(ctx context.Context, identity domain.CartIdentity, itemID domain.ID) (string, error) {
	return c.mutate(ctx, request{
		method:   http.MethodDelete,
		path:     "/cart/cartitem/destroy",
		body:     identityBody(identity, map[string]interface{}{"item_id": itemID}),
		fallback: "Failed to remove from cart",
	}, false)
}

// UpdateQuantity sets the absolute quantity of one line item.
func (c *Client) UpdateQuantity(ctx context.Context, identity domain.CartIdentity, itemID domain.ID, quantity int) (string, error) {
	return c.mutate(ctx, request{
		method: http.MethodPut,
		path:   "/cart/update-quantity",
		body: identityBody(identity, map[string]interface{}{
			"item_id":  itemID,
			"quantity": quantity,
		}),
		fallback: "Failed to update cart quantity",
	}, false)
}
