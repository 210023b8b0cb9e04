package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/domain"
)

// SubmitOrder places an order for identity and returns its number.
func (c *Client) SubmitOrder(ctx context.Context, identity domain.CartIdentity, in domain.OrderRequest) (domain.PlacedOrder, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("encode order: %w", err)
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("encode order: %w", err)
	}

	status, body, err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/orders",
		body:     identityBody(identity, fields),
		fallback: "Error submitting order",
	})
	if err != nil {
		return domain.PlacedOrder{}, err
	}
	var placed domain.PlacedOrder
	if err := json.Unmarshal(body, &placed); err != nil || strings.TrimSpace(placed.OrderNumber) == "" {
		return domain.PlacedOrder{}, &APIError{Status: status, Message: messageOr(body, "Order failed")}
	}
	return placed, nil
}

// FetchOrder loads a placed order for the confirmation view.
func (c *Client) FetchOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, errors.New("order number required")
	}
	_, raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/order-data/" + url.PathEscape(orderNumber),
		fallback: "Failed to load order details.",
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}
