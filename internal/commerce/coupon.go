package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

type couponListBody struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    []domain.Coupon `json:"data"`
}

type applyCouponBody struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	domain.CouponApplication
}

// ListCoupons returns the coupons offered for cartID. cartID may be empty
// before the first cart fetch.
func (c *Client) ListCoupons(ctx context.Context, cartID domain.ID) ([]domain.Coupon, error) {
	query := url.Values{}
	if !cartID.IsZero() {
		query.Set("cart_id", cartID.String())
	}
	status, raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/couponList",
		query:    query,
		fallback: "Failed to fetch coupons",
	})
	if err != nil {
		return nil, err
	}
	var body couponListBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode coupons: %w", err)
	}
	if body.Status != "success" {
		return nil, &APIError{Status: status, Message: firstNonEmpty(body.Message, "Failed to fetch coupons")}
	}
	if body.Data == nil {
		return []domain.Coupon{}, nil
	}
	return body.Data, nil
}

// ApplyCoupon asks the server to apply code to the cart and returns the computed application.
func (c *Client) ApplyCoupon(ctx context.Context, code string, cartID domain.ID) (*domain.CouponApplication, error) {
	status, raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/apply-to-cart",
		body: map[string]interface{}{
			"code":     code,
			"cart_ids": []domain.ID{cartID},
		},
		fallback: "Failed to apply coupon",
	})
	if err != nil {
		return nil, err
	}
	var body applyCouponBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &APIError{Status: status, Message: "Failed to apply coupon"}
	}
	if body.Success == nil || !*body.Success {
		return nil, &APIError{Status: status, Message: firstNonEmpty(body.Message, "Failed to apply coupon")}
	}
	app := body.CouponApplication
	return &app, nil
}
