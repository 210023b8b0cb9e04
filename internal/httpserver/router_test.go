package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/app"
	"storefront/internal/commerce/commercetest"
	"storefront/internal/config"
	"storefront/internal/repository/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cartBody = `{"data": {"id": 9, "items": [
	{"id": 1, "product_id": 10, "product_name": "Tee", "price": "500", "quantity": 1},
	{"id": 2, "product_id": 11, "product_name": "Cap", "price": "500", "quantity": 1}
], "total": 1000, "items_count": 2}}`

type testEnv struct {
	router *gin.Engine
	fake   *commercetest.Server
	app    *app.App
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	fake := commercetest.NewServer()
	t.Cleanup(fake.Close)
	fake.Handle(commercetest.RouteCart, commercetest.JSON(cartBody))
	fake.Handle(commercetest.RouteSettings, commercetest.JSON(`{"generalSettings": {"shipping_charge_inside_dhaka": 60, "shipping_charge_outside_dhaka": 120}}`))

	cfg := config.Config{APIBaseURL: fake.URL, RequestTimeout: 2 * time.Second, TrackingWindow: 2 * time.Second}
	a := app.New(cfg, storage.NewMemory(), nil)
	router, err := buildRouter(zap.NewNop(), nil, depsFor(a), nil)
	require.NoError(t, err)
	return &testEnv{router: router, fake: fake, app: a}
}

func depsFor(a *app.App) Deps {
	return Deps{
		Cart:          a.Cart,
		Coupons:       a.Coupons,
		Orders:        a.Orders,
		Settings:      a.Settings,
		Auth:          a.Auth,
		Notifications: a.Feed,
		Now:           func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndReady(t *testing.T) {
	env := setupServer(t)
	w := doJSON(t, env.router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, env.router, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "file", decode(t, w)["storage"])
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestReadyReportsUnreachableStorage(t *testing.T) {
	env := setupServer(t)
	router, err := buildRouter(zap.NewNop(), failingPinger{}, depsFor(env.app), nil)
	require.NoError(t, err)
	w := doJSON(t, router, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	_, err := buildRouter(zap.NewNop(), nil, Deps{}, nil)
	require.Error(t, err)
}

func TestCartFlow(t *testing.T) {
	env := setupServer(t)
	env.fake.Handle(commercetest.RouteAdd, commercetest.JSON(`{"success": true, "message": "Added"}`))
	env.fake.Handle(commercetest.RouteUpdate, commercetest.JSON(`{"success": true}`))
	env.fake.Handle(commercetest.RouteRemove, commercetest.JSON(`{"success": true}`))

	w := doJSON(t, env.router, http.MethodGet, "/api/cart?refresh=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Len(t, body["items"], 2)
	require.Equal(t, false, body["loading"])

	w = doJSON(t, env.router, http.MethodPost, "/api/cart/items", map[string]any{"product_id": 10, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	add := env.fake.RequestsTo(commercetest.RouteAdd)
	require.Len(t, add, 1)
	require.Equal(t, float64(2), add[0].Body["quantity"])
	require.NotEmpty(t, add[0].Body["session_id"])

	w = doJSON(t, env.router, http.MethodPut, "/api/cart/items/1", map[string]any{"quantity": 4})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(4), env.fake.RequestsTo(commercetest.RouteUpdate)[0].Body["quantity"])

	w = doJSON(t, env.router, http.MethodPost, "/api/cart/items/1/step", map[string]any{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(2), env.fake.RequestsTo(commercetest.RouteUpdate)[1].Body["quantity"])

	w = doJSON(t, env.router, http.MethodDelete, "/api/cart/items/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(2), env.fake.RequestsTo(commercetest.RouteRemove)[0].Body["item_id"])

	w = doJSON(t, env.router, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["notifications"], 4)
}

func TestCartValidation(t *testing.T) {
	env := setupServer(t)

	w := doJSON(t, env.router, http.MethodPost, "/api/cart/items", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router, http.MethodPut, "/api/cart/items/1", map[string]any{"quantity": -2})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/api/cart/items/99/step", map[string]any{"delta": 1})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 0, env.fake.Calls(commercetest.RouteUpdate))
}

func TestCartMutationRejected(t *testing.T) {
	env := setupServer(t)
	env.fake.Handle(commercetest.RouteAdd, commercetest.JSON(`{"success": false, "message": "Out of stock"}`))

	w := doJSON(t, env.router, http.MethodPost, "/api/cart/items", map[string]any{"product_id": "10"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	require.Equal(t, "Out of stock", body["error"])
	require.NotNil(t, body["cart"])
}

func TestCheckoutSummaryAndCoupon(t *testing.T) {
	env := setupServer(t)
	env.fake.Handle(commercetest.RouteCoupons, commercetest.JSON(`{"status": "success", "data": [
		{"id": 1, "code": "SAVE", "discount_type": "fixed", "discount_value": 150, "minimum_order_amount": 500, "expiry_date": "2030-01-01", "uses_count": 0, "max_uses": 10},
		{"id": 2, "code": "BIG", "discount_type": "fixed", "discount_value": 500, "minimum_order_amount": 5000, "uses_count": 0, "max_uses": 0}
	]}`))
	env.fake.Handle(commercetest.RouteApplyCoupon, commercetest.JSON(`{"success": true, "applied": [
		{"coupon_code": "SAVE", "summary": {"total_discount": 150}, "items": [{"cart_item_id": 1, "coupon_code": "SAVE", "discount_amount": 100, "discount_type": "fixed", "discounted_price": 400}]}
	]}`))
	ctx := context.Background()
	require.NoError(t, env.app.Cart.FetchCart(ctx))
	_, err := env.app.Settings.Load(ctx)
	require.NoError(t, err)

	w := doJSON(t, env.router, http.MethodGet, "/api/checkout/summary?zone=inside", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1060", decode(t, w)["total"])

	w = doJSON(t, env.router, http.MethodGet, "/api/coupons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	coupons := decode(t, w)["coupons"].([]any)
	require.Len(t, coupons, 2)
	require.Equal(t, true, coupons[0].(map[string]any)["status"].(map[string]any)["applicable"])
	require.Equal(t, false, coupons[1].(map[string]any)["status"].(map[string]any)["applicable"])
	require.Equal(t, "9", env.fake.RequestsTo(commercetest.RouteCoupons)[0].Query["cart_id"])

	w = doJSON(t, env.router, http.MethodPost, "/api/coupons/apply", map[string]any{"code": "SAVE"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []any{float64(9)}, env.fake.RequestsTo(commercetest.RouteApplyCoupon)[0].Body["cart_ids"])

	w = doJSON(t, env.router, http.MethodGet, "/api/checkout/summary?zone=inside", nil)
	summary := decode(t, w)
	require.Equal(t, "910", summary["total"])
	lines := summary["lines"].([]any)
	require.Equal(t, "400", lines[0].(map[string]any)["display_price"])
	require.Equal(t, "500", lines[1].(map[string]any)["display_price"])

	w = doJSON(t, env.router, http.MethodGet, "/api/checkout/summary?zone=mars", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router, http.MethodDelete, "/api/coupons/active", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, env.router, http.MethodDelete, "/api/coupons/active", nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestPlaceOrder(t *testing.T) {
	env := setupServer(t)
	env.fake.Handle(commercetest.RouteOrders, commercetest.JSON(`{"order_number": "ORD-77"}`))
	env.fake.Handle(commercetest.RouteOrder, commercetest.JSON(`{"order_number": "ORD-77", "total": "1060", "status": "pending", "items": []}`))
	ctx := context.Background()
	require.NoError(t, env.app.Cart.FetchCart(ctx))
	_, _ = env.app.Settings.Load(ctx)

	w := doJSON(t, env.router, http.MethodPost, "/api/orders", map[string]any{"customer_name": "Rahim"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/api/orders", map[string]any{
		"customer_name":    "Rahim",
		"customer_phone":   "01700000000",
		"shipping_address": "Dhaka",
		"area":             "outside",
		"payment_method":   "cod",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "ORD-77", decode(t, w)["order_number"])

	sent := env.fake.RequestsTo(commercetest.RouteOrders)[0].Body
	require.Equal(t, "outside_dhaka", sent["area"])
	require.Equal(t, "120", sent["shipping_cost"])
	require.Len(t, sent["items"], 2)

	w = doJSON(t, env.router, http.MethodGet, "/api/orders/ORD-77", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOrderNotFound(t *testing.T) {
	env := setupServer(t)
	env.fake.Handle(commercetest.RouteOrder, commercetest.Status(http.StatusNotFound, `{"message": "Order not found"}`))
	w := doJSON(t, env.router, http.MethodGet, "/api/orders/NOPE", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthFlow(t *testing.T) {
	env := setupServer(t)
	env.fake.Handle(commercetest.RouteLogin, commercetest.JSON(`{"access_token": "tok-9", "user": {"id": 5, "name": "Rahim", "email": "r@example.com"}}`))

	w := doJSON(t, env.router, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/api/auth/login", map[string]any{"email": "r@example.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/api/auth/login", map[string]any{"email": "r@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)

	carts := env.fake.RequestsTo(commercetest.RouteCart)
	last := carts[len(carts)-1]
	require.Equal(t, map[string]string{"user_id": "5"}, last.Query)
	require.Equal(t, "tok-9", last.Bearer)

	w = doJSON(t, env.router, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	carts = env.fake.RequestsTo(commercetest.RouteCart)
	_, hasSession := carts[len(carts)-1].Query["session_id"]
	require.True(t, hasSession)
}

func TestSettingsLoadedOnDemand(t *testing.T) {
	env := setupServer(t)
	w := doJSON(t, env.router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "60", decode(t, w)["shipping_charge_inside_dhaka"])

	doJSON(t, env.router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, 1, env.fake.Calls(commercetest.RouteSettings))
}

func TestBlankInputIsBadRequest(t *testing.T) {
	env := setupServer(t)
	require.NoError(t, env.app.Cart.FetchCart(context.Background()))

	w := doJSON(t, env.router, http.MethodPost, "/api/orders", map[string]any{
		"customer_name":    "   ",
		"customer_phone":   "01700000000",
		"shipping_address": "Dhaka",
		"area":             "inside",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decode(t, w)["error"], "customer name required")
	require.Equal(t, 0, env.fake.Calls(commercetest.RouteOrders))

	w = doJSON(t, env.router, http.MethodPost, "/api/coupons/apply", map[string]any{"code": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 0, env.fake.Calls(commercetest.RouteApplyCoupon))
}
