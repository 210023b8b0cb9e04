package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"storefront/internal/commerce/commercetest"
	"storefront/internal/config"

	"github.com/stretchr/testify/require"
)

const cartBody = `{"data":{"id":12,"items":[{"id":9,"product_id":10,"product_name":"Panjabi","price":"500","quantity":2}],"total":"1000","items_count":1}}`

func runCLI(t *testing.T, fake *commercetest.Server, args ...string) (string, string, error) {
	t.Helper()
	storagePath := filepath.Join(t.TempDir(), "state.json")
	cfg := config.FromEnv()
	cfg.APIBaseURL = fake.URL
	cfg.StorageDSN = storagePath

	cmd := newCLI(cfg)
	var out, errOut bytes.Buffer
	cmd.Writer = &out
	cmd.ErrWriter = &errOut
	argv := append([]string{"cartctl", "--api", fake.URL, "--storage", storagePath, "--log-level", "error"}, args...)
	err := cmd.Run(argv)
	return out.String(), errOut.String(), err
}

func newFake(t *testing.T) *commercetest.Server {
	t.Helper()
	fake := commercetest.NewServer()
	t.Cleanup(fake.Close)
	return fake
}

func TestCartShow(t *testing.T) {
	fake := newFake(t)
	fake.Handle(commercetest.RouteCart, commercetest.JSON(cartBody))

	out, _, err := runCLI(t, fake, "cart", "show")
	require.NoError(t, err)
	require.Contains(t, out, "Panjabi")
	require.Contains(t, out, "1000.00")
}

func TestCartShowEmpty(t *testing.T) {
	fake := newFake(t)
	fake.Handle(commercetest.RouteCart, commercetest.JSON(`[]`))

	out, _, err := runCLI(t, fake, "cart", "show")
	require.NoError(t, err)
	require.Contains(t, out, "cart is empty")
}

func TestCartAddPrintsNotifications(t *testing.T) {
	fake := newFake(t)
	fake.Handle(commercetest.RouteAdd, commercetest.JSON(`{"success":true,"message":"Added"}`))
	fake.Handle(commercetest.RouteCart, commercetest.JSON(cartBody))

	out, errOut, err := runCLI(t, fake, "cart", "add", "-q", "2", "10")
	require.NoError(t, err)
	require.Contains(t, out, "Panjabi")
	require.Contains(t, errOut, "[success] Added")
	require.Equal(t, float64(2), fake.RequestsTo(commercetest.RouteAdd)[0].Body["quantity"])
}

func TestCartAddRejected(t *testing.T) {
	fake := newFake(t)
	fake.Handle(commercetest.RouteAdd, commercetest.JSON(`{"success":false,"message":"Out of stock"}`))

	_, errOut, err := runCLI(t, fake, "cart", "add", "10")
	require.Error(t, err)
	require.Contains(t, errOut, "[error] Out of stock")
	require.Zero(t, fake.Calls(commercetest.RouteCart))
}

func TestCartSetRequiresQuantity(t *testing.T) {
	fake := newFake(t)
	_, _, err := runCLI(t, fake, "cart", "set", "9")
	require.Error(t, err)
}

func TestCheckoutSummaryOutside(t *testing.T) {
	fake := newFake(t)
	fake.Handle(commercetest.RouteCart, commercetest.JSON(cartBody))
	fake.Handle(commercetest.RouteSettings, commercetest.JSON(`{"generalSettings":{"shipping_charge_inside_dhaka":60,"shipping_charge_outside_dhaka":120}}`))

	out, _, err := runCLI(t, fake, "--json", "checkout", "summary", "--zone", "outside")
	require.NoError(t, err)
	require.Contains(t, out, `"total": "1120"`)
}

func TestCheckoutPlaceRequiresCustomer(t *testing.T) {
	fake := newFake(t)
	_, _, err := runCLI(t, fake, "checkout", "place", "--phone", "017", "--address", "Dhaka")
	require.Error(t, err)
	require.Zero(t, fake.Calls(commercetest.RouteOrders))
}

func TestCheckoutPlace(t *testing.T) {
	fake := newFake(t)
	fake.Handle(commercetest.RouteCart, commercetest.JSON(cartBody))
	fake.Handle(commercetest.RouteSettings, commercetest.JSON(`{"generalSettings":{"shipping_charge_inside_dhaka":60,"shipping_charge_outside_dhaka":120}}`))
	fake.Handle(commercetest.RouteOrders, commercetest.JSON(`{"order_number":"ORD-7"}`))

	out, _, err := runCLI(t, fake, "checkout", "place", "--name", "Rahim", "--phone", "017", "--address", "Dhaka")
	require.NoError(t, err)
	require.Contains(t, out, "ORD-7")
	body := fake.RequestsTo(commercetest.RouteOrders)[0].Body
	require.Equal(t, "inside_dhaka", body["area"])
	require.Equal(t, "cod", body["payment_method"])
}

func TestOrderShowNotFound(t *testing.T) {
	fake := newFake(t)
	fake.Handle(commercetest.RouteOrder, commercetest.Status(404, `{"message":"missing"}`))

	_, _, err := runCLI(t, fake, "order", "show", "ORD-404")
	require.Error(t, err)
}
