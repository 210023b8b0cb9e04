package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/service/checkout"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var timeNow = time.Now

type runner struct {
	cfg    config.Config
	app    *app.App
	logger *zap.Logger
}

func (r *runner) setup(c *cli.Context) error {
	r.cfg.APIBaseURL = strings.TrimRight(c.String("api"), "/")
	r.cfg.StorageDSN = c.String("storage")

	logger, err := logging.New(c.String("log-level"))
	if err != nil {
		return err
	}
	r.logger = logger

	repo, pool, err := app.OpenStorage(c.Context, r.cfg, logger)
	if err != nil {
		return err
	}
	r.app = app.New(r.cfg, repo, logger)
	r.app.Pool = pool
	if _, err := r.app.Auth.LoadUser(c.Context); err != nil && !errors.Is(err, domain.ErrUnauthorized) {
		logger.Warn("restore user failed", zap.Error(err))
	}
	return nil
}

func (r *runner) teardown(c *cli.Context) error {
	if r.app == nil {
		return nil
	}
	for _, n := range r.app.Feed.Drain() {
		fmt.Fprintf(c.App.ErrWriter, "[%s] %s\n", n.Level, n.Message)
	}
	r.app.Close()
	_ = r.logger.Sync()
	return nil
}

func (r *runner) cart(c *cli.Context) (domain.CartState, error) {
	if err := r.app.Cart.FetchCart(c.Context); err != nil {
		return domain.CartState{}, err
	}
	return r.app.Cart.Snapshot(), nil
}

func (r *runner) cartShow(c *cli.Context) error {
	state, err := r.cart(c)
	if err != nil {
		return err
	}
	return r.printCart(c, state)
}

func (r *runner) cartAdd(c *cli.Context) error {
	productID := domain.ID(c.Args().First())
	if productID.IsZero() {
		return errors.New("PRODUCT_ID required")
	}
	if err := r.app.Cart.AddToCart(c.Context, productID, c.Int("quantity"), domain.ID(c.String("variation"))); err != nil {
		return err
	}
	return r.printCart(c, r.app.Cart.Snapshot())
}

func (r *runner) cartRemove(c *cli.Context) error {
	itemID := domain.ID(c.Args().First())
	if itemID.IsZero() {
		return errors.New("ITEM_ID required")
	}
	if err := r.app.Cart.RemoveFromCart(c.Context, itemID); err != nil {
		return err
	}
	return r.printCart(c, r.app.Cart.Snapshot())
}

func (r *runner) cartSet(c *cli.Context) error {
	itemID := domain.ID(c.Args().Get(0))
	quantity, err := strconv.Atoi(c.Args().Get(1))
	if itemID.IsZero() || err != nil {
		return errors.New("usage: cart set ITEM_ID QUANTITY")
	}
	if err := r.app.Cart.UpdateCartQuantity(c.Context, itemID, quantity); err != nil {
		return err
	}
	return r.printCart(c, r.app.Cart.Snapshot())
}

func (r *runner) cartStep(delta int) cli.ActionFunc {
	return func(c *cli.Context) error {
		itemID := domain.ID(c.Args().First())
		if itemID.IsZero() {
			return errors.New("ITEM_ID required")
		}
		if _, err := r.cart(c); err != nil {
			return err
		}
		if err := r.app.Cart.StepQuantity(c.Context, itemID, delta); err != nil {
			return err
		}
		return r.printCart(c, r.app.Cart.Snapshot())
	}
}

func (r *runner) couponsList(c *cli.Context) error {
	state, err := r.cart(c)
	if err != nil {
		return err
	}
	coupons, err := r.app.Coupons.List(c.Context, cartIDOf(state))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, coupons)
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tDISCOUNT\tMIN ORDER\tSTATUS")
	for _, coupon := range coupons {
		st := checkout.Eligibility(coupon, state.Subtotal, timeNow())
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n", coupon.Code, coupon.Name, coupon.DiscountValue, coupon.DiscountType,
			coupon.MinimumOrderAmount.StringFixed(2), couponLabel(st))
	}
	return w.Flush()
}

func (r *runner) couponsApply(c *cli.Context) error {
	code := c.Args().First()
	if err := r.applyCoupon(c, code); err != nil {
		return err
	}
	return r.printSummary(c, domain.ZoneInside)
}

func (r *runner) applyCoupon(c *cli.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("coupon code required")
	}
	state := r.app.Cart.Snapshot()
	if state.CartID == nil {
		var err error
		if state, err = r.cart(c); err != nil {
			return err
		}
	}
	_, err := r.app.Coupons.Apply(c.Context, code, cartIDOf(state))
	return err
}

func (r *runner) prepareCheckout(c *cli.Context) (domain.Zone, error) {
	zone, ok := domain.ParseZone(c.String("zone"))
	if !ok {
		return "", fmt.Errorf("unknown zone %q", c.String("zone"))
	}
	if _, err := r.cart(c); err != nil {
		return "", err
	}
	if _, err := r.app.Settings.Load(c.Context); err != nil {
		r.logger.Warn("settings unavailable, shipping shown as zero", zap.Error(err))
	}
	if code := c.String("coupon"); code != "" {
		if err := r.applyCoupon(c, code); err != nil {
			return "", err
		}
	}
	return zone, nil
}

func (r *runner) checkoutSummary(c *cli.Context) error {
	zone, err := r.prepareCheckout(c)
	if err != nil {
		return err
	}
	return r.printSummary(c, zone)
}

func (r *runner) checkoutPlace(c *cli.Context) error {
	zone, err := r.prepareCheckout(c)
	if err != nil {
		return err
	}
	placed, err := r.app.Orders.Submit(c.Context, domain.CustomerInfo{
		Name:            c.String("name"),
		Email:           c.String("email"),
		Phone:           c.String("phone"),
		ShippingAddress: c.String("address"),
	}, zone, strings.ToLower(c.String("payment")))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, placed)
	}
	fmt.Fprintf(c.App.Writer, "order placed: %s\n", placed.OrderNumber)
	return nil
}

func (r *runner) orderShow(c *cli.Context) error {
	order, err := r.app.Orders.Get(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, order)
	}
	fmt.Fprintf(c.App.Writer, "order %s (%s) for %s, total %s\n", order.OrderNumber, order.Status, order.CustomerName, order.Total.StringFixed(2))
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQTY\tUNIT\tSUBTOTAL")
	for _, item := range order.Items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", item.Product.Name, item.Quantity, item.UnitPrice.StringFixed(2), item.Subtotal.StringFixed(2))
	}
	return w.Flush()
}

func (r *runner) printCart(c *cli.Context, state domain.CartState) error {
	if c.Bool("json") {
		return printJSON(c.App.Writer, state)
	}
	if len(state.Items) == 0 {
		fmt.Fprintln(c.App.Writer, "cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPRODUCT\tVARIANT\tQTY\tPRICE\tLINE")
	for _, item := range state.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", item.ID, item.Name, attributes(item.VariationAttributes),
			item.Quantity, item.Price.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t\t%d items\tsubtotal\t%s\n", state.ItemsCount, state.Subtotal.StringFixed(2))
	return w.Flush()
}

func (r *runner) printSummary(c *cli.Context, zone domain.Zone) error {
	sum := r.app.Orders.Summary(c.Context, zone)
	if c.Bool("json") {
		return printJSON(c.App.Writer, sum)
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, line := range sum.Lines {
		marker := ""
		if line.Discounted {
			marker = fmt.Sprintf("(was %s)", line.Price.StringFixed(2))
		}
		fmt.Fprintf(w, "%s x%d\t%s\t%s\n", line.Name, line.Quantity, line.DisplayPrice.StringFixed(2), marker)
	}
	fmt.Fprintf(w, "subtotal\t%s\t\n", sum.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "shipping (%s)\t%s\t\n", zone, sum.ShippingCost.StringFixed(2))
	if sum.CouponCode != "" || !sum.TotalDiscount.IsZero() {
		fmt.Fprintf(w, "discount %s\t-%s\t\n", sum.CouponCode, sum.TotalDiscount.StringFixed(2))
	}
	fmt.Fprintf(w, "total\t%s\t\n", sum.Total.StringFixed(2))
	return w.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cartIDOf(state domain.CartState) domain.ID {
	if state.CartID == nil {
		return ""
	}
	return *state.CartID
}

func attributes(attrs []domain.VariationAttribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.Name+": "+a.Value)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func couponLabel(st checkout.CouponStatus) string {
	switch {
	case st.Expired:
		return "expired"
	case st.MaxUsed:
		return "max uses reached"
	case !st.Valid:
		return "below minimum"
	default:
		return "applicable"
	}
}
