package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type couponView struct {
	domain.Coupon
	Status checkout.CouponStatus `json:"status"`
}

type placeOrderRequest struct {
	Name            string `json:"customer_name" binding:"required"`
	Email           string `json:"customer_email"`
	Phone           string `json:"customer_phone" binding:"required"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
	Area            string `json:"area" binding:"required"`
	PaymentMethod   string `json:"payment_method"`
}

func cartID(state domain.CartState) domain.ID {
	if state.CartID == nil {
		return ""
	}
	return *state.CartID
}

func (h *handlers) checkoutSummary(c *gin.Context) {
	zone, ok := domain.ParseZone(c.DefaultQuery("zone", string(domain.ZoneInside)))
	if !ok {
		badRequest(c, "zone must be inside or outside")
		return
	}
	c.JSON(http.StatusOK, h.Orders.Summary(c.Request.Context(), zone))
}

// listCoupons lists the coupons for the current cart with their display pre-check.
func (h *handlers) listCoupons(c *gin.Context) {
	state := h.Cart.Snapshot()
	coupons, err := h.Coupons.List(c.Request.Context(), cartID(state))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	now := h.Now()
	out := make([]couponView, 0, len(coupons))
	for _, coupon := range coupons {
		out = append(out, couponView{Coupon: coupon, Status: checkout.Eligibility(coupon, state.Subtotal, now)})
	}
	c.JSON(http.StatusOK, gin.H{"coupons": out})
}

func (h *handlers) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code required")
		return
	}
	app, err := h.Coupons.Apply(c.Request.Context(), req.Code, cartID(h.Cart.Snapshot()))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *handlers) activeCoupon(c *gin.Context) {
	app := h.Coupons.Active()
	if app == nil {
		h.fail(c, domain.ErrNoCoupon, nil)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *handlers) clearCoupon(c *gin.Context) {
	if err := h.Coupons.Clear(); err != nil {
		h.fail(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "customer_name, customer_phone, shipping_address and area are required")
		return
	}
	zone, ok := domain.ParseZone(req.Area)
	if !ok {
		badRequest(c, "area must be inside or outside")
		return
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method != "" && method != domain.PaymentCOD && method != domain.PaymentOnline {
		badRequest(c, "payment_method must be cod or online")
		return
	}
	info := domain.CustomerInfo{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
	}
	placed, err := h.Orders.Submit(c.Request.Context(), info, zone, method)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.Orders.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, order)
}

// getSettings serves the loaded settings, loading them on first use.
func (h *handlers) getSettings(c *gin.Context) {
	if current := h.Settings.Current(); current != nil {
		c.JSON(http.StatusOK, current)
		return
	}
	loaded, err := h.Settings.Load(c.Request.Context())
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, loaded)
}
