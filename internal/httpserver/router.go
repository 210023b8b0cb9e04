package httpserver

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/service/checkout"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type cartService interface {
	Snapshot() domain.CartState
	FetchCart(ctx context.Context) error
	AddToCart(ctx context.Context, productID domain.ID, quantity int, variationID domain.ID) error
	RemoveFromCart(ctx context.Context, itemID domain.ID) error
	UpdateCartQuantity(ctx context.Context, itemID domain.ID, quantity int) error
	StepQuantity(ctx context.Context, itemID domain.ID, delta int) error
}

type couponService interface {
	List(ctx context.Context, cartID domain.ID) ([]domain.Coupon, error)
	Apply(ctx context.Context, code string, cartID domain.ID) (*domain.CouponApplication, error)
	Active() *domain.CouponApplication
	Clear() error
}

type orderService interface {
	Summary(ctx context.Context, zone domain.Zone) checkout.Summary
	Submit(ctx context.Context, info domain.CustomerInfo, zone domain.Zone, paymentMethod string) (domain.PlacedOrder, error)
	Get(ctx context.Context, orderNumber string) (*domain.Order, error)
}

type settingsService interface {
	Load(ctx context.Context) (*domain.Settings, error)
	Current() *domain.Settings
}

type authService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	Current() *domain.User
}

type notificationFeed interface {
	Drain() []notify.Notification
}

// Deps holds the services the routes call.
type Deps struct {
	Cart          cartService
	Coupons       couponService
	Orders        orderService
	Settings      settingsService
	Auth          authService
	Notifications notificationFeed
	Now           func() time.Time
}

func (d Deps) validate() error {
	switch {
	case d.Cart == nil:
		return errors.New("cart service required")
	case d.Coupons == nil:
		return errors.New("coupon service required")
	case d.Orders == nil:
		return errors.New("order service required")
	case d.Settings == nil:
		return errors.New("settings service required")
	case d.Auth == nil:
		return errors.New("auth service required")
	case d.Notifications == nil:
		return errors.New("notification feed required")
	}
	return nil
}

type handlers struct {
	Deps
	logger *zap.Logger
}

// buildRouter wires routes for the storefront surface.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, allowedOrigins []string) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handlers{Deps: deps, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")

	cartGroup := api.Group("/cart")
	cartGroup.GET("", h.getCart)
	cartGroup.POST("/items", h.addItem)
	cartGroup.PUT("/items/:id", h.updateItem)
	cartGroup.DELETE("/items/:id", h.removeItem)
	cartGroup.POST("/items/:id/step", h.stepItem)

	api.GET("/checkout/summary", h.checkoutSummary)

	api.GET("/coupons", h.listCoupons)
	api.POST("/coupons/apply", h.applyCoupon)
	api.GET("/coupons/active", h.activeCoupon)
	api.DELETE("/coupons/active", h.clearCoupon)

	api.POST("/orders", h.placeOrder)
	api.GET("/orders/:number", h.getOrder)

	api.GET("/settings", h.getSettings)

	api.POST("/auth/login", h.login)
	api.POST("/auth/logout", h.logout)
	api.GET("/auth/me", h.me)

	api.GET("/notifications", h.drainNotifications)

	return router, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
