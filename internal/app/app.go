package app

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/commerce"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/migrate"
	"storefront/internal/notify"
	"storefront/internal/repository/storage"
	"storefront/internal/service/auth"
	"storefront/internal/service/cart"
	"storefront/internal/service/checkout"
	"storefront/internal/service/identity"
	"storefront/internal/service/settings"
	"storefront/internal/tracking"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds one client installation's services.
type App struct {
	Storage  storage.Repository
	Pool     *pgxpool.Pool
	Client   *commerce.Client
	Feed     *notify.Feed
	Identity *identity.Resolver
	Auth     *auth.Service
	Cart     *cart.Store
	Settings *settings.Service
	Coupons  *checkout.Coupons
	Orders   *checkout.Orders
	Tracker  *tracking.Tracker

	logger *zap.Logger
}

// OpenStorage returns the client storage cfg points at. Postgres DSNs are
// connected and migrated; the pool is returned so callers can close it.
func OpenStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Repository, *pgxpool.Pool, error) {
	logger = logging.OrNop(logger)
	if !cfg.UsesPostgres() {
		logger.Debug("using file storage", zap.String("path", cfg.StorageDSN))
		return storage.NewFile(cfg.StorageDSN), nil, nil
	}
	pool, err := db.Connect(ctx, cfg.StorageDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect storage: %w", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate storage: %w", err)
	}
	logger.Debug("using postgres storage", zap.String("installation", cfg.Installation))
	return storage.NewPostgres(pool, cfg.Installation), pool, nil
}

// New wires the services around repo. Extra client options are appended
// after the stored-token source.
func New(cfg config.Config, repo storage.Repository, logger *zap.Logger, opts ...commerce.Option) *App {
	logger = logging.OrNop(logger)
	clientOpts := append([]commerce.Option{commerce.WithTokenSource(auth.TokenSource(repo))}, opts...)

	a := &App{
		Storage: repo,
		Client:  commerce.New(cfg.APIBaseURL, cfg.RequestTimeout, logger.Named("commerce"), clientOpts...),
		Feed:    notify.NewFeed(50, logger.Named("notify")),
		logger:  logger,
	}
	a.Tracker = tracking.New(tracking.LogSink{Logger: logger.Named("tracking")}, cfg.TrackingWindow, logger)
	a.Identity = identity.New(repo, logger.Named("identity"))
	a.Auth = auth.New(a.Client, repo, a.Feed, logger.Named("auth"))
	a.Cart = cart.New(a.Client, a.Identity, logger.Named("cart"),
		cart.WithUsers(a.Auth),
		cart.WithNotifier(a.Feed),
		cart.WithTracker(a.Tracker),
	)
	a.Auth.AttachCart(a.Cart)
	a.Settings = settings.New(a.Client, a.Feed, logger.Named("settings"))
	a.Coupons = checkout.NewCoupons(a.Client, logger.Named("coupons"), checkout.WithNotifier(a.Feed))
	a.Orders = checkout.NewOrders(a.Client, a.Cart, a.Settings, a.Coupons, logger.Named("orders"),
		checkout.WithNotifier(a.Feed),
		checkout.WithTracker(a.Tracker),
	)
	return a
}

// Start performs the first-mount loads: settings, the stored user, then the
// cart under the resulting identity. Failures are logged and reported
// through the feed; the client keeps working with whatever loaded.
func (a *App) Start(ctx context.Context) {
	if _, err := a.Settings.Load(ctx); err != nil {
		a.logger.Warn("initial settings load failed", zap.Error(err))
	}
	if _, err := a.Auth.LoadUser(ctx); err != nil && !errors.Is(err, domain.ErrUnauthorized) {
		a.logger.Warn("restore user failed", zap.Error(err))
	}
	if err := a.Cart.FetchCart(ctx); err != nil {
		a.logger.Warn("initial cart fetch failed", zap.Error(err))
	}
}

// Close releases the storage pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
