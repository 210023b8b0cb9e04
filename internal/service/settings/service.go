package settings

import (
	"context"
	"sync"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/notify"

	"go.uber.org/zap"
)

type settingsAPI interface {
	FetchSettings(ctx context.Context) (*domain.Settings, error)
}

// Service holds the last successfully loaded settings.
type Service struct {
	api      settingsAPI
	notifier notify.Notifier
	logger   *zap.Logger

	mu      sync.RWMutex
	current *domain.Settings
}

func New(api settingsAPI, notifier notify.Notifier, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{api: api, notifier: notifier, logger: logging.OrNop(logger)}
}

// Load fetches the settings. A failed load keeps whatever was loaded before.
func (s *Service) Load(ctx context.Context) (*domain.Settings, error) {
	loaded, err := s.api.FetchSettings(ctx)
	if err != nil {
		s.logger.Warn("load settings failed", zap.Error(err))
		s.notifier.Error(commerce.UserMessage(err, "Failed to fetch settings"))
		return nil, err
	}
	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	s.logger.Debug("settings loaded",
		zap.String("shipping_inside", loaded.ShippingInside.String()),
		zap.String("shipping_outside", loaded.ShippingOutside.String()))
	return s.Current(), nil
}

// Current returns a copy of the loaded settings, nil before the first load.
func (s *Service) Current() *domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}
