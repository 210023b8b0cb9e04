package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

type siteInfoBody struct {
	GeneralSettings *domain.Settings `json:"generalSettings"`
}

// FetchSettings loads the storefront settings. Missing charges decode as zero.
func (c *Client) FetchSettings(ctx context.Context) (*domain.Settings, error) {
	_, raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/site-infos",
		fallback: "Failed to fetch settings",
	})
	if err != nil {
		return nil, err
	}
	var body siteInfoBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if body.GeneralSettings == nil {
		return &domain.Settings{}, nil
	}
	return body.GeneralSettings, nil
}
