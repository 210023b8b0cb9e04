package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain"
)

type loginBody struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
	Message     string       `json:"message"`
}

// Login exchanges credentials for an access token. The user is returned when
// the server includes it.
func (c *Client) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	status, raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body: map[string]string{
			"email":    email,
			"password": password,
		},
		fallback: "Login failed",
	})
	if err != nil {
		return "", nil, err
	}
	var body loginBody
	if err := json.Unmarshal(raw, &body); err != nil || strings.TrimSpace(body.AccessToken) == "" {
		return "", nil, &APIError{Status: status, Message: firstNonEmpty(body.Message, "Login failed")}
	}
	return body.AccessToken, body.User, nil
}

// Me loads the user the token belongs to. A rejected token yields domain.ErrUnauthorized.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	_, raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/auth/me",
		token:    token,
		fallback: "Failed to fetch user data",
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}
