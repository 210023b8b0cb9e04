package httpserver

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password required")
		return
	}
	user, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context()); err != nil {
		h.fail(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	user := h.Auth.Current()
	if user == nil {
		h.fail(c, domain.ErrUnauthorized, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *handlers) drainNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.Notifications.Drain()})
}
