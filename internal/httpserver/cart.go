package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID   domain.ID `json:"product_id"`
	VariationID domain.ID `json:"variation_id"`
	Quantity    int       `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type stepItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func itemID(c *gin.Context) (domain.ID, bool) {
	id := domain.ID(strings.TrimSpace(c.Param("id")))
	if id.IsZero() {
		badRequest(c, "invalid item id")
		return "", false
	}
	return id, true
}

// getCart returns the cart snapshot; ?refresh=1 refetches it first.
func (h *handlers) getCart(c *gin.Context) {
	if refresh := c.Query("refresh"); refresh == "1" || refresh == "true" {
		if err := h.Cart.FetchCart(c.Request.Context()); err != nil {
			h.fail(c, err, gin.H{"cart": h.Cart.Snapshot()})
			return
		}
	}
	c.JSON(http.StatusOK, h.Cart.Snapshot())
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ProductID.IsZero() {
		badRequest(c, "product_id required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	h.mutated(c, h.Cart.AddToCart(c.Request.Context(), req.ProductID, req.Quantity, req.VariationID))
}

func (h *handlers) updateItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity required")
		return
	}
	h.mutated(c, h.Cart.UpdateCartQuantity(c.Request.Context(), id, req.Quantity))
}

func (h *handlers) stepItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req stepItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "delta required")
		return
	}
	h.mutated(c, h.Cart.StepQuantity(c.Request.Context(), id, req.Delta))
}

func (h *handlers) removeItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	h.mutated(c, h.Cart.RemoveFromCart(c.Request.Context(), id))
}

// mutated answers a cart mutation with the state after its refetch.
func (h *handlers) mutated(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err, gin.H{"cart": h.Cart.Snapshot()})
		return
	}
	c.JSON(http.StatusOK, h.Cart.Snapshot())
}
