package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/services"
)

// CartHandler serves the public cart endpoints
type CartHandler struct {
	carts  *services.CartService
	logger *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *services.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// Create handles POST /api/cart
func (h *CartHandler) Create(c *gin.Context) {
	cart, err := h.carts.GetOrCreate("")
	if err != nil {
		h.logger.WithError(err).Error("Failed to create cart")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	h.respondCart(c, cart, true)
}

// Get handles GET /api/cart/:token
func (h *CartHandler) Get(c *gin.Context) {
	cart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	h.respondCart(c, cart, false)
}

// AddItem handles POST /api/cart/:token/items
func (h *CartHandler) AddItem(c *gin.Context) {
	cart, ok := h.resolveCart(c)
	if !ok {
		return
	}

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.carts.AddItem(cart, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, services.ErrProductUnavailable) {
			respondError(c, http.StatusBadRequest, "validation_error", "Product is not available")
			return
		}
		h.logger.WithError(err).Error("Failed to add cart item")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	h.respondCart(c, cart, false)
}

// UpdateItem handles PATCH /api/cart/:token/items/:itemID
func (h *CartHandler) UpdateItem(c *gin.Context) {
	cart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	itemID, ok := h.parseItemID(c)
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.carts.UpdateItem(cart, itemID, req.Quantity); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Cart item not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update cart item")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	h.respondCart(c, cart, false)
}

// DeleteItem handles DELETE /api/cart/:token/items/:itemID
func (h *CartHandler) DeleteItem(c *gin.Context) {
	cart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	itemID, ok := h.parseItemID(c)
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(cart, itemID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Cart item not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete cart item")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	h.respondCart(c, cart, false)
}

func (h *CartHandler) resolveCart(c *gin.Context) (*models.Cart, bool) {
	cart, err := h.carts.Get(c.Param("token"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Cart not found")
			return nil, false
		}
		h.logger.WithError(err).Error("Failed to fetch cart")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return nil, false
	}
	return cart, true
}

func (h *CartHandler) parseItemID(c *gin.Context) (int64, bool) {
	itemID, err := strconv.ParseInt(c.Param("itemID"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid item id")
		return 0, false
	}
	return itemID, true
}

func (h *CartHandler) respondCart(c *gin.Context, cart *models.Cart, created bool) {
	resp, err := h.carts.Response(cart)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build cart response")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	if created {
		respondCreated(c, resp)
		return
	}
	respondOK(c, resp)
}
