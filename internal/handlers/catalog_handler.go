package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
)

// CatalogHandler serves the public catalog reads: active rows only, in
// display order.
type CatalogHandler struct {
	products *database.ProductRepository
	events   *database.EventRepository
	menu     *database.MenuRepository
	sections *database.SectionRepository
	logger   *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db database.DB, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		products: database.NewProductRepository(db),
		events:   database.NewEventRepository(db),
		menu:     database.NewMenuRepository(db),
		sections: database.NewSectionRepository(db),
		logger:   logger,
	}
}

// Products handles GET /api/products
func (h *CatalogHandler) Products(c *gin.Context) {
	products, err := h.products.List(true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, products)
}

// Events handles GET /api/events
func (h *CatalogHandler) Events(c *gin.Context) {
	events, err := h.events.List(true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list events")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, events)
}

// Menu handles GET /api/menu
func (h *CatalogHandler) Menu(c *gin.Context) {
	dishes, err := h.menu.List(true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list menu dishes")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, dishes)
}

// Sections handles GET /api/sections
func (h *CatalogHandler) Sections(c *gin.Context) {
	sections, err := h.sections.List(true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sections")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, sections)
}
