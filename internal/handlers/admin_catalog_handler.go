package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/services"
)

// AdminCatalogHandler serves back-office CRUD for products, events, menu
// dishes, catalog sections, and the booking settings singleton.
type AdminCatalogHandler struct {
	products *database.ProductRepository
	events   *database.EventRepository
	menu     *database.MenuRepository
	sections *database.SectionRepository
	settings *services.SettingsService
	logger   *logrus.Logger
}

// NewAdminCatalogHandler creates a new admin catalog handler
func NewAdminCatalogHandler(db database.DB, settings *services.SettingsService, logger *logrus.Logger) *AdminCatalogHandler {
	return &AdminCatalogHandler{
		products: database.NewProductRepository(db),
		events:   database.NewEventRepository(db),
		menu:     database.NewMenuRepository(db),
		sections: database.NewSectionRepository(db),
		settings: settings,
		logger:   logger,
	}
}

// handleCatalogError maps repository errors to the API envelope
func (h *AdminCatalogHandler) handleCatalogError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, database.ErrSlugConflict):
		respondError(c, http.StatusConflict, "slug_conflict", "Slug is already in use")
	case errors.Is(err, database.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", what+" not found")
	default:
		h.logger.WithError(err).Error("Catalog operation failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}

func activeOrDefault(active *bool) bool {
	if active == nil {
		return true
	}
	return *active
}

// --- products ---

// ListProducts handles GET /api/admin/products
func (h *AdminCatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.products.List(false)
	if err != nil {
		h.handleCatalogError(c, err, "Product")
		return
	}
	respondOK(c, products)
}

// CreateProduct handles POST /api/admin/products
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var req models.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	product, err := h.products.Create(&models.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Active:      activeOrDefault(req.Active),
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		h.handleCatalogError(c, err, "Product")
		return
	}
	respondCreated(c, product)
}

// UpdateProduct handles PUT /api/admin/products/:id
func (h *AdminCatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	err := h.products.Update(id, &models.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Active:      activeOrDefault(req.Active),
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		h.handleCatalogError(c, err, "Product")
		return
	}

	product, err := h.products.GetByID(id)
	if err != nil {
		h.handleCatalogError(c, err, "Product")
		return
	}
	respondOK(c, product)
}

// DeleteProduct handles DELETE /api/admin/products/:id. Products are
// soft-deleted: cart snapshots keep referencing the row.
func (h *AdminCatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Deactivate(id); err != nil {
		h.handleCatalogError(c, err, "Product")
		return
	}
	respondOK(c, gin.H{"deactivated": true})
}

// --- events ---

// ListEvents handles GET /api/admin/events
func (h *AdminCatalogHandler) ListEvents(c *gin.Context) {
	events, err := h.events.List(false)
	if err != nil {
		h.handleCatalogError(c, err, "Event")
		return
	}
	respondOK(c, events)
}

func (h *AdminCatalogHandler) eventFromRequest(c *gin.Context) (*models.EventInstance, bool) {
	var req models.UpsertEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return nil, false
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "starts_at must be RFC 3339")
		return nil, false
	}

	return &models.EventInstance{
		Title:                 req.Title,
		Slug:                  req.Slug,
		StartsAt:              startsAt,
		Capacity:              req.Capacity,
		PriceCents:            req.PriceCents,
		Active:                activeOrDefault(req.Active),
		AllowEmailOnlyBooking: req.AllowEmailOnlyBooking,
	}, true
}

// CreateEvent handles POST /api/admin/events
func (h *AdminCatalogHandler) CreateEvent(c *gin.Context) {
	event, ok := h.eventFromRequest(c)
	if !ok {
		return
	}
	created, err := h.events.Create(event)
	if err != nil {
		h.handleCatalogError(c, err, "Event")
		return
	}
	respondCreated(c, created)
}

// UpdateEvent handles PUT /api/admin/events/:id
func (h *AdminCatalogHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, ok := h.eventFromRequest(c)
	if !ok {
		return
	}
	if err := h.events.Update(id, event); err != nil {
		h.handleCatalogError(c, err, "Event")
		return
	}
	updated, err := h.events.GetByID(id)
	if err != nil {
		h.handleCatalogError(c, err, "Event")
		return
	}
	respondOK(c, updated)
}

// DeleteEvent handles DELETE /api/admin/events/:id
func (h *AdminCatalogHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(id); err != nil {
		h.handleCatalogError(c, err, "Event")
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// --- menu dishes ---

// ListDishes handles GET /api/admin/menu
func (h *AdminCatalogHandler) ListDishes(c *gin.Context) {
	dishes, err := h.menu.List(false)
	if err != nil {
		h.handleCatalogError(c, err, "Dish")
		return
	}
	respondOK(c, dishes)
}

func dishFromRequest(req *models.UpsertMenuDishRequest) *models.MenuDish {
	return &models.MenuDish{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		Category:        req.Category,
		Active:          activeOrDefault(req.Active),
		OrderIndex:      req.OrderIndex,
		VisibleAtLunch:  req.VisibleAtLunch,
		VisibleAtDinner: req.VisibleAtDinner,
	}
}

// CreateDish handles POST /api/admin/menu
func (h *AdminCatalogHandler) CreateDish(c *gin.Context) {
	var req models.UpsertMenuDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	dish, err := h.menu.Create(dishFromRequest(&req))
	if err != nil {
		h.handleCatalogError(c, err, "Dish")
		return
	}
	respondCreated(c, dish)
}

// UpdateDish handles PUT /api/admin/menu/:id
func (h *AdminCatalogHandler) UpdateDish(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpsertMenuDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := h.menu.Update(id, dishFromRequest(&req)); err != nil {
		h.handleCatalogError(c, err, "Dish")
		return
	}
	dish, err := h.menu.GetByID(id)
	if err != nil {
		h.handleCatalogError(c, err, "Dish")
		return
	}
	respondOK(c, dish)
}

// DeleteDish handles DELETE /api/admin/menu/:id
func (h *AdminCatalogHandler) DeleteDish(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.menu.Delete(id); err != nil {
		h.handleCatalogError(c, err, "Dish")
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// --- catalog sections ---

// ListSections handles GET /api/admin/sections
func (h *AdminCatalogHandler) ListSections(c *gin.Context) {
	sections, err := h.sections.List(false)
	if err != nil {
		h.handleCatalogError(c, err, "Section")
		return
	}
	respondOK(c, sections)
}

func sectionFromRequest(req *models.UpsertSectionRequest) *models.CatalogSection {
	return &models.CatalogSection{
		Key:            req.Key,
		Title:          req.Title,
		Description:    req.Description,
		EnableDateTime: req.EnableDateTime,
		Active:         activeOrDefault(req.Active),
		DisplayOrder:   req.DisplayOrder,
	}
}

// CreateSection handles POST /api/admin/sections
func (h *AdminCatalogHandler) CreateSection(c *gin.Context) {
	var req models.UpsertSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	section, err := h.sections.Create(sectionFromRequest(&req))
	if err != nil {
		h.handleCatalogError(c, err, "Section")
		return
	}
	respondCreated(c, section)
}

// UpdateSection handles PUT /api/admin/sections/:id
func (h *AdminCatalogHandler) UpdateSection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpsertSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := h.sections.Update(id, sectionFromRequest(&req)); err != nil {
		h.handleCatalogError(c, err, "Section")
		return
	}
	section, err := h.sections.GetByID(id)
	if err != nil {
		h.handleCatalogError(c, err, "Section")
		return
	}
	respondOK(c, section)
}

// DeleteSection handles DELETE /api/admin/sections/:id
func (h *AdminCatalogHandler) DeleteSection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.sections.Delete(id); err != nil {
		h.handleCatalogError(c, err, "Section")
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// --- booking settings ---

// GetSettings handles GET /api/admin/settings
func (h *AdminCatalogHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load settings")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, settings)
}

// UpdateSettings handles PUT /api/admin/settings
func (h *AdminCatalogHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateBookingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	settings, err := h.settings.Update(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save settings")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, settings)
}
