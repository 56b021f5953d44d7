package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/export"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// AdminContactHandler serves the back-office address book
type AdminContactHandler struct {
	contacts *database.ContactRepository
	csvLimit int
	logger   *logrus.Logger
}

// NewAdminContactHandler creates a new admin contact handler
func NewAdminContactHandler(db database.DB, csvLimit int, logger *logrus.Logger) *AdminContactHandler {
	return &AdminContactHandler{
		contacts: database.NewContactRepository(db),
		csvLimit: csvLimit,
		logger:   logger,
	}
}

// List handles GET /api/admin/contacts?search=...
func (h *AdminContactHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	contacts, err := h.contacts.List(c.Query("search"), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list contacts")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, contacts)
}

// Merge handles POST /api/admin/contacts/merge
func (h *AdminContactHandler) Merge(c *gin.Context) {
	var req models.MergeContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.SurvivorID == req.DuplicateID {
		respondError(c, http.StatusBadRequest, "validation_error", "cannot merge a contact into itself")
		return
	}

	merged, err := h.contacts.Merge(req.SurvivorID, req.DuplicateID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Contact not found")
			return
		}
		h.logger.WithError(err).Error("Failed to merge contacts")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}
	respondOK(c, merged)
}

// ExportCSV handles GET /api/admin/contacts/export
func (h *AdminContactHandler) ExportCSV(c *gin.Context) {
	contacts, err := h.contacts.List(c.Query("search"), h.csvLimit+1, 0)
	if err != nil {
		h.logger.WithError(err).Error("Failed to export contacts")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	filename := fmt.Sprintf("contatti-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.ContactsCSV(c.Writer, contacts, h.csvLimit); err != nil {
		h.logger.WithError(err).Error("Failed to write contacts CSV")
	}
}
