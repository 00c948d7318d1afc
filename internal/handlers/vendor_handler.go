package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redefine/facility/api/internal/erp"
	apierrors "github.com/redefine/facility/api/internal/errors"
	"github.com/redefine/facility/api/internal/middleware"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/places"
	"github.com/redefine/facility/api/internal/services"
	"github.com/redefine/facility/api/internal/vendors"
)

// VendorHandler handles vendor discovery and selection requests.
type VendorHandler struct {
	service services.VendorService
}

// NewVendorHandler creates a new VendorHandler instance.
func NewVendorHandler(service services.VendorService) *VendorHandler {
	return &VendorHandler{
		service: service,
	}
}

// SearchRequest represents the body of the external search endpoint.
type SearchRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// VendorListResponse represents the internal vendor recommendation response.
type VendorListResponse struct {
	Vendors []models.Vendor `json:"vendors"`
	Count   int             `json:"count"`
}

// ExternalVendorListResponse represents the external search response.
type ExternalVendorListResponse struct {
	Vendors []models.ExternalVendor `json:"vendors"`
	Count   int                     `json:"count"`
}

// ChooseVendorRequest represents the body of the choose-vendor endpoint.
// It mirrors an external search result.
type ChooseVendorRequest struct {
	Name        string   `json:"name" binding:"required"`
	Address     *string  `json:"address"`
	Phone       *string  `json:"phone"`
	Website     *string  `json:"website"`
	Email       *string  `json:"email"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int     `json:"reviewCount"`
}

// ImportResponse represents the vendor import response.
type ImportResponse struct {
	PartnerID       int64 `json:"partner_id"`
	AlreadyImported bool  `json:"already_imported"`
}

// Recommended handles GET /api/v1/tickets/:id/vendors/recommended.
// It returns directory vendors tagged with the ticket's property label.
func (h *VendorHandler) Recommended(c *gin.Context) {
	ticketID := c.Param("id")

	list, err := h.service.Recommended(c.Request.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			apierrors.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrNoBuildingData):
			apierrors.Precondition(c, apierrors.ErrNoBuildingData, "Ticket has no tenancy reference")
		case errors.Is(err, services.ErrNoInternalLabel):
			apierrors.Precondition(c, apierrors.ErrNoInternalLabel, "Property has no internal label")
		case errors.Is(err, erp.ErrNotFound):
			apierrors.NotFound(c, "Tenancy not found in entity directory")
		default:
			apierrors.Upstream(c, apierrors.ErrERP, "Entity directory request failed", err)
		}
		return
	}
	if list == nil {
		list = []models.Vendor{}
	}

	c.JSON(http.StatusOK, VendorListResponse{Vendors: list, Count: len(list)})
}

// Search handles POST /api/v1/vendors/search.
// A provider ZERO_RESULTS answer is a valid empty list, not an error.
func (h *VendorHandler) Search(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if log != nil {
		log.Info("Processing external vendor search", map[string]interface{}{
			"prompt_len": len(req.Prompt),
		})
	}

	list, err := h.service.SearchExternal(c.Request.Context(), req.Prompt)
	if err != nil {
		var statusErr *places.StatusError
		switch {
		case errors.Is(err, vendors.ErrEmptyPrompt):
			apierrors.Precondition(c, apierrors.ErrEmptyPrompt, "Search prompt is empty")
		case errors.Is(err, places.ErrMissingAPIKey):
			apierrors.Precondition(c, apierrors.ErrNoPlacesKey, "Places search is not configured")
		case errors.As(err, &statusErr):
			apierrors.Upstream(c, apierrors.ErrExternalSearch, "Places search failed: "+statusErr.Status, err)
		default:
			apierrors.Upstream(c, apierrors.ErrExternalSearch, "Places search failed", err)
		}
		return
	}
	if list == nil {
		list = []models.ExternalVendor{}
	}

	c.JSON(http.StatusOK, ExternalVendorListResponse{Vendors: list, Count: len(list)})
}

// Choose handles PUT /api/v1/tickets/:id/vendor.
// It stores an external candidate's contact data on the ticket.
func (h *VendorHandler) Choose(c *gin.Context) {
	ticketID := c.Param("id")

	var req ChooseVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	ticket, err := h.service.SaveExternalChoice(c.Request.Context(), ticketID, models.ExternalVendor{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Website:     req.Website,
		Email:       req.Email,
		Rating:      req.Rating,
		ReviewCount: req.ReviewCount,
	})
	if err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			apierrors.NotFound(c, "Ticket not found")
			return
		}
		apierrors.StoreError(c, "Failed to store vendor choice", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// Import handles POST /api/v1/tickets/:id/vendor/import.
// It materializes the chosen vendor as a directory partner.
func (h *VendorHandler) Import(c *gin.Context) {
	ticketID := c.Param("id")

	partnerID, alreadyImported, err := h.service.ImportChosenVendor(c.Request.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			apierrors.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrNoVendorSelected):
			apierrors.Precondition(c, apierrors.ErrNoVendorSelected, "No vendor selected on ticket")
		default:
			apierrors.Upstream(c, apierrors.ErrERP, "Entity directory request failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		PartnerID:       partnerID,
		AlreadyImported: alreadyImported,
	})
}

// Reset handles POST /api/v1/tickets/:id/vendor/reset.
// It severs the ticket's directory partner link.
func (h *VendorHandler) Reset(c *gin.Context) {
	ticketID := c.Param("id")

	if err := h.service.ResetVendorLink(c.Request.Context(), ticketID); err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			apierrors.NotFound(c, "Ticket not found")
			return
		}
		apierrors.StoreError(c, "Failed to reset vendor link", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
