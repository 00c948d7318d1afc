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
	"github.com/redefine/facility/api/internal/services"
)

// BuildingHandler handles building and tenancy lookup requests.
type BuildingHandler struct {
	service services.BuildingService
}

// NewBuildingHandler creates a new BuildingHandler instance.
func NewBuildingHandler(service services.BuildingService) *BuildingHandler {
	return &BuildingHandler{
		service: service,
	}
}

// TenanciesRequest represents the query parameters for the tenancy list endpoint.
type TenanciesRequest struct {
	PartnerID int64 `form:"partner_id" binding:"required,gt=0"`
}

// TenanciesResponse represents the tenancy selection list response.
type TenanciesResponse struct {
	Tenancies []models.TenancySummary `json:"tenancies"`
	Count     int                     `json:"count"`
}

// BuildingResponse wraps the resolved building metadata of a ticket.
type BuildingResponse struct {
	Building *models.BuildingInfo `json:"building"`
}

// GetBuilding handles GET /api/v1/tickets/:id/building.
// It resolves the ticket's tenancy to building metadata in the entity
// directory.
func (h *BuildingHandler) GetBuilding(c *gin.Context) {
	ticketID := c.Param("id")

	info, err := h.service.GetBuildingInfo(c.Request.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			apierrors.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrNoBuildingData):
			apierrors.Precondition(c, apierrors.ErrNoBuildingData, "Ticket has no tenancy reference")
		case errors.Is(err, erp.ErrNotFound):
			apierrors.NotFound(c, "Tenancy not found in entity directory")
		default:
			apierrors.Upstream(c, apierrors.ErrERP, "Entity directory request failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, BuildingResponse{Building: info})
}

// ListTenancies handles GET /api/v1/tenancies?partner_id=.
// It returns the tenancy selection list for a tenant partner; an empty
// list is a valid result.
func (h *BuildingHandler) ListTenancies(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req TenanciesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	if log != nil {
		log.Info("Processing tenancy list request", map[string]interface{}{
			"partner_id": req.PartnerID,
		})
	}

	tenancies, err := h.service.ListTenancies(c.Request.Context(), req.PartnerID)
	if err != nil {
		apierrors.Upstream(c, apierrors.ErrERP, "Entity directory request failed", err)
		return
	}
	if tenancies == nil {
		tenancies = []models.TenancySummary{}
	}

	c.JSON(http.StatusOK, TenanciesResponse{
		Tenancies: tenancies,
		Count:     len(tenancies),
	})
}
