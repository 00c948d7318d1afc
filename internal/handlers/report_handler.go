package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/redefine/facility/api/internal/errors"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/services"
)

// ReportHandler handles cost report rendering and cost table updates.
type ReportHandler struct {
	service services.ReportService
}

// NewReportHandler creates a new ReportHandler instance.
func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// CostRowRequest represents one row of a cost table overwrite.
type CostRowRequest struct {
	ID        string   `json:"id"`
	Label     string   `json:"label" binding:"required"`
	CostGroup string   `json:"kostengruppe"`
	Amount    *float64 `json:"amount"`
	Notes     string   `json:"notes"`
	RowType   string   `json:"row_type" binding:"omitempty,oneof=position subtotal extra total"`
}

// CostTableRequest represents the body of the cost table endpoint.
// The list always replaces the stored table in full.
type CostTableRequest struct {
	Rows []CostRowRequest `json:"rows" binding:"required,dive"`
}

// Render handles GET /api/v1/tickets/:id/report.pdf.
// The PDF streams inline; page count and totals travel in headers so the
// frontend can show them without parsing the document.
func (h *ReportHandler) Render(c *gin.Context) {
	ticketID := c.Param("id")

	rendered, err := h.service.RenderCostReport(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			apierrors.NotFound(c, "Ticket not found")
			return
		}
		apierrors.RenderError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", rendered.Filename))
	c.Header("X-Report-Pages", fmt.Sprintf("%d", rendered.Pages))
	c.Data(http.StatusOK, "application/pdf", rendered.PDF)
}

// ReplaceCostTable handles PUT /api/v1/tickets/:id/cost-table.
func (h *ReportHandler) ReplaceCostTable(c *gin.Context) {
	ticketID := c.Param("id")

	var req CostTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	rows := make([]models.CostRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rowType := r.RowType
		if rowType == "" {
			rowType = models.RowPosition
		}
		rows = append(rows, models.CostRow{
			ID:        r.ID,
			Label:     r.Label,
			CostGroup: r.CostGroup,
			Amount:    r.Amount,
			Notes:     r.Notes,
			RowType:   rowType,
		})
	}

	if err := h.service.ReplaceCostTable(c.Request.Context(), ticketID, rows); err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			apierrors.NotFound(c, "Ticket not found")
			return
		}
		apierrors.StoreError(c, "Failed to update cost table", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": len(rows)})
}
