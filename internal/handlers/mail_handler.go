package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/redefine/facility/api/internal/errors"
	"github.com/redefine/facility/api/internal/mail"
	"github.com/redefine/facility/api/internal/services"
)

// MailHandler handles mail draft composition requests.
type MailHandler struct {
	service services.MailService
}

// NewMailHandler creates a new MailHandler instance.
func NewMailHandler(service services.MailService) *MailHandler {
	return &MailHandler{
		service: service,
	}
}

// DraftResponse represents a composed mail draft. Href is a ready-to-use
// mailto: URI for the frontend's "open mail client" button.
type DraftResponse struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Href    string `json:"href"`
}

// Inquiry handles GET /api/v1/tickets/:id/mail/inquiry.
func (h *MailHandler) Inquiry(c *gin.Context) {
	h.respond(c, h.service.InquiryDraft)
}

// Offer handles GET /api/v1/tickets/:id/mail/offer.
func (h *MailHandler) Offer(c *gin.Context) {
	h.respond(c, h.service.OfferDraft)
}

func (h *MailHandler) respond(c *gin.Context, compose func(ctx context.Context, ticketID string) (*mail.Draft, error)) {
	ticketID := c.Param("id")

	draft, err := compose(c.Request.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			apierrors.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrNoVendorSelected):
			apierrors.Precondition(c, apierrors.ErrNoVendorSelected, "No vendor selected on ticket")
		default:
			apierrors.InternalServerError(c, "Failed to compose mail draft", err)
		}
		return
	}

	c.JSON(http.StatusOK, DraftResponse{
		To:      draft.To,
		Subject: draft.Subject,
		Body:    draft.Body,
		Href:    mail.MailtoHref(*draft),
	})
}
