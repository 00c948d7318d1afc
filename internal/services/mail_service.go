package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/redefine/facility/api/internal/logger"
	"github.com/redefine/facility/api/internal/mail"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/repository"
)

// MailService composes the vendor-facing mail drafts for a ticket. Drafts
// are returned to the client, never sent from here.
type MailService interface {
	// InquiryDraft builds the ask-for-an-offer mail to the ticket's
	// chosen vendor. Returns ErrNoVendorSelected when none is stored.
	InquiryDraft(ctx context.Context, ticketID string) (*mail.Draft, error)

	// OfferDraft builds the commissioning mail, including owner-entity
	// and tenant data pulled from the directory.
	OfferDraft(ctx context.Context, ticketID string) (*mail.Draft, error)
}

type mailService struct {
	repo           repository.TicketRepository
	directory      Directory
	vatRate        float64
	invoiceMailbox string
	teamName       string
	log            *logger.Logger
}

// NewMailService creates a new instance of MailService.
func NewMailService(repo repository.TicketRepository, directory Directory, vatRate float64, invoiceMailbox, teamName string, log *logger.Logger) MailService {
	return &mailService{
		repo:           repo,
		directory:      directory,
		vatRate:        vatRate,
		invoiceMailbox: invoiceMailbox,
		teamName:       teamName,
		log:            log,
	}
}

func (s *mailService) InquiryDraft(ctx context.Context, ticketID string) (*mail.Draft, error) {
	ticket, err := s.loadTicketWithVendor(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	// Building data enriches the mail but must not block it: a directory
	// outage still yields a usable draft with "-" placeholders.
	var building *models.BuildingInfo
	if ticket.TenancyID != nil {
		building, err = s.directory.ResolveTenancy(ctx, *ticket.TenancyID)
		if err != nil {
			s.log.Warn("Could not resolve building for inquiry mail", map[string]interface{}{
				"ticket_id": ticketID,
				"error":     err.Error(),
			})
			building = nil
		}
	}

	attachments, err := s.repo.ListAttachments(ctx, ticketID)
	if err != nil {
		s.log.Warn("Could not list attachments for inquiry mail", map[string]interface{}{
			"ticket_id": ticketID,
			"error":     err.Error(),
		})
	}

	draft := mail.BuildInquiry(mail.InquiryParams{
		TicketTitle:       deref(ticket.Title),
		TicketDescription: deref(ticket.Description),
		Building:          building,
		VendorEmail:       deref(ticket.VendorEmail),
		VendorName:        deref(ticket.ChosenVendor),
		PhotoLinksText:    photoLinks(attachments),
		CostRows:          ticket.CostTable,
	}, s.teamName)

	return &draft, nil
}

func (s *mailService) OfferDraft(ctx context.Context, ticketID string) (*mail.Draft, error) {
	ticket, err := s.loadTicketWithVendor(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	var mctx *models.OfferMailContext
	if ticket.TenancyID != nil && ticket.TenantPartnerID != nil {
		mctx, err = s.directory.OfferMailContext(ctx, *ticket.TenancyID, *ticket.TenantPartnerID)
		if err != nil {
			s.log.Warn("Could not resolve offer mail context", map[string]interface{}{
				"ticket_id": ticketID,
				"error":     err.Error(),
			})
		}
	}
	if mctx == nil {
		mctx = &models.OfferMailContext{}
	}

	var dueText *string
	if ticket.ExpectedEndDate != nil {
		t := ticket.ExpectedEndDate.Format("02.01.2006")
		dueText = &t
	}

	draft := mail.BuildOffer(mail.OfferParams{
		VendorEmail:   deref(ticket.VendorEmail),
		VendorName:    deref(ticket.ChosenVendor),
		Description:   deref(ticket.Title),
		OwnerName:     mctx.OwnerName,
		OwnerAddress:  mctx.OwnerAddress,
		OwnerVat:      mctx.OwnerVat,
		TenantName:    mctx.TenantName,
		TenantAddress: mctx.TenantAddr,
		TenantEmail:   mctx.TenantEmail,
		TenantPhone:   mctx.TenantPhone,
		GrossAmount:   ticket.CostEstimated,
		DueDateText:   dueText,
	}, s.vatRate, s.invoiceMailbox)

	return &draft, nil
}

func (s *mailService) loadTicketWithVendor(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.ChosenVendor == nil || strings.TrimSpace(*ticket.ChosenVendor) == "" {
		return nil, ErrNoVendorSelected
	}
	return ticket, nil
}

// photoLinks turns the ticket's non-private image attachments into the
// bullet list the inquiry mail embeds. The portal frontend resolves the
// stored paths to signed URLs before sending.
func photoLinks(attachments []models.Attachment) string {
	var lines []string
	for _, a := range attachments {
		if a.Privacy != nil && *a.Privacy == "private" {
			continue
		}
		if a.MimeType != nil && !strings.HasPrefix(*a.MimeType, "image/") {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", a.OriginalName, a.FilePath))
	}
	return strings.Join(lines, "\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
