package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/redefine/facility/api/internal/erp"
	"github.com/redefine/facility/api/internal/logger"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/repository"
	"github.com/redefine/facility/api/internal/vendors"
)

// zipCityPattern splits the "zip city" tail of a single-line German
// address, e.g. "Kantstraße 149, 10623 Berlin".
var zipCityPattern = regexp.MustCompile(`(\d{4,5})\s+(.+)`)

// VendorService covers vendor discovery and the directory lifecycle of a
// chosen vendor on a ticket.
type VendorService interface {
	// Recommended returns directory vendors tagged with the ticket's
	// property internal label. Returns ErrNoBuildingData when the ticket
	// has no tenancy, ErrNoInternalLabel when the resolved property
	// carries no internal label.
	Recommended(ctx context.Context, ticketID string) ([]models.Vendor, error)

	// SearchExternal runs a free-text search against the public places
	// index. An empty result set is a valid outcome.
	SearchExternal(ctx context.Context, prompt string) ([]models.ExternalVendor, error)

	// SaveExternalChoice stores an external candidate's contact data on
	// the ticket and severs any prior directory link.
	SaveExternalChoice(ctx context.Context, ticketID string, v models.ExternalVendor) (*models.Ticket, error)

	// ImportChosenVendor materializes the ticket's chosen vendor in the
	// directory. Returns the partner id and whether an existing, still
	// valid link was reused.
	ImportChosenVendor(ctx context.Context, ticketID string) (int64, bool, error)

	// ResetVendorLink marks the ticket's directory link as deliberately
	// severed by an operator.
	ResetVendorLink(ctx context.Context, ticketID string) error
}

type vendorService struct {
	repo      repository.TicketRepository
	directory Directory
	matcher   *vendors.Matcher
	log       *logger.Logger
}

// NewVendorService creates a new instance of VendorService.
func NewVendorService(repo repository.TicketRepository, directory Directory, matcher *vendors.Matcher, log *logger.Logger) VendorService {
	return &vendorService{
		repo:      repo,
		directory: directory,
		matcher:   matcher,
		log:       log,
	}
}

func (s *vendorService) Recommended(ctx context.Context, ticketID string) ([]models.Vendor, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.TenancyID == nil {
		return nil, ErrNoBuildingData
	}

	info, err := s.directory.ResolveTenancy(ctx, *ticket.TenancyID)
	if err != nil {
		return nil, err
	}
	if info.InternalLabel == nil || strings.TrimSpace(*info.InternalLabel) == "" {
		s.log.Warn("Property has no internal label, cannot match vendors", map[string]interface{}{
			"ticket_id":  ticketID,
			"tenancy_id": *ticket.TenancyID,
		})
		return nil, ErrNoInternalLabel
	}

	return s.matcher.MatchInternal(ctx, *info.InternalLabel)
}

func (s *vendorService) SearchExternal(ctx context.Context, prompt string) ([]models.ExternalVendor, error) {
	return s.matcher.MatchExternal(ctx, prompt)
}

func (s *vendorService) SaveExternalChoice(ctx context.Context, ticketID string, v models.ExternalVendor) (*models.Ticket, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	contact := repository.VendorContact{
		Name:  v.Name,
		Email: v.Email,
		Phone: v.Phone,
	}
	if v.Address != nil {
		street, zip, city := parseGermanAddress(*v.Address)
		contact.Street = street
		contact.Zip = zip
		contact.City = city
	}

	updated, err := s.repo.SetChosenVendor(ctx, ticketID, contact)
	if err != nil {
		s.log.Error("Failed to store chosen vendor", err, map[string]interface{}{
			"ticket_id": ticketID,
		})
		return nil, fmt.Errorf("failed to store chosen vendor: %w", err)
	}

	s.log.Info("Stored external vendor choice", map[string]interface{}{
		"ticket_id": ticketID,
		"vendor":    v.Name,
	})
	return updated, nil
}

func (s *vendorService) ImportChosenVendor(ctx context.Context, ticketID string) (int64, bool, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return 0, false, ErrTicketNotFound
	}
	if ticket.ChosenVendor == nil || strings.TrimSpace(*ticket.ChosenVendor) == "" {
		return 0, false, ErrNoVendorSelected
	}

	// An existing link is only trusted after probing the directory: the
	// partner may have been deleted there since the import.
	if ticket.VendorPartnerID != nil && *ticket.VendorPartnerID > 0 {
		if s.directory.PartnerExists(ctx, *ticket.VendorPartnerID) {
			s.log.Info("Vendor already linked to directory partner", map[string]interface{}{
				"ticket_id":  ticketID,
				"partner_id": *ticket.VendorPartnerID,
			})
			return *ticket.VendorPartnerID, true, nil
		}
		s.log.Warn("Linked partner no longer exists, recreating", map[string]interface{}{
			"ticket_id":  ticketID,
			"partner_id": *ticket.VendorPartnerID,
		})
		if err := s.repo.ClearVendorPartnerID(ctx, ticketID); err != nil {
			s.log.Error("Failed to clear phantom partner link", err, map[string]interface{}{
				"ticket_id": ticketID,
			})
		}
	}

	partnerID, err := s.directory.CreateOrReusePartner(ctx, erp.CreatePartnerParams{
		Name:    *ticket.ChosenVendor,
		Street:  ticket.VendorStreet,
		Zip:     ticket.VendorZip,
		City:    ticket.VendorCity,
		Email:   ticket.VendorEmail,
		Phone:   ticket.VendorPhone,
		AssetID: ticket.AssetID,
	})
	if err != nil {
		return 0, false, err
	}

	// The partner exists in the directory at this point; a failed link
	// write must not roll that back, so it is logged and the id returned.
	if err := s.repo.SetVendorPartnerID(ctx, ticketID, partnerID); err != nil {
		s.log.Error("Failed to persist partner link", err, map[string]interface{}{
			"ticket_id":  ticketID,
			"partner_id": partnerID,
		})
	}

	s.log.Info("Imported vendor into directory", map[string]interface{}{
		"ticket_id":  ticketID,
		"partner_id": partnerID,
	})
	return partnerID, false, nil
}

func (s *vendorService) ResetVendorLink(ctx context.Context, ticketID string) error {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return ErrTicketNotFound
	}
	if err := s.repo.ResetVendorPartnerID(ctx, ticketID); err != nil {
		return fmt.Errorf("failed to reset vendor link: %w", err)
	}
	s.log.Info("Reset vendor directory link", map[string]interface{}{
		"ticket_id": ticketID,
	})
	return nil
}

// parseGermanAddress splits a single-line address of the form
// "street no, zip city" into its parts. Unparseable tails land in street
// so no information is dropped.
func parseGermanAddress(addr string) (street, zip, city *string) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil, nil
	}

	idx := strings.LastIndex(addr, ",")
	if idx < 0 {
		return strPtr(addr), nil, nil
	}

	head := strings.TrimSpace(addr[:idx])
	tail := strings.TrimSpace(addr[idx+1:])

	if m := zipCityPattern.FindStringSubmatch(tail); m != nil {
		return strPtr(head), strPtr(m[1]), strPtr(m[2])
	}
	// The tail may be a bare country suffix ("Berlin, Deutschland");
	// retry on the head before giving up.
	if m := zipCityPattern.FindStringSubmatch(head); m != nil {
		pos := strings.Index(head, m[0])
		street := strings.TrimRight(strings.TrimSpace(head[:pos]), ",")
		return strPtr(street), strPtr(m[1]), strPtr(m[2])
	}
	return strPtr(addr), nil, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
