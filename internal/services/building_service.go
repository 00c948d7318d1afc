package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redefine/facility/api/internal/logger"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/repository"
)

// Service-level errors shared across the portal services.
var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrNoBuildingData   = errors.New("ticket has no tenancy reference")
	ErrNoInternalLabel  = errors.New("building has no internal label")
	ErrNoVendorSelected = errors.New("no vendor selected on ticket")
)

// BuildingService resolves tickets to their building metadata through the
// entity directory.
type BuildingService interface {
	// GetBuildingInfo resolves the ticket's tenancy to building metadata.
	// Returns ErrTicketNotFound when the ticket does not exist,
	// ErrNoBuildingData when it carries no tenancy reference, and
	// erp.ErrNotFound when the tenancy id is unknown to the directory.
	GetBuildingInfo(ctx context.Context, ticketID string) (*models.BuildingInfo, error)

	// ListTenancies returns the tenancy selection list for a tenant partner.
	// Returns an empty list (not an error) when the partner has none.
	ListTenancies(ctx context.Context, partnerID int64) ([]models.TenancySummary, error)
}

type buildingService struct {
	repo      repository.TicketRepository
	directory Directory
	log       *logger.Logger
}

// NewBuildingService creates a new instance of BuildingService.
func NewBuildingService(repo repository.TicketRepository, directory Directory, log *logger.Logger) BuildingService {
	return &buildingService{
		repo:      repo,
		directory: directory,
		log:       log,
	}
}

func (s *buildingService) GetBuildingInfo(ctx context.Context, ticketID string) (*models.BuildingInfo, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		s.log.Error("Failed to load ticket", err, map[string]interface{}{
			"ticket_id": ticketID,
		})
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.TenancyID == nil {
		s.log.Warn("Ticket has no tenancy reference", map[string]interface{}{
			"ticket_id": ticketID,
		})
		return nil, ErrNoBuildingData
	}

	s.log.Info("Resolving building info", map[string]interface{}{
		"ticket_id":  ticketID,
		"tenancy_id": *ticket.TenancyID,
	})

	info, err := s.directory.ResolveTenancy(ctx, *ticket.TenancyID)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *buildingService) ListTenancies(ctx context.Context, partnerID int64) ([]models.TenancySummary, error) {
	s.log.Info("Listing tenancies for partner", map[string]interface{}{
		"partner_id": partnerID,
	})

	tenancies, err := s.directory.ResolveTenanciesForPartner(ctx, partnerID)
	if err != nil {
		s.log.Error("Failed to list tenancies", err, map[string]interface{}{
			"partner_id": partnerID,
		})
		return nil, err
	}
	return tenancies, nil
}
