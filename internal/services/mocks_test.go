package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/redefine/facility/api/internal/erp"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/repository"
)

// MockTicketRepository is a mock implementation of repository.TicketRepository for testing
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListAttachments(ctx context.Context, ticketID string) ([]models.Attachment, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}

func (m *MockTicketRepository) ReplaceCostTable(ctx context.Context, ticketID string, rows []models.CostRow) error {
	args := m.Called(ctx, ticketID, rows)
	return args.Error(0)
}

func (m *MockTicketRepository) SetChosenVendor(ctx context.Context, ticketID string, v repository.VendorContact) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) SetVendorPartnerID(ctx context.Context, ticketID string, partnerID int64) error {
	args := m.Called(ctx, ticketID, partnerID)
	return args.Error(0)
}

func (m *MockTicketRepository) ClearVendorPartnerID(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

func (m *MockTicketRepository) ResetVendorPartnerID(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

// MockDirectory is a mock implementation of Directory for testing
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ResolveTenancy(ctx context.Context, tenancyID int64) (*models.BuildingInfo, error) {
	args := m.Called(ctx, tenancyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildingInfo), args.Error(1)
}

func (m *MockDirectory) ResolveTenanciesForPartner(ctx context.Context, partnerID int64) ([]models.TenancySummary, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TenancySummary), args.Error(1)
}

func (m *MockDirectory) PartnerExists(ctx context.Context, partnerID int64) bool {
	args := m.Called(ctx, partnerID)
	return args.Bool(0)
}

func (m *MockDirectory) CreateOrReusePartner(ctx context.Context, params erp.CreatePartnerParams) (int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDirectory) OfferMailContext(ctx context.Context, tenancyID, tenantPartnerID int64) (*models.OfferMailContext, error) {
	args := m.Called(ctx, tenancyID, tenantPartnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OfferMailContext), args.Error(1)
}

func strptr(s string) *string   { return &s }
func i64ptr(v int64) *int64     { return &v }
func f64ptr(v float64) *float64 { return &v }
