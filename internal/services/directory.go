package services

import (
	"context"

	"github.com/redefine/facility/api/internal/erp"
	"github.com/redefine/facility/api/internal/models"
)

// Directory is the entity-directory surface the services consume. The
// concrete implementation is the XML-RPC client in internal/erp; tests
// substitute a mock.
type Directory interface {
	ResolveTenancy(ctx context.Context, tenancyID int64) (*models.BuildingInfo, error)
	ResolveTenanciesForPartner(ctx context.Context, partnerID int64) ([]models.TenancySummary, error)
	PartnerExists(ctx context.Context, partnerID int64) bool
	CreateOrReusePartner(ctx context.Context, params erp.CreatePartnerParams) (int64, error)
	OfferMailContext(ctx context.Context, tenancyID, tenantPartnerID int64) (*models.OfferMailContext, error)
}
