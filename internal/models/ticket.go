package models

import "time"

// Ticket statuses as stored in the portal database.
const (
	StatusNew        = "new"
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

// Ticket is the slice of the portal ticket record this service needs:
// the ERP references, the chosen vendor contact fields, and the stored
// cost analysis. The full ticket lifecycle (status, checklist, messaging)
// is owned by the portal frontend and not modeled here.
type Ticket struct {
	ID               string     `json:"id"`
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	TenancyID        *int64     `json:"odoo_tenancy_id"`
	AssetID          *int64     `json:"asset_id"`
	TenantPartnerID  *int64     `json:"odoo_partner_id"`
	VendorPartnerID  *int64     `json:"odoo_vendor_id"`
	ChosenVendor     *string    `json:"chosen_tgm"`
	VendorStreet     *string    `json:"tgm_street"`
	VendorZip        *string    `json:"tgm_zip"`
	VendorCity       *string    `json:"tgm_city"`
	VendorEmail      *string    `json:"tgm_mail"`
	VendorPhone      *string    `json:"tgm_phone"`
	CostEstimated    *float64   `json:"cost_estimated"`
	ExpectedEndDate  *time.Time `json:"expected_enddate"`
	CostAnalysisText *string    `json:"cost_analysis_text"`
	CostTable        []CostRow  `json:"cost_table"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Attachment is a stored file reference on a ticket. Only the metadata
// needed to build photo link lists is carried here; the bytes live in
// the portal's object storage.
type Attachment struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"`
	FilePath     string    `json:"file_path"`
	OriginalName string    `json:"original_name"`
	MimeType     *string   `json:"mime_type"`
	Privacy      *string   `json:"privacy"`
	CreatedAt    time.Time `json:"created_at"`
}
