package models

// BuildingInfo is the resolved tenancy → property chain from the entity
// directory. A tenancy without a property link is valid: ObjektLabel is
// empty and all property fields are nil.
type BuildingInfo struct {
	TenancyID        int64   `json:"tenancy_id"`
	TenancyName      string  `json:"tenancy_name"`
	ObjektLabel      string  `json:"objekt_label"`
	PropertyID       *int64  `json:"property_id"`
	Reference        *string `json:"property_reference"`
	InternalLabel    *string `json:"property_internal_label"`
	Street           *string `json:"property_street"`
	Zip              *string `json:"property_zip"`
	City             *string `json:"property_city"`
	ConstructionYear *int64  `json:"construction_year"`
	LastModernized   *int64  `json:"last_modernization"`
}

// TenancySummary is one entry of a tenancy selection list for a tenant
// partner, enriched with the linked property's address and company.
type TenancySummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	AssetID     *int64 `json:"asset_id"`
	Street      string `json:"property_street"`
	Zip         string `json:"property_zip"`
	City        string `json:"property_city"`
	Company     string `json:"property_company"`
}

// Vendor is a business partner already present in the entity directory,
// discovered via its category tags.
type Vendor struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	Street string   `json:"street"`
	Zip    string   `json:"zip"`
	City   string   `json:"city"`
	Tags   []string `json:"tags"`
}

// ExternalVendor is a candidate found via the public places search;
// it is not yet a directory record. Promoting it to one is the import
// operation on the ticket.
type ExternalVendor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     *string  `json:"address"`
	Phone       *string  `json:"phone"`
	Website     *string  `json:"website"`
	Email       *string  `json:"email"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int     `json:"reviewCount"`
	SourceURL   *string  `json:"sourceUrl"`
	Source      string   `json:"source"`
}

// OfferMailContext carries the owner-entity and tenant fields the offer
// mail template interpolates.
type OfferMailContext struct {
	OwnerName    *string `json:"owner_name"`
	OwnerAddress *string `json:"owner_address"`
	OwnerVat     *string `json:"owner_vat"`
	TenantName   *string `json:"tenant_name"`
	TenantAddr   *string `json:"tenant_address"`
	TenantEmail  *string `json:"tenant_email"`
	TenantPhone  *string `json:"tenant_phone"`
}
