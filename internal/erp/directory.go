package erp

import (
	"context"
	"strconv"
	"strings"

	"github.com/redefine/facility/api/internal/models"
)

// ResolveTenancy resolves a rental agreement to its building metadata by
// chaining tenancy → property. A tenancy without a property link is not an
// error: the returned BuildingInfo has an empty ObjektLabel and nil property
// fields. A missing tenancy id yields ErrNotFound.
func (c *Client) ResolveTenancy(ctx context.Context, tenancyID int64) (*models.BuildingInfo, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	domain := []interface{}{[]interface{}{"id", "=", tenancyID}}
	tenancies, err := c.searchRead(ctx, uid, tenancyModel, domain,
		[]string{"id", "name", "main_property_id"}, 1)
	if err != nil {
		return nil, err
	}
	if len(tenancies) == 0 {
		return nil, ErrNotFound
	}

	tenancy := tenancies[0]
	info := &models.BuildingInfo{
		TenancyID:   asInt64(tenancy["id"]),
		TenancyName: asString(tenancy["name"]),
	}

	prop := relationOf(tenancy["main_property_id"])
	if !prop.Set {
		c.log.Warn("Tenancy has no linked property", map[string]interface{}{
			"tenancy_id": tenancyID,
		})
		return info, nil
	}

	var reply interface{}
	fields := map[string]interface{}{"fields": []string{
		"id", "name", "reference_id", "internal_label",
		"street", "zip", "city", "construction_year", "last_modernization",
	}}
	if err := c.executeKw(ctx, uid, propertyModel, "read",
		[]interface{}{[]interface{}{prop.ID}}, fields, &reply); err != nil {
		return nil, err
	}

	props := records(reply)
	if len(props) == 0 {
		c.log.Warn("Property referenced by tenancy does not exist", map[string]interface{}{
			"tenancy_id":  tenancyID,
			"property_id": prop.ID,
		})
		return info, nil
	}

	p := props[0]

	ref := asString(p["reference_id"])
	if ref == "" {
		ref = asString(p["name"])
	}
	if ref == "" {
		ref = strconv.FormatInt(prop.ID, 10)
	}

	street := asString(p["street"])
	zip := asString(p["zip"])
	city := asString(p["city"])
	address := joinNonEmpty(" ", street, zip, city)

	info.PropertyID = &prop.ID
	info.ObjektLabel = joinNonEmpty(" – ", ref, address)
	info.Reference = strPtr(ref)
	info.InternalLabel = strPtr(asString(p["internal_label"]))
	info.Street = strPtr(street)
	info.Zip = strPtr(zip)
	info.City = strPtr(city)
	info.ConstructionYear = asInt64Ptr(p["construction_year"])
	info.LastModernized = asInt64Ptr(p["last_modernization"])

	return info, nil
}

// ResolveTenanciesForPartner lists the rental agreements of a tenant partner,
// enriched with each linked property's address and company. A partner with no
// tenancies yields an empty list, not an error.
func (c *Client) ResolveTenanciesForPartner(ctx context.Context, partnerID int64) ([]models.TenancySummary, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	domain := []interface{}{[]interface{}{"partner_id", "=", partnerID}}
	tenancies, err := c.searchRead(ctx, uid, tenancyModel, domain,
		[]string{"id", "name", "display_name", "main_property_id"}, 50)
	if err != nil {
		return nil, err
	}
	if len(tenancies) == 0 {
		return []models.TenancySummary{}, nil
	}

	summaries := make([]models.TenancySummary, 0, len(tenancies))
	propIDs := make([]interface{}, 0, len(tenancies))
	seen := make(map[int64]bool)

	for _, t := range tenancies {
		s := models.TenancySummary{
			ID:          asInt64(t["id"]),
			Name:        asString(t["name"]),
			DisplayName: asString(t["display_name"]),
		}
		if rel := relationOf(t["main_property_id"]); rel.Set {
			id := rel.ID
			s.AssetID = &id
			if !seen[id] {
				seen[id] = true
				propIDs = append(propIDs, id)
			}
		}
		summaries = append(summaries, s)
	}

	if len(propIDs) == 0 {
		return summaries, nil
	}

	propDomain := []interface{}{[]interface{}{"id", "in", propIDs}}
	props, err := c.searchRead(ctx, uid, propertyModel, propDomain,
		[]string{"id", "street", "zip", "city", "company_id"}, len(propIDs))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]map[string]interface{}, len(props))
	for _, p := range props {
		byID[asInt64(p["id"])] = p
	}

	for i := range summaries {
		if summaries[i].AssetID == nil {
			continue
		}
		p, ok := byID[*summaries[i].AssetID]
		if !ok {
			continue
		}
		summaries[i].Street = asString(p["street"])
		summaries[i].Zip = asString(p["zip"])
		summaries[i].City = asString(p["city"])
		summaries[i].Company = relationOf(p["company_id"]).Label
	}

	return summaries, nil
}

// FindVendorsByPropertyLabel returns partners tagged with both the
// Maintenance category and a tag matching the property's internal label
// (case-insensitive substring match, performed by the directory's ilike).
// An empty or whitespace label is a caller precondition failure and yields
// an empty list without a remote call.
func (c *Client) FindVendorsByPropertyLabel(ctx context.Context, label string) ([]models.Vendor, error) {
	if strings.TrimSpace(label) == "" {
		c.log.Warn("Vendor lookup without internal label", nil)
		return []models.Vendor{}, nil
	}

	uid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	domain := []interface{}{
		[]interface{}{"category_id.name", "ilike", MaintenanceTag},
		[]interface{}{"category_id.name", "ilike", label},
	}
	partners, err := c.searchRead(ctx, uid, partnerModel, domain,
		[]string{"id", "name", "email", "phone", "street", "zip", "city", "category_id"}, 20)
	if err != nil {
		return nil, err
	}

	vendors := make([]models.Vendor, 0, len(partners))
	tagIDs := make([]interface{}, 0)
	seen := make(map[int64]bool)

	for _, p := range partners {
		v := models.Vendor{
			ID:     asInt64(p["id"]),
			Name:   asString(p["name"]),
			Email:  asString(p["email"]),
			Phone:  asString(p["phone"]),
			Street: asString(p["street"]),
			Zip:    asString(p["zip"]),
			City:   asString(p["city"]),
		}
		vendors = append(vendors, v)

		if ids, ok := p["category_id"].([]interface{}); ok {
			for _, raw := range ids {
				id := asInt64(raw)
				if id != 0 && !seen[id] {
					seen[id] = true
					tagIDs = append(tagIDs, id)
				}
			}
		}
	}

	if len(tagIDs) == 0 {
		return vendors, nil
	}

	// Resolve tag names in one bulk read so the response carries labels,
	// not opaque ids.
	tagDomain := []interface{}{[]interface{}{"id", "in", tagIDs}}
	tags, err := c.searchRead(ctx, uid, categoryModel, tagDomain, []string{"id", "name"}, len(tagIDs))
	if err != nil {
		return nil, err
	}
	tagName := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagName[asInt64(t["id"])] = asString(t["name"])
	}

	for i, p := range partners {
		ids, ok := p["category_id"].([]interface{})
		if !ok {
			continue
		}
		for _, raw := range ids {
			if name := tagName[asInt64(raw)]; name != "" {
				vendors[i].Tags = append(vendors[i].Tags, name)
			}
		}
	}

	return vendors, nil
}

// PartnerExists probes whether a partner id still exists in the directory.
// A transport or auth failure means the id is not confirmed; the caller
// falls back to recreating the partner instead of hard-failing, so this
// never returns an error.
func (c *Client) PartnerExists(ctx context.Context, partnerID int64) bool {
	uid, err := c.authenticate(ctx)
	if err != nil {
		c.log.Warn("Partner existence probe could not authenticate", map[string]interface{}{
			"partner_id": partnerID,
			"error":      err.Error(),
		})
		return false
	}

	domain := []interface{}{[]interface{}{"id", "=", partnerID}}
	var reply interface{}
	if err := c.executeKw(ctx, uid, partnerModel, "search_count",
		[]interface{}{domain}, nil, &reply); err != nil {
		c.log.Warn("Partner existence probe failed", map[string]interface{}{
			"partner_id": partnerID,
			"error":      err.Error(),
		})
		return false
	}

	return asInt64(reply) > 0
}

// CreatePartnerParams describes a service provider to materialize in the
// directory. AssetID, when set, scopes the partner to that property via its
// internal label tag.
type CreatePartnerParams struct {
	Name    string
	Street  *string
	Zip     *string
	City    *string
	Email   *string
	Phone   *string
	AssetID *int64
}

// CreateOrReusePartner creates a partner record tagged Maintenance plus the
// target property's internal label. Tag resolution is idempotent: existing
// tags are looked up by exact name and only the missing ones are created,
// strictly sequentially. The partner itself is created with the full tag set
// in a single write. Partner identity is NOT deduplicated: calling this
// twice creates two partner records with the same shared tags.
func (c *Client) CreateOrReusePartner(ctx context.Context, params CreatePartnerParams) (int64, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return 0, err
	}

	tagNames := []string{MaintenanceTag}
	if params.AssetID != nil {
		if label := c.lookupInternalLabel(ctx, uid, *params.AssetID); label != "" {
			tagNames = append(tagNames, label)
		}
	}

	tagIDs, err := c.resolveTags(ctx, uid, tagNames)
	if err != nil {
		// No partner is created when tag resolution fails; a half-tagged
		// partner must never silently appear.
		return 0, err
	}

	data := map[string]interface{}{"name": params.Name}
	setIf(data, "street", params.Street)
	setIf(data, "zip", params.Zip)
	setIf(data, "city", params.City)
	setIf(data, "email", params.Email)
	setIf(data, "phone", params.Phone)
	if len(tagIDs) > 0 {
		data["category_id"] = []interface{}{[]interface{}{6, 0, tagIDs}}
	}

	var reply interface{}
	if err := c.executeKw(ctx, uid, partnerModel, "create",
		[]interface{}{data}, nil, &reply); err != nil {
		return 0, err
	}

	partnerID := asInt64(reply)
	c.log.Info("Created directory partner", map[string]interface{}{
		"partner_id": partnerID,
		"name":       params.Name,
		"tags":       tagNames,
	})
	return partnerID, nil
}

// lookupInternalLabel fetches a property's internal label. Failure degrades
// to an empty label: the partner is still created, just without the
// property-scoped tag.
func (c *Client) lookupInternalLabel(ctx context.Context, uid, assetID int64) string {
	domain := []interface{}{[]interface{}{"id", "=", assetID}}
	props, err := c.searchRead(ctx, uid, propertyModel, domain,
		[]string{"id", "internal_label"}, 1)
	if err != nil {
		c.log.Warn("Internal label lookup failed, creating partner without property tag", map[string]interface{}{
			"asset_id": assetID,
			"error":    err.Error(),
		})
		return ""
	}
	if len(props) == 0 {
		return ""
	}
	return asString(props[0]["internal_label"])
}

// resolveTags finds existing category tags by exact name and creates the
// missing ones one at a time. Tag names are globally unique in the
// directory; creating sequentially keeps a single request from racing
// against itself.
func (c *Client) resolveTags(ctx context.Context, uid int64, names []string) ([]interface{}, error) {
	nameArgs := make([]interface{}, len(names))
	for i, n := range names {
		nameArgs[i] = n
	}

	domain := []interface{}{[]interface{}{"name", "in", nameArgs}}
	existing, err := c.searchRead(ctx, uid, categoryModel, domain,
		[]string{"id", "name"}, len(names))
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(existing))
	for _, tag := range existing {
		if name := asString(tag["name"]); name != "" {
			byName[name] = asInt64(tag["id"])
		}
	}

	ids := make([]interface{}, 0, len(names))
	for _, name := range names {
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
			continue
		}

		var reply interface{}
		if err := c.executeKw(ctx, uid, categoryModel, "create",
			[]interface{}{map[string]interface{}{"name": name}}, nil, &reply); err != nil {
			return nil, err
		}
		ids = append(ids, asInt64(reply))
	}

	return ids, nil
}

// OfferMailContext resolves the owner-entity and tenant fields interpolated
// into the offer mail: tenancy → property → owning entity partner, plus the
// tenant partner's contact data.
func (c *Client) OfferMailContext(ctx context.Context, tenancyID, tenantPartnerID int64) (*models.OfferMailContext, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	out := &models.OfferMailContext{}

	domain := []interface{}{[]interface{}{"id", "=", tenancyID}}
	tenancies, err := c.searchRead(ctx, uid, tenancyModel, domain,
		[]string{"id", "main_property_id"}, 1)
	if err != nil {
		return nil, err
	}
	if len(tenancies) == 0 {
		return nil, ErrNotFound
	}

	if prop := relationOf(tenancies[0]["main_property_id"]); prop.Set {
		propDomain := []interface{}{[]interface{}{"id", "=", prop.ID}}
		props, err := c.searchRead(ctx, uid, propertyModel, propDomain,
			[]string{"id", "entity_id", "company_id"}, 1)
		if err != nil {
			return nil, err
		}
		if len(props) > 0 {
			owner := relationOf(props[0]["entity_id"])
			if !owner.Set {
				owner = relationOf(props[0]["company_id"])
			}
			if owner.Set {
				ownerDomain := []interface{}{[]interface{}{"id", "=", owner.ID}}
				owners, err := c.searchRead(ctx, uid, partnerModel, ownerDomain,
					[]string{"id", "name", "contact_address", "vat"}, 1)
				if err != nil {
					return nil, err
				}
				if len(owners) > 0 {
					out.OwnerName = strPtr(asString(owners[0]["name"]))
					out.OwnerAddress = strPtr(normalizeAddress(asString(owners[0]["contact_address"])))
					out.OwnerVat = strPtr(asString(owners[0]["vat"]))
				}
			}
		}
	}

	tenantDomain := []interface{}{[]interface{}{"id", "=", tenantPartnerID}}
	tenants, err := c.searchRead(ctx, uid, partnerModel, tenantDomain,
		[]string{"id", "name", "contact_address", "email", "phone"}, 1)
	if err != nil {
		return nil, err
	}
	if len(tenants) > 0 {
		out.TenantName = strPtr(asString(tenants[0]["name"]))
		out.TenantAddr = strPtr(normalizeAddress(asString(tenants[0]["contact_address"])))
		out.TenantEmail = strPtr(asString(tenants[0]["email"]))
		out.TenantPhone = strPtr(asString(tenants[0]["phone"]))
	}

	return out, nil
}

// normalizeAddress flattens the directory's multi-line contact_address into
// a single comma-separated line for mail bodies.
func normalizeAddress(addr string) string {
	lines := strings.Split(addr, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// setIf stores an optional field only when it has a non-empty value.
func setIf(data map[string]interface{}, key string, val *string) {
	if val != nil && *val != "" {
		data[key] = *val
	}
}
