package mail

import (
	"fmt"
	"strings"

	"github.com/redefine/facility/api/internal/report"
)

// fieldPlaceholder stands in for missing optional offer fields.
const fieldPlaceholder = "—"

// OfferParams carries the fields interpolated into the commissioning mail.
// GrossAmount is the agreed sum including VAT; the body also states the
// implied net using the configured rate.
type OfferParams struct {
	VendorEmail string
	VendorName  string
	Description string

	OwnerName    *string
	OwnerAddress *string
	OwnerVat     *string

	TenantName    *string
	TenantAddress *string
	TenantEmail   *string
	TenantPhone   *string

	GrossAmount *float64
	DueDateText *string
}

// BuildOffer composes the commissioning mail to a vendor.
func BuildOffer(p OfferParams, vatRate float64, invoiceMailbox string) Draft {
	subject := strings.TrimSpace("Beauftragung – " + p.Description)

	ownerName := orPlaceholder(p.OwnerName)
	ownerAddr := orPlaceholder(p.OwnerAddress)
	ownerVat := orPlaceholder(p.OwnerVat)

	tenantParts := make([]string, 0, 3)
	if p.TenantName != nil && *p.TenantName != "" {
		tenantParts = append(tenantParts, "Herr/Frau "+*p.TenantName)
	}
	if p.TenantPhone != nil && *p.TenantPhone != "" {
		tenantParts = append(tenantParts, "Tel.: "+*p.TenantPhone)
	}
	if p.TenantEmail != nil && *p.TenantEmail != "" {
		tenantParts = append(tenantParts, "E-Mail: "+*p.TenantEmail)
	}
	tenantBlock := fieldPlaceholder
	if len(tenantParts) > 0 {
		tenantBlock = strings.Join(tenantParts, ", ")
	}

	grossText := fieldPlaceholder
	netText := fieldPlaceholder
	if p.GrossAmount != nil {
		grossText = report.FormatNumber(*p.GrossAmount)
		netText = report.FormatNumber(*p.GrossAmount / (1 + vatRate))
	}

	dueText := "schnellstmöglich, wie besprochen"
	if p.DueDateText != nil && *p.DueDateText != "" {
		dueText = *p.DueDateText
	}

	body := fmt.Sprintf(`Sehr geehrte Damen und Herren,

namens und im Auftrag der Eigentümerin, %s, möchten wir Sie gerne mit den nachstehenden Arbeiten beauftragen.

Beschreibung: %s

Kontaktdaten: %s
Adresse (Mieter): %s

Ausführung: %s
Beauftragungsumme: EUR %s brutto (entspricht ca. EUR %s netto zzgl. MwSt.)


Bitte beachten Sie bei der Rechnungsstellung die Angabe des richtigen Rechnungsempfängers wie folgt:

Rechnungsempfänger:

%s
c/o REDEFINE Asset Management GmbH
Kantstraße 149
10623 Berlin

Bitte vermerken Sie ebenfalls unbedingt den Leistungsempfänger auf Ihrer Rechnung:

%s
%s
Steuernummer: %s

Bitte senden Sie uns die Leistungsnachweise, inklusive der vom Mieter unterzeichneten Stundenzettel, sowie die Rechnung bei Möglichkeit direkt an das Postfach %s um die schnellstmögliche Bearbeitung zu gewährleisten.

Vielen Dank für Ihre Mühe bereits im Voraus. Wir freuen uns auf eine gute Zusammenarbeit.
`, ownerName, p.Description, tenantBlock, orPlaceholder(p.TenantAddress), dueText,
		grossText, netText, ownerName, ownerName, ownerAddr, ownerVat, invoiceMailbox)

	return Draft{To: p.VendorEmail, Subject: subject, Body: body}
}

func orPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return fieldPlaceholder
	}
	return *s
}
