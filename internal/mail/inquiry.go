// Package mail assembles the plain-text outreach mails the portal hands to
// the operator's mail client. Composition is pure: no I/O, no state, fully
// deterministic given its inputs.
package mail

import (
	"fmt"
	"strings"

	"github.com/redefine/facility/api/internal/models"
)

// Draft is a composed mail ready for a mailto: URI.
type Draft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// InquiryParams carries the fields interpolated into the vendor inquiry.
type InquiryParams struct {
	TicketTitle       string
	TicketDescription string
	Building          *models.BuildingInfo
	VendorEmail       string
	VendorName        string
	PhotoLinksText    string
	CostRows          []models.CostRow
}

// BuildInquiry composes the ask-for-an-offer mail to a vendor. Missing
// optional fields render as "-" or are omitted, never as a literal null.
func BuildInquiry(p InquiryParams, teamName string) Draft {
	objektLabel := ""
	if p.Building != nil {
		objektLabel = p.Building.ObjektLabel
	}

	subject := strings.TrimSpace(fmt.Sprintf("Anfrage – %s – %s", p.TicketTitle, objektLabel))

	objekt := objektLabel
	if objekt == "" && p.Building != nil && p.Building.InternalLabel != nil {
		objekt = *p.Building.InternalLabel
	}
	if objekt == "" && p.Building != nil && p.Building.Reference != nil {
		objekt = *p.Building.Reference
	}
	if objekt == "" {
		objekt = "-"
	}

	address := "-"
	if p.Building != nil {
		if joined := joinFields(" ", p.Building.Street, p.Building.Zip, p.Building.City); joined != "" {
			address = joined
		}
	}

	photoLinks := p.PhotoLinksText
	if photoLinks == "" {
		photoLinks = "(Keine Fotos verfügbar)"
	}

	body := fmt.Sprintf(`Sehr geehrte Damen und Herren,

wir bitten um ein Angebot bzw. die Durchführung der folgenden Maßnahme in einem Wohnobjekt.

Objekt: %s
Adresse: %s

Kurzbeschreibung des Problems:

%s

Auszuführende Leistungspositionen:

%s

Fotodokumentation (Links gültig für 7 Tage):

%s

Bitte prüfen Sie die Angaben und geben Sie uns eine kurze Rückmeldung zu Verfügbarkeit und weiterem Vorgehen.

Mit freundlichen Grüßen
%s
`, objekt, address, p.TicketDescription, positionLines(p.CostRows), photoLinks, teamName)

	return Draft{To: p.VendorEmail, Subject: subject, Body: body}
}

// positionLines renders the numbered Leistungsposition list for the inquiry.
func positionLines(rows []models.CostRow) string {
	if len(rows) == 0 {
		return "- (keine Leistungspositionen vorhanden)"
	}

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		label := row.Label
		if label == "" {
			label = "Leistungsposition"
		}
		line := fmt.Sprintf("- LP %d: %s", i+1, label)
		if row.CostGroup != "" {
			line += fmt.Sprintf(" (KG %s)", row.CostGroup)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// joinFields joins the non-nil, non-empty fields with sep.
func joinFields(sep string, fields ...*string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != nil && *f != "" {
			parts = append(parts, *f)
		}
	}
	return strings.Join(parts, sep)
}
