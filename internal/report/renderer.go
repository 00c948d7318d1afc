package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/redefine/facility/api/internal/models"
)

// Page geometry in points (A4 portrait).
const (
	marginX      = 50.0
	topMargin    = 60.0
	bottomMargin = 60.0
	headerBand   = 100.0
	lineHeight   = 14.0
)

const footerText = "Mangelmanagement System | Interne Kostenschätzung"

// Corporate palette ("Modern Blue").
var (
	colorPrimary   = [3]int{28, 51, 87}    // night blue #1c3357
	colorSecondary = [3]int{102, 102, 102} // body gray
	colorAccent    = [3]int{245, 245, 247} // very light fill
	colorDivider   = [3]int{217, 217, 217}
	colorText      = [3]int{38, 38, 38}
	colorBlack     = [3]int{0, 0, 0}
	colorHeaderSub = [3]int{204, 204, 230}
)

// Input is everything the renderer needs about a ticket. The document is
// regenerated per request and never persisted.
type Input struct {
	TicketID     string
	Title        string
	AnalysisText string
	Rows         []models.CostRow
	Date         time.Time
}

// Result carries the rendered bytes plus the computed figures so callers
// and tests can verify the summary without parsing the PDF.
type Result struct {
	PDF   []byte
	Pages int
	Net   float64
	VAT   float64
	Gross float64
}

// Renderer lays out the multi-page cost report. It has no recoverable error
// path: any failure is fatal to the request and no partial document is
// emitted.
type Renderer struct {
	vatRate    float64
	classifier LineClassifier
}

// NewRenderer creates a report renderer for the given VAT rate (the same
// rate the mail composer uses).
func NewRenderer(vatRate float64, classifier LineClassifier) *Renderer {
	return &Renderer{vatRate: vatRate, classifier: classifier}
}

// Totals computes the summary figures: net sums every row whose kind is
// neither total nor extra, VAT is the fixed rate of net, gross is their sum.
func Totals(rows []models.CostRow, vatRate float64) (net, vat, gross float64) {
	for _, row := range rows {
		if row.Amount != nil && row.Countable() {
			net += *row.Amount
		}
	}
	vat = net * vatRate
	gross = net + vat
	return net, vat, gross
}

// Render produces the paginated PDF document.
func (r *Renderer) Render(in Input) (*Result, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	c := &canvas{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	c.w, c.h = pdf.GetPageSize()

	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(153, 153, 153)
		pdf.Text(marginX, c.h-20, c.tr(footerText))
	})

	pdf.AddPage()
	c.drawHeaderBand(in)
	c.y = headerBand + 40

	c.drawTitle(in.Title)
	c.drawAnalysis(in.AnalysisText, r.classifier)
	net, vat, gross := Totals(in.Rows, r.vatRate)
	c.drawCostTable(in.Rows, r.vatRate, net, vat, gross)
	c.drawClosingNote()

	if pdf.Err() {
		return nil, fmt.Errorf("report rendering failed: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report rendering failed: %w", err)
	}

	return &Result{
		PDF:   buf.Bytes(),
		Pages: pdf.PageCount(),
		Net:   net,
		VAT:   vat,
		Gross: gross,
	}, nil
}

// canvas is the running layout state: a vertical cursor on a fixed-size
// page. Block heights are measured before placement; ensure starts a new
// page when a block would not fit, so a block never straddles pages.
type canvas struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	w, h float64
	y    float64
}

func (c *canvas) ensure(needed float64) {
	if c.y+needed > c.h-bottomMargin {
		c.pdf.AddPage()
		c.y = topMargin
	}
}

func (c *canvas) text(x, y float64, s, style string, size float64, color [3]int) {
	c.pdf.SetTextColor(color[0], color[1], color[2])
	c.pdf.SetFont("Helvetica", style, size)
	c.pdf.Text(x, y, c.tr(s))
}

func (c *canvas) width(s, style string, size float64) float64 {
	c.pdf.SetFont("Helvetica", style, size)
	return c.pdf.GetStringWidth(c.tr(s))
}

func (c *canvas) fillRect(x, y, w, h float64, color [3]int) {
	c.pdf.SetFillColor(color[0], color[1], color[2])
	c.pdf.Rect(x, y, w, h, "F")
}

func (c *canvas) line(x1, y1, x2, y2, width float64, color [3]int) {
	c.pdf.SetDrawColor(color[0], color[1], color[2])
	c.pdf.SetLineWidth(width)
	c.pdf.Line(x1, y1, x2, y2)
}

// wrap splits text into lines not wider than maxWidth at the given font.
// A single over-long word stays on its own line rather than being broken.
func (c *canvas) wrap(text string, maxWidth float64, style string, size float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, 1)
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if c.width(candidate, style, size) > maxWidth && current != "" {
			lines = append(lines, current)
			current = word
		} else {
			current = candidate
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// drawHeaderBand paints the page-1 colored header with title, date and
// shortened ticket id. Continuation pages carry no band.
func (c *canvas) drawHeaderBand(in Input) {
	c.fillRect(0, 0, c.w, headerBand, colorPrimary)
	c.text(marginX, 55, "MANGELMELDUNG & KOSTENSCHÄTZUNG", "B", 18, [3]int{255, 255, 255})

	dateLabel := "Datum: " + in.Date.Format("02.01.2006")
	c.text(c.w-marginX-c.width(dateLabel, "", 10), 45, dateLabel, "", 10, colorHeaderSub)

	idLabel := "ID: " + shortID(in.TicketID) + "..."
	c.text(c.w-marginX-c.width(idLabel, "", 10), 60, idLabel, "", 10, colorHeaderSub)
}

func (c *canvas) drawTitle(title string) {
	if title == "" {
		title = "Ohne Titel"
	}

	c.text(marginX, c.y, "Betreff / Objekt:", "B", 9, colorSecondary)
	c.y += 12

	for _, line := range c.wrap(title, c.w-marginX*2, "B", 14) {
		c.text(marginX, c.y, line, "B", 14, colorText)
		c.y += 18
	}
	c.y += 10

	c.line(marginX, c.y, c.w-marginX, c.y, 1, colorAccent)
	c.y += 25
}

func (c *canvas) drawAnalysis(analysis string, classify LineClassifier) {
	c.ensure(40)

	for _, rawLine := range strings.Split(analysis, "\n") {
		line := strings.TrimRight(rawLine, " \t\r")

		switch classify.Classify(line) {
		case LineBlank:
			// A blank line is a small gap, not a full line.
			c.y += 8
		case LineHeading:
			c.ensure(40)
			c.y += 15
			c.text(marginX, c.y, line, "B", 11, colorPrimary)
			c.y += 20
		default:
			for _, wrapped := range c.wrap(line, c.w-marginX*2, "", 10) {
				c.ensure(lineHeight)
				c.text(marginX, c.y, wrapped, "", 10, colorText)
				c.y += lineHeight
			}
		}
	}
	c.y += 20
}

func (c *canvas) drawCostTable(rows []models.CostRow, vatRate, net, vat, gross float64) {
	c.ensure(60)

	c.text(marginX, c.y, "DETAILKOSTENAUFSTELLUNG", "B", 12, colorPrimary)
	c.y += 20

	if len(rows) == 0 {
		c.text(marginX, c.y, "Keine Positionen verfügbar.", "I", 10, colorSecondary)
		c.y += 20
		return
	}

	col1X := marginX
	col2X := c.w - marginX - 140
	col3Right := c.w - marginX - 10
	col1Width := col2X - col1X - 15

	const tableHeaderHeight = 28.0
	c.fillRect(marginX, c.y, c.w-marginX*2, tableHeaderHeight, colorAccent)

	headerTextY := c.y + tableHeaderHeight/2 + 3.5
	c.text(col1X+8, headerTextY, "Leistungsbeschreibung", "B", 10, colorBlack)
	c.text(col2X, headerTextY, "KG", "B", 10, colorBlack)
	amountHeader := "Betrag (Netto)"
	c.text(col3Right-c.width(amountHeader, "B", 10), headerTextY, amountHeader, "B", 10, colorBlack)

	c.y += tableHeaderHeight + 10

	for _, row := range rows {
		isTotal := row.RowType == models.RowTotal
		isSubtotal := row.RowType == models.RowSubtotal
		isLP := IsPositionLabel(row.Label)

		style := ""
		size := 9.0
		if isTotal || isSubtotal || isLP {
			style = "B"
			size = 10.0
		}

		amountStr := FormatEUR(row.Amount)
		labelStr := row.Label
		if labelStr == "" {
			if isTotal {
				labelStr = "GESAMTSUMME"
			} else {
				labelStr = "Position"
			}
		}

		labelLines := c.wrap(labelStr, col1Width, style, size)

		const paddingTop, paddingBottom = 8.0, 8.0
		noteHeight := 0.0
		if row.Notes != "" {
			noteHeight = 12.0
		}
		rowContentHeight := float64(len(labelLines))*12 + noteHeight
		totalRowHeight := paddingTop + rowContentHeight + paddingBottom

		// The whole row must fit: it is measured before any drawing, so
		// its label lines never continue on the next page.
		c.ensure(totalRowHeight)

		if isTotal || isSubtotal {
			c.fillRect(marginX, c.y-10, c.w-marginX*2, totalRowHeight, colorAccent)
		}

		textY := c.y + paddingTop
		for _, line := range labelLines {
			c.text(col1X+8, textY, line, style, size, colorBlack)
			textY += 12
		}

		if row.Notes != "" {
			textY += 2
			for _, noteLine := range c.wrap(row.Notes, col1Width, "I", 8) {
				c.text(col1X+8, textY, noteLine, "I", 8, colorSecondary)
				textY += 10
			}
		}

		if row.CostGroup != "" {
			c.text(col2X, c.y+paddingTop, row.CostGroup, "", 9, colorBlack)
		}

		c.text(col3Right-c.width(amountStr, style, size), c.y+paddingTop, amountStr, style, size, colorBlack)

		if !isTotal {
			separatorY := c.y + totalRowHeight - 5
			c.line(marginX, separatorY, c.w-marginX, separatorY, 0.5, colorDivider)
		}

		c.y += totalRowHeight
	}

	// Summary block: net, VAT, gross.
	c.ensure(100)
	c.y += 20

	summaryX := c.w - marginX - 220

	c.text(summaryX, c.y, "Summe Netto:", "", 10, colorBlack)
	netStr := FormatEUR(&net)
	c.text(col3Right-c.width(netStr, "", 10), c.y, netStr, "", 10, colorBlack)
	c.y += 18

	vatLabel := fmt.Sprintf("MwSt. (%.0f%%):", vatRate*100)
	c.text(summaryX, c.y, vatLabel, "", 10, colorBlack)
	vatStr := FormatEUR(&vat)
	c.text(col3Right-c.width(vatStr, "", 10), c.y, vatStr, "", 10, colorBlack)
	c.y += 25

	c.line(summaryX, c.y-12, c.w-marginX, c.y-12, 1.5, colorPrimary)

	c.text(summaryX, c.y, "GESAMTBETRAG:", "B", 12, colorPrimary)
	grossStr := FormatEUR(&gross)
	c.text(col3Right-c.width(grossStr, "B", 12), c.y, grossStr, "B", 12, colorPrimary)
	c.y += 40
}

func (c *canvas) drawClosingNote() {
	c.ensure(60)
	c.y += 20
	c.text(marginX, c.y, "Dieses Dokument wurde maschinell erstellt und ist ohne Unterschrift gültig.",
		"I", 8, colorSecondary)
}

// shortID shortens a ticket id to its first dash-separated segment.
func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}
