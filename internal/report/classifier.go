package report

import (
	"regexp"
	"strings"
)

// LineClass is the layout class of one analysis-text line.
type LineClass int

const (
	LineBody LineClass = iota
	LineHeading
	LineBlank
)

// maxHeadingLen bounds the "short line ending with a colon" heading
// heuristic.
const maxHeadingLen = 60

// positionPattern detects AI-generated line-item labels ("LP 1", "lp12:",
// "LP 3: Dachsanierung") that carry no structured type tag.
var positionPattern = regexp.MustCompile(`(?i)LP\s*\d+`)

// defaultHeadings are the section titles the drafting step emits; lines
// containing one of them are styled as headings.
var defaultHeadings = []string{
	"Fotobeschreibung",
	"Mangelbeschreibung",
	"Leistungspositionen mit Kostengruppen nach DIN 276",
	"Ursache",
	"Maßnahmen",
	"Sanierungsempfehlung",
	"Fazit",
}

// LineClassifier decides how a line of the free-text analysis is styled.
// The heuristic is inherently fuzzy string matching against generated prose,
// so it lives behind this narrow interface and is tested independently of
// the layout engine.
type LineClassifier interface {
	Classify(line string) LineClass
}

// headingClassifier is the default classifier: a line is a heading when it
// contains a known heading phrase, or when it is short and ends with a colon.
type headingClassifier struct {
	phrases []string
}

// NewLineClassifier returns the default heading classifier.
func NewLineClassifier() LineClassifier {
	return &headingClassifier{phrases: defaultHeadings}
}

func (c *headingClassifier) Classify(line string) LineClass {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineBlank
	}

	for _, phrase := range c.phrases {
		if strings.Contains(line, phrase) {
			return LineHeading
		}
	}

	if strings.HasSuffix(trimmed, ":") && len(line) < maxHeadingLen {
		return LineHeading
	}

	return LineBody
}

// IsPositionLabel reports whether a cost-row label names a numbered
// Leistungsposition and should therefore be emphasized like a subtotal.
func IsPositionLabel(label string) bool {
	return positionPattern.MatchString(strings.TrimSpace(label))
}
