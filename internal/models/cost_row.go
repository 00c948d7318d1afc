package models

// Row kinds for cost table entries. "extra" rows are informational and
// excluded from the net total; "total" rows are display-only.
const (
	RowPosition = "position"
	RowSubtotal = "subtotal"
	RowExtra    = "extra"
	RowTotal    = "total"
)

// CostRow is one line of a ticket's cost breakdown. Rows are created by
// an operator or by the AI drafting step; the ID is client-generated and
// must survive edits. The whole list is always persisted in full.
type CostRow struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	CostGroup string   `json:"kostengruppe"`
	Amount    *float64 `json:"amount"`
	Notes     string   `json:"notes,omitempty"`
	RowType   string   `json:"rowType"`
}

// Countable reports whether the row's amount contributes to the net sum.
func (r CostRow) Countable() bool {
	return r.RowType != RowTotal && r.RowType != RowExtra
}
