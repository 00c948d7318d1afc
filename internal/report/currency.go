package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder rendered for amounts that are not set. An absent estimate
// must never render as "0,00 €".
const AmountPlaceholder = "—"

var german = message.NewPrinter(language.German)

// FormatEUR renders an amount with German conventions: comma decimal
// separator, period thousands separator, trailing euro sign.
func FormatEUR(amount *float64) string {
	if amount == nil {
		return AmountPlaceholder
	}
	return german.Sprintf("%.2f", *amount) + " €"
}

// FormatNumber renders a bare amount ("1.234,56") for mail bodies that add
// their own currency wording.
func FormatNumber(amount float64) string {
	return german.Sprintf("%.2f", amount)
}
