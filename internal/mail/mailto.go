package mail

import (
	"net/url"
	"strings"
)

// MailtoHref builds the mailto: URI handed to the operator's local mail
// client. Subject and body are percent-encoded; no mail is sent server-side.
func MailtoHref(d Draft) string {
	return "mailto:" + d.To +
		"?subject=" + encodeComponent(d.Subject) +
		"&body=" + encodeComponent(d.Body)
}

// encodeComponent percent-encodes like a URI component: mail clients expect
// %20 for spaces in mailto URIs, not the form-encoding plus sign.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
