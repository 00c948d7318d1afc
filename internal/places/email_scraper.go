package places

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/redefine/facility/api/internal/logger"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// maxScrapeBody caps how much of a vendor page is read when scanning for an
// email address.
const maxScrapeBody = 1 << 20

// EmailScraper attempts best-effort contact discovery on a vendor's own
// website: the home page plus the German legal/contact page variants, first
// regex match wins. Every failure is swallowed; one vendor's enrichment
// must never abort the batch.
type EmailScraper struct {
	log  *logger.Logger
	http *http.Client
}

// NewEmailScraper creates a scraper with a short per-page timeout.
func NewEmailScraper(log *logger.Logger) *EmailScraper {
	return &EmailScraper{
		log:  log,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// FindEmail returns the first email address found on the site's candidate
// pages, or "" when none could be discovered.
func (s *EmailScraper) FindEmail(ctx context.Context, websiteURL string) string {
	parsed, err := url.Parse(websiteURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	origin := parsed.Scheme + "://" + parsed.Host

	candidates := []string{
		websiteURL,
		origin + "/impressum",
		origin + "/impressum.html",
		origin + "/kontakt",
		origin + "/kontakt.html",
	}

	tried := make(map[string]bool, len(candidates))
	for _, page := range candidates {
		if tried[page] {
			continue
		}
		tried[page] = true

		if email := s.scanPage(ctx, page); email != "" {
			s.log.Debug("Found vendor email", map[string]interface{}{
				"email": email,
				"page":  page,
			})
			return email
		}
	}

	return ""
}

func (s *EmailScraper) scanPage(ctx context.Context, page string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
	if err != nil {
		return ""
	}

	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Debug("Vendor page fetch failed", map[string]interface{}{
			"page":  page,
			"error": err.Error(),
		})
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeBody))
	if err != nil {
		return ""
	}

	return emailPattern.FindString(string(body))
}
