package vendors

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redefine/facility/api/internal/logger"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/places"
)

// MaxDetailResults bounds how many search candidates are enriched with
// details and email discovery.
const MaxDetailResults = 8

// ErrEmptyPrompt is returned when an external search is requested with a
// blank prompt.
var ErrEmptyPrompt = errors.New("search prompt is empty")

// DirectorySearcher is the slice of the entity directory the matcher needs.
type DirectorySearcher interface {
	FindVendorsByPropertyLabel(ctx context.Context, label string) ([]models.Vendor, error)
}

// EmailFinder discovers a contact email on a vendor's own website.
type EmailFinder interface {
	FindEmail(ctx context.Context, websiteURL string) string
}

// Matcher produces vendor candidates from two disjoint sources: partners
// already tagged in the entity directory, and a public places search. The
// two result sets are never merged automatically.
type Matcher struct {
	directory DirectorySearcher
	search    places.Searcher
	emails    EmailFinder
	log       *logger.Logger
}

// NewMatcher creates a vendor matcher.
func NewMatcher(directory DirectorySearcher, search places.Searcher, emails EmailFinder, log *logger.Logger) *Matcher {
	return &Matcher{
		directory: directory,
		search:    search,
		emails:    emails,
		log:       log,
	}
}

// MatchInternal returns directory partners serving the given property label,
// in the directory's native order (no ranking).
func (m *Matcher) MatchInternal(ctx context.Context, propertyLabel string) ([]models.Vendor, error) {
	return m.directory.FindVendorsByPropertyLabel(ctx, propertyLabel)
}

// MatchExternal searches the places provider with the free-text prompt and
// enriches the first candidates with contact details and a best-effort email
// scrape. Results are ranked by rating (descending), ties broken by review
// count; unrated entries sort last. One candidate's enrichment failure never
// aborts the batch.
func (m *Matcher) MatchExternal(ctx context.Context, prompt string) ([]models.ExternalVendor, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	results, err := m.search.TextSearch(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []models.ExternalVendor{}, nil
	}

	subset := results
	if len(subset) > MaxDetailResults {
		subset = subset[:MaxDetailResults]
	}

	vendors := make([]models.ExternalVendor, 0, len(subset))
	for _, place := range subset {
		vendors = append(vendors, m.enrich(ctx, place))
	}

	sort.SliceStable(vendors, func(i, j int) bool {
		ri, rj := ratingOf(vendors[i]), ratingOf(vendors[j])
		if ri != rj {
			return ri > rj
		}
		return reviewsOf(vendors[i]) > reviewsOf(vendors[j])
	})

	return vendors, nil
}

func (m *Matcher) enrich(ctx context.Context, place places.Place) models.ExternalVendor {
	v := models.ExternalVendor{
		ID:          place.PlaceID,
		Name:        place.Name,
		Rating:      place.Rating,
		ReviewCount: place.UserRatingsTotal,
		Source:      "google_places",
	}
	if v.ID == "" {
		v.ID = place.Name
	}
	if v.ID == "" {
		v.ID = place.FormattedAddress
	}
	if v.Name == "" {
		v.Name = "Unbekannter Dienstleister"
	}
	if place.FormattedAddress != "" {
		addr := place.FormattedAddress
		v.Address = &addr
	}
	if place.PlaceID != "" {
		mapsURL := "https://www.google.com/maps/place/?q=place_id:" + place.PlaceID
		v.SourceURL = &mapsURL
	}

	if place.PlaceID != "" {
		details, err := m.search.PlaceDetails(ctx, place.PlaceID)
		if err != nil {
			m.log.Warn("Place details lookup failed", map[string]interface{}{
				"place_id": place.PlaceID,
				"error":    err.Error(),
			})
		} else {
			if details.Phone != "" {
				phone := details.Phone
				v.Phone = &phone
			}
			if details.Website != "" {
				website := details.Website
				v.Website = &website
			}
			if details.MapsURL != "" {
				mapsURL := details.MapsURL
				v.SourceURL = &mapsURL
			}
		}
	}

	if v.Website != nil {
		if email := m.emails.FindEmail(ctx, *v.Website); email != "" {
			v.Email = &email
		}
	}

	return v
}

func ratingOf(v models.ExternalVendor) float64 {
	if v.Rating == nil {
		return 0
	}
	return *v.Rating
}

func reviewsOf(v models.ExternalVendor) int {
	if v.ReviewCount == nil {
		return 0
	}
	return *v.ReviewCount
}
