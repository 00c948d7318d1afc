package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/redefine/facility/api/internal/config"
	"github.com/redefine/facility/api/internal/logger"
)

// MaxQueryLen bounds the free-text query to satisfy the provider's
// query-length limit.
const MaxQueryLen = 512

// StatusZeroResults is the provider's valid empty answer; every other
// non-OK status is a hard failure for the whole search.
const (
	statusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// ErrMissingAPIKey is returned when no provider key is configured.
var ErrMissingAPIKey = errors.New("places API key is not configured")

// StatusError carries the provider's own status string so it can surface as
// the error code (e.g. OVER_QUERY_LIMIT, REQUEST_DENIED).
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "places search failed with status " + e.Status
	}
	return fmt.Sprintf("places search failed with status %s: %s", e.Status, e.Message)
}

// Place is one text-search candidate.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
}

// Details holds the per-candidate contact fields.
type Details struct {
	Phone   string
	Website string
	MapsURL string
}

// Client queries the places-search provider. Searcher is the narrow
// interface the vendor matcher consumes.
type Searcher interface {
	TextSearch(ctx context.Context, query string) ([]Place, error)
	PlaceDetails(ctx context.Context, placeID string) (*Details, error)
}

// Client is the HTTP implementation of Searcher against the Google Places
// web service.
type Client struct {
	cfg     config.PlacesConfig
	log     *logger.Logger
	http    *http.Client
	baseURL string
}

// NewClient creates a places client with a bounded-timeout HTTP client.
func NewClient(cfg config.PlacesConfig, log *logger.Logger) *Client {
	return &Client{
		cfg:     cfg,
		log:     log,
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: "https://maps.googleapis.com/maps/api/place",
	}
}

type searchResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Results      []Place `json:"results"`
}

// TextSearch runs a free-text search biased to the configured language and
// region, returning the first result page. Queries longer than MaxQueryLen
// runes are truncated.
func (c *Client) TextSearch(ctx context.Context, query string) ([]Place, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	runes := []rune(query)
	if len(runes) > MaxQueryLen {
		query = string(runes[:MaxQueryLen])
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.cfg.Language)
	params.Set("region", c.cfg.Region)
	params.Set("key", c.cfg.APIKey)

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/textsearch/json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	if resp.Status != statusOK && resp.Status != StatusZeroResults {
		return nil, &StatusError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	return resp.Results, nil
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		FormattedPhoneNumber     string `json:"formatted_phone_number"`
		InternationalPhoneNumber string `json:"international_phone_number"`
		Website                  string `json:"website"`
		URL                      string `json:"url"`
	} `json:"result"`
}

// PlaceDetails fetches phone/website/maps URL for one candidate.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*Details, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "formatted_phone_number,international_phone_number,website,url")
	params.Set("language", c.cfg.Language)
	params.Set("key", c.cfg.APIKey)

	var resp detailsResponse
	if err := c.getJSON(ctx, c.baseURL+"/details/json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	if resp.Status != statusOK {
		return nil, &StatusError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	phone := resp.Result.FormattedPhoneNumber
	if phone == "" {
		phone = resp.Result.InternationalPhoneNumber
	}

	return &Details{
		Phone:   phone,
		Website: resp.Result.Website,
		MapsURL: resp.Result.URL,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build places request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("places request returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode places response: %w", err)
	}
	return nil
}
