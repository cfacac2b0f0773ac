// Package places is a minimal client for the Google Places API (New, v1):
// text search for geocoding and place details for the editorial-summary menu
// fallback.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

const searchFieldMask = "places.id,places.displayName,places.formattedAddress,places.location," +
	"places.internationalPhoneNumber,places.nationalPhoneNumber,places.websiteUri,places.googleMapsUri"

const detailsFieldMask = "id,displayName,editorialSummary,photos,googleMapsUri"

// Place is one result from text search.
type Place struct {
	ID                       string         `json:"id"`
	DisplayName              *LocalizedText `json:"displayName,omitempty"`
	FormattedAddress         string         `json:"formattedAddress"`
	InternationalPhoneNumber string         `json:"internationalPhoneNumber"`
	NationalPhoneNumber      string         `json:"nationalPhoneNumber"`
	WebsiteURI               string         `json:"websiteUri"`
	GoogleMapsURI            string         `json:"googleMapsUri"`
	Location                 *LatLng        `json:"location,omitempty"`
}

// LocalizedText is the Places API localized string wrapper.
type LocalizedText struct {
	Text string `json:"text"`
}

// LatLng is a coordinate pair in decimal degrees.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Details is the subset of place details used by the menu fallback.
type Details struct {
	ID               string         `json:"id"`
	DisplayName      *LocalizedText `json:"displayName,omitempty"`
	EditorialSummary *LocalizedText `json:"editorialSummary,omitempty"`
	GoogleMapsURI    string         `json:"googleMapsUri"`
	Photos           []Photo        `json:"photos,omitempty"`
}

// Photo is a photo resource reference attached to a place.
type Photo struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
}

// MediaURL returns the media endpoint for the photo reference. The URL
// carries no credential; requests to it must authenticate with an
// X-Goog-Api-Key header, so the reference is safe to persist and export.
func (p Photo) MediaURL(maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 800
	}
	return fmt.Sprintf("%s/%s/media?maxWidthPx=%d", defaultBaseURL, p.Name, maxWidth)
}

// Client calls the Places API.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
	limiter  *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLanguage sets the language code sent with searches.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// NewClient creates a Places client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: "tr",
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchTextRequest struct {
	TextQuery    string `json:"textQuery"`
	LanguageCode string `json:"languageCode,omitempty"`
	PageSize     int    `json:"pageSize"`
}

type searchTextResponse struct {
	Places []Place `json:"places"`
}

// SearchText runs a text search and returns the top match, or nil when the
// API has no result for the query.
func (c *Client) SearchText(ctx context.Context, query string) (*Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	payload, err := json.Marshal(searchTextRequest{
		TextQuery:    query,
		LanguageCode: c.language,
		PageSize:     1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "places: build search request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed searchTextResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "places: parse search response")
	}
	if len(parsed.Places) == 0 {
		return nil, nil
	}
	return &parsed.Places[0], nil
}

// Lookup fetches place details for the editorial summary and photo
// references. Returns nil when the place no longer exists.
func (c *Client) Lookup(ctx context.Context, placeID string) (*Details, error) {
	if placeID == "" {
		return nil, eris.New("places: empty place id")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+placeID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: build details request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var details Details
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, eris.Wrap(err, "places: parse details response")
	}
	if details.ID == "" {
		return nil, nil
	}
	return &details, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "places: read body")
	}
	if resp.StatusCode == http.StatusNotFound {
		return []byte("{}"), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: api returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
