package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

const photonSearchURL = "https://photon.komoot.io/api"

// Photon geocodes via the komoot Photon endpoint (OSM-backed, GeoJSON).
type Photon struct {
	client   *http.Client
	baseURL  string
	language string
}

// NewPhoton creates a Photon provider.
func NewPhoton(opts Options) *Photon {
	// Photon only accepts a handful of languages; fall back to its default
	// for anything else rather than erroring per request.
	lang := opts.language()
	switch lang {
	case "en", "de", "fr":
	default:
		lang = "default"
	}
	return &Photon{client: opts.httpClient(), baseURL: photonSearchURL, language: lang}
}

func (p *Photon) Name() string    { return "photon" }
func (p *Photon) Available() bool { return true }

type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
		Properties struct {
			Name     string `json:"name"`
			Street   string `json:"street"`
			City     string `json:"city"`
			Country  string `json:"country"`
			Postcode string `json:"postcode"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode implements Provider.
func (p *Photon) Geocode(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":     {query},
		"limit": {"1"},
		"lang":  {p.language},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: photon build request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: photon request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: photon returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: photon read body")
	}

	var parsed photonResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: photon parse response")
	}
	if len(parsed.Features) == 0 {
		return nil, nil
	}

	feature := parsed.Features[0]
	if len(feature.Geometry.Coordinates) < 2 {
		return nil, nil
	}

	result := &Result{
		Latitude:  feature.Geometry.Coordinates[1],
		Longitude: feature.Geometry.Coordinates[0],
	}

	props := feature.Properties
	parts := make([]string, 0, 5)
	for _, part := range []string{props.Name, props.Street, props.Postcode, props.City, props.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		addr := strings.Join(parts, ", ")
		result.ResolvedAddress = &addr
	}
	return result, nil
}
