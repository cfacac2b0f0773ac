package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

const arcgisFindURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"

// ArcGIS geocodes via the public ArcGIS World Geocoding Service.
type ArcGIS struct {
	client  *http.Client
	baseURL string
}

// NewArcGIS creates an ArcGIS provider.
func NewArcGIS(opts Options) *ArcGIS {
	return &ArcGIS{client: opts.httpClient(), baseURL: arcgisFindURL}
}

func (p *ArcGIS) Name() string    { return "arcgis" }
func (p *ArcGIS) Available() bool { return true }

type arcgisResponse struct {
	Candidates []struct {
		Address  string `json:"address"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
	} `json:"candidates"`
}

// Geocode implements Provider.
func (p *ArcGIS) Geocode(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"f":            {"json"},
		"singleLine":   {query},
		"maxLocations": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: arcgis build request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: arcgis request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: arcgis returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: arcgis read body")
	}

	var parsed arcgisResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: arcgis parse response")
	}
	if len(parsed.Candidates) == 0 {
		return nil, nil
	}

	candidate := parsed.Candidates[0]
	result := &Result{Latitude: candidate.Location.Y, Longitude: candidate.Location.X}
	if candidate.Address != "" {
		addr := candidate.Address
		result.ResolvedAddress = &addr
	}
	return result, nil
}
