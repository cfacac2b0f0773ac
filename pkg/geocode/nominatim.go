package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// Nominatim geocodes via the OpenStreetMap Nominatim search endpoint.
// Its usage policy mandates at most one request per second.
type Nominatim struct {
	client    *http.Client
	baseURL   string
	language  string
	userAgent string
}

// NewNominatim creates a Nominatim provider.
func NewNominatim(opts Options) *Nominatim {
	userAgent := "CrystalVenues/1.0"
	if opts.NominatimEmail != "" {
		userAgent += " (" + opts.NominatimEmail + ")"
	}
	return &Nominatim{
		client:    opts.httpClient(),
		baseURL:   nominatimSearchURL,
		language:  opts.language(),
		userAgent: userAgent,
	}
}

func (p *Nominatim) Name() string    { return "nominatim" }
func (p *Nominatim) Available() bool { return true }

// MinDelay implements DelayMandater per the Nominatim usage policy.
func (p *Nominatim) MinDelay() time.Duration { return time.Second }

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode implements Provider.
func (p *Nominatim) Geocode(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":               {query},
		"format":          {"jsonv2"},
		"limit":           {"1"},
		"accept-language": {p.language},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim build request")
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim read body")
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse latitude")
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse longitude")
	}

	result := &Result{Latitude: lat, Longitude: lng}
	if places[0].DisplayName != "" {
		name := places[0].DisplayName
		result.ResolvedAddress = &name
	}
	return result, nil
}
