// Package geocode resolves free-text venue queries to coordinates through an
// ordered chain of interchangeable providers.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Result holds the geocoding output for a query. Only coordinates are
// guaranteed; the canonical fields depend on what the provider exposes.
type Result struct {
	Latitude        float64
	Longitude       float64
	ResolvedAddress *string
	ResolvedPhone   *string
	ResolvedWebsite *string
	PlaceID         *string
	MapsURL         *string
}

// Provider represents a single geocoding backend. Geocode returns (nil, nil)
// when the provider has no match for the query.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Result, error)
	Available() bool
}

// DelayMandater is implemented by providers whose usage policy mandates a
// minimum delay between calls. The resolver upgrades its configured delay to
// the largest mandated floor in the chain.
type DelayMandater interface {
	MinDelay() time.Duration
}

// Options configures provider construction.
type Options struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	Language       string
	NominatimEmail string
	GoogleAPIKey   string
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (o Options) language() string {
	if o.Language == "" {
		return "tr"
	}
	return o.Language
}

// FromConfig builds the ordered provider chain from configured names.
// Unknown names and providers missing credentials are reported once and
// excluded; they never fail the chain.
func FromConfig(names []string, opts Options) []Provider {
	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		switch key {
		case "nominatim":
			providers = append(providers, NewNominatim(opts))
		case "arcgis":
			providers = append(providers, NewArcGIS(opts))
		case "photon":
			providers = append(providers, NewPhoton(opts))
		case "google":
			if opts.GoogleAPIKey == "" {
				zap.L().Warn("google geocoder requested but no API key configured, excluding from chain")
				continue
			}
			providers = append(providers, NewGoogle(opts))
		default:
			zap.L().Warn("unknown geocoder, excluding from chain",
				zap.String("name", name),
				zap.String("supported", "nominatim, arcgis, photon, google"),
			)
		}
	}
	return providers
}

// ChainMinDelay returns the largest delay floor mandated by any provider in
// the chain, or zero.
func ChainMinDelay(providers []Provider) time.Duration {
	var floor time.Duration
	for _, p := range providers {
		if dm, ok := p.(DelayMandater); ok && dm.MinDelay() > floor {
			floor = dm.MinDelay()
		}
	}
	return floor
}
