package geocode

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/crystal-maps/venue-cli/pkg/places"
)

// Google geocodes via the Places text search API. It is the only provider
// that fills the full canonical field set (phone, website, place id, maps
// URL), which is why dedup scoring favors google-resolved records.
type Google struct {
	client *places.Client
	apiKey string
}

// NewGoogle creates a Google provider from shared options.
func NewGoogle(opts Options) *Google {
	clientOpts := []places.Option{places.WithLanguage(opts.language())}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, places.WithHTTPClient(opts.HTTPClient))
	}
	return &Google{
		client: places.NewClient(opts.GoogleAPIKey, clientOpts...),
		apiKey: opts.GoogleAPIKey,
	}
}

// NewGoogleWithClient creates a Google provider around an existing places
// client, so the geocode chain and the menu fallback share one limiter.
func NewGoogleWithClient(client *places.Client) *Google {
	return &Google{client: client}
}

func (p *Google) Name() string    { return "google" }
func (p *Google) Available() bool { return p.client != nil }

// Geocode implements Provider.
func (p *Google) Geocode(ctx context.Context, query string) (*Result, error) {
	place, err := p.client.SearchText(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google search")
	}
	if place == nil || place.Location == nil {
		return nil, nil
	}

	result := &Result{
		Latitude:  place.Location.Latitude,
		Longitude: place.Location.Longitude,
	}
	if place.FormattedAddress != "" {
		addr := place.FormattedAddress
		result.ResolvedAddress = &addr
	}
	phone := place.InternationalPhoneNumber
	if phone == "" {
		phone = place.NationalPhoneNumber
	}
	if phone != "" {
		result.ResolvedPhone = &phone
	}
	if place.WebsiteURI != "" {
		site := place.WebsiteURI
		result.ResolvedWebsite = &site
	}
	if place.ID != "" {
		id := place.ID
		result.PlaceID = &id
	}
	if place.GoogleMapsURI != "" {
		mapsURL := place.GoogleMapsURI
		result.MapsURL = &mapsURL
	}
	return result, nil
}
