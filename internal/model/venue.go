// Package model defines the venue and menu record types shared across the pipeline.
package model

import (
	"encoding/json"
	"time"
)

// GeocodeResult holds the provider-supplied resolution for one venue.
type GeocodeResult struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Provider        string  `json:"provider"`
	ResolvedAddress *string `json:"resolved_address,omitempty"`
	ResolvedPhone   *string `json:"resolved_phone,omitempty"`
	ResolvedWebsite *string `json:"resolved_website,omitempty"`
	PlaceID         *string `json:"place_id,omitempty"`
	MapsURL         *string `json:"maps_url,omitempty"`
}

// Venue is one physical or logical venue location. Raw fields come from the
// listing scrape; resolved fields from geocoding; menu fields from extraction.
// Optional fields are explicit nullable slots, both coordinates are present
// or both absent.
type Venue struct {
	ID     int64   `json:"id"`
	Brand  string  `json:"brand"`
	Branch *string `json:"branch,omitempty"`

	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Website   *string `json:"website,omitempty"`
	ExtraInfo *string `json:"extra_info,omitempty"`

	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	GeocodeProvider *string  `json:"geocode_provider,omitempty"`
	ResolvedAddress *string  `json:"resolved_address,omitempty"`
	ResolvedPhone   *string  `json:"resolved_phone,omitempty"`
	ResolvedWebsite *string  `json:"resolved_website,omitempty"`
	GeocodePlaceID  *string  `json:"geocode_place_id,omitempty"`
	GeocodeMapsURL  *string  `json:"geocode_maps_url,omitempty"`

	Menu            *MenuDocument `json:"menu_data,omitempty"`
	MenuSource      *MenuSource   `json:"menu_source,omitempty"`
	MenuLastUpdated *time.Time    `json:"menu_last_updated,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// UniqueKey returns the stable identity string the store upserts on:
// JSON-encoded (brand, branch, address) tuple equality, not the broader
// dedup key used at render time.
func (v *Venue) UniqueKey() string {
	key, _ := json.Marshal([3]*string{&v.Brand, v.Branch, v.Address})
	return string(key)
}

// HasCoordinates reports whether the venue has been geocoded.
func (v *Venue) HasCoordinates() bool {
	return v.Latitude != nil && v.Longitude != nil
}

// DisplayAddress prefers the geocoder's canonical address over the raw one.
func (v *Venue) DisplayAddress() *string {
	if v.ResolvedAddress != nil {
		return v.ResolvedAddress
	}
	return v.Address
}

// DisplayPhone prefers the geocoder's canonical phone over the raw one.
func (v *Venue) DisplayPhone() *string {
	if v.ResolvedPhone != nil {
		return v.ResolvedPhone
	}
	return v.Phone
}

// DisplayWebsite prefers the geocoder's canonical website over the raw one.
func (v *Venue) DisplayWebsite() *string {
	if v.ResolvedWebsite != nil {
		return v.ResolvedWebsite
	}
	return v.Website
}

// ApplyGeocode merges a geocoding result into the venue.
func (v *Venue) ApplyGeocode(r GeocodeResult) {
	lat, lng := r.Latitude, r.Longitude
	v.Latitude = &lat
	v.Longitude = &lng
	provider := r.Provider
	v.GeocodeProvider = &provider
	v.ResolvedAddress = r.ResolvedAddress
	v.ResolvedPhone = r.ResolvedPhone
	v.ResolvedWebsite = r.ResolvedWebsite
	v.GeocodePlaceID = r.PlaceID
	v.GeocodeMapsURL = r.MapsURL
}

// String returns a short human-readable label used in logs and reports.
func (v *Venue) String() string {
	if v.Branch != nil && *v.Branch != "" {
		return v.Brand + " (" + *v.Branch + ")"
	}
	return v.Brand + " (Genel)"
}
