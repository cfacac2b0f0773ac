// Package pipeline runs the enrichment phases over the venue store.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crystal-maps/venue-cli/internal/address"
	"github.com/crystal-maps/venue-cli/internal/model"
	"github.com/crystal-maps/venue-cli/internal/store"
	"github.com/crystal-maps/venue-cli/pkg/geocode"
)

// minGeocodeDelay is the floor applied to the configured inter-call delay so
// public geocoding endpoints are never hammered.
const minGeocodeDelay = 500 * time.Millisecond

// Resolver walks unresolved venues through an ordered geocoder chain and
// commits each resolution as soon as it lands.
type Resolver struct {
	store     store.Store
	providers []geocode.Provider
	delay     time.Duration
	force     bool

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithForce re-resolves venues that already have coordinates.
func WithForce(force bool) ResolverOption {
	return func(r *Resolver) { r.force = force }
}

func withSleep(fn func(time.Duration)) ResolverOption {
	return func(r *Resolver) { r.sleep = fn }
}

// NewResolver builds a resolver. The effective delay is the configured one
// raised to the largest floor any provider in the chain mandates.
func NewResolver(s store.Store, providers []geocode.Provider, delay time.Duration, opts ...ResolverOption) *Resolver {
	if delay < minGeocodeDelay {
		delay = minGeocodeDelay
	}
	if floor := geocode.ChainMinDelay(providers); delay < floor {
		zap.L().Info("raising geocode delay to provider-mandated floor",
			zap.Duration("floor", floor))
		delay = floor
	}

	r := &Resolver{
		store:     s,
		providers: providers,
		delay:     delay,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GeocodeSummary reports one resolver run.
type GeocodeSummary struct {
	Resolved int
	Skipped  int
	Failures []string
}

// Run resolves every pending venue. Each success is committed immediately,
// so an interrupted run keeps its progress and the next run picks up where
// it left off.
func (r *Resolver) Run(ctx context.Context) (*GeocodeSummary, error) {
	if len(r.providers) == 0 {
		return nil, eris.New("pipeline: no geocoders configured")
	}

	venues, err := r.store.VenuesToGeocode(ctx, r.force)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load venues to geocode")
	}

	summary := &GeocodeSummary{}
	for _, v := range venues {
		if err := ctx.Err(); err != nil {
			return summary, eris.Wrap(err, "pipeline: geocode interrupted")
		}

		query := searchQuery(v)
		if query == "" {
			summary.Skipped++
			continue
		}

		result := r.resolveOne(ctx, query)
		if result == nil {
			summary.Failures = append(summary.Failures, query)
			zap.L().Warn("no geocode result", zap.String("query", query))
			continue
		}

		if err := r.store.SaveGeocode(ctx, v.ID, *result); err != nil {
			return summary, eris.Wrapf(err, "pipeline: save geocode for venue %d", v.ID)
		}
		summary.Resolved++
		zap.L().Info("venue geocoded",
			zap.String("venue", v.String()),
			zap.String("provider", result.Provider),
			zap.Float64("lat", result.Latitude),
			zap.Float64("lng", result.Longitude),
		)
	}

	return summary, nil
}

// resolveOne tries the chain in order and returns the first hit. The delay
// follows every attempt, hit or miss, so call pacing holds across venues.
func (r *Resolver) resolveOne(ctx context.Context, query string) *model.GeocodeResult {
	for _, p := range r.providers {
		if !p.Available() {
			continue
		}

		res, err := p.Geocode(ctx, query)
		if err != nil {
			zap.L().Debug("geocoder failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Error(err),
			)
		}
		r.pause()

		if err == nil && res != nil {
			return &model.GeocodeResult{
				Latitude:        res.Latitude,
				Longitude:       res.Longitude,
				Provider:        p.Name(),
				ResolvedAddress: res.ResolvedAddress,
				ResolvedPhone:   res.ResolvedPhone,
				ResolvedWebsite: res.ResolvedWebsite,
				PlaceID:         res.PlaceID,
				MapsURL:         res.MapsURL,
			}
		}
	}
	return nil
}

func (r *Resolver) pause() {
	if r.delay > 0 {
		r.sleep(r.delay)
	}
}

func searchQuery(v model.Venue) string {
	cleaned := address.Normalize(v.Address)
	if cleaned == nil {
		return ""
	}
	return address.SearchQuery(v.Brand, v.Branch, *cleaned)
}
