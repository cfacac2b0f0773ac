// Package store persists venue records in an embedded SQLite database.
package store

import (
	"context"

	"github.com/crystal-maps/venue-cli/internal/model"
)

// Store defines the persistence interface for the enrichment pipeline.
// Writes are incremental: each successfully enriched venue is committed
// before the next one is processed, so an interrupted run keeps its
// progress.
type Store interface {
	// Ingestion. Upserts are keyed on the (brand, branch, address) identity
	// string; re-ingestion refreshes raw fields without touching resolved
	// or menu fields.
	UpsertVenues(ctx context.Context, venues []model.Venue) (int, error)

	// Reads.
	ListVenues(ctx context.Context) ([]model.Venue, error)
	VenuesToGeocode(ctx context.Context, force bool) ([]model.Venue, error)
	VenuesForMenus(ctx context.Context, force bool, limit int) ([]model.Venue, error)

	// Enrichment writes.
	SaveGeocode(ctx context.Context, id int64, result model.GeocodeResult) error
	SaveMenu(ctx context.Context, id int64, doc *model.MenuDocument, source model.MenuSource) error
	TouchMenuAttempt(ctx context.Context, id int64) error

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
