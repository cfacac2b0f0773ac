package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/crystal-maps/venue-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. An open failure is fatal to the caller.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS venues (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	unique_key        TEXT UNIQUE NOT NULL,
	brand             TEXT NOT NULL,
	branch            TEXT,
	address           TEXT,
	phone             TEXT,
	website           TEXT,
	extra_info        TEXT,
	latitude          REAL,
	longitude         REAL,
	geocode_provider  TEXT,
	resolved_address  TEXT,
	resolved_phone    TEXT,
	resolved_website  TEXT,
	geocode_place_id  TEXT,
	geocode_maps_url  TEXT,
	menu_data         TEXT,
	menu_source       TEXT,
	menu_last_updated TEXT,
	last_updated      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_venues_brand ON venues(brand);
CREATE INDEX IF NOT EXISTS idx_venues_coords ON venues(latitude, longitude);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertVenues inserts or refreshes raw listing fields keyed on the stable
// identity string. Resolved geocode and menu columns are left untouched on
// conflict so a re-scrape never discards enrichment.
func (s *SQLiteStore) UpsertVenues(ctx context.Context, venues []model.Venue) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO venues (unique_key, brand, branch, address, phone, website, extra_info, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unique_key) DO UPDATE SET
			brand        = excluded.brand,
			branch       = excluded.branch,
			address      = excluded.address,
			phone        = excluded.phone,
			website      = excluded.website,
			extra_info   = excluded.extra_info,
			last_updated = excluded.last_updated`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339)
	stored := 0
	for i := range venues {
		v := &venues[i]
		if _, err := stmt.ExecContext(ctx, v.UniqueKey(), v.Brand, v.Branch, v.Address, v.Phone, v.Website, v.ExtraInfo, now); err != nil {
			return stored, eris.Wrapf(err, "sqlite: upsert venue %s", v.String())
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return stored, eris.Wrap(err, "sqlite: commit upsert")
	}
	return stored, nil
}

const venueColumns = `id, brand, branch, address, phone, website, extra_info,
	latitude, longitude, geocode_provider, resolved_address, resolved_phone,
	resolved_website, geocode_place_id, geocode_maps_url,
	menu_data, menu_source, menu_last_updated, last_updated`

func (s *SQLiteStore) ListVenues(ctx context.Context) ([]model.Venue, error) {
	return s.queryVenues(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY brand COLLATE NOCASE, branch COLLATE NOCASE`)
}

// VenuesToGeocode returns venues that have an address and, unless force is
// set, no coordinates yet. Re-running the resolver therefore skips
// already-resolved venues.
func (s *SQLiteStore) VenuesToGeocode(ctx context.Context, force bool) ([]model.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE address IS NOT NULL AND address != ''`
	if !force {
		query += ` AND (latitude IS NULL OR longitude IS NULL)`
	}
	query += ` ORDER BY id`
	return s.queryVenues(ctx, query)
}

// VenuesForMenus returns venues with at least one usable menu source and,
// unless force is set, no stored menu.
func (s *SQLiteStore) VenuesForMenus(ctx context.Context, force bool, limit int) ([]model.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE (
		(website IS NOT NULL AND website != '') OR
		(resolved_website IS NOT NULL AND resolved_website != '') OR
		(geocode_maps_url IS NOT NULL AND geocode_maps_url != '') OR
		(geocode_place_id IS NOT NULL AND geocode_place_id != ''))`
	if !force {
		query += ` AND (menu_data IS NULL OR menu_data = '')`
	}
	query += ` ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryVenues(ctx, query, args...)
}

// SaveGeocode commits one venue's resolution. Called per venue, not
// batched, so interrupted runs keep partial progress.
func (s *SQLiteStore) SaveGeocode(ctx context.Context, id int64, result model.GeocodeResult) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE venues SET
			latitude = ?, longitude = ?, geocode_provider = ?,
			resolved_address = ?, resolved_phone = ?, resolved_website = ?,
			geocode_place_id = ?, geocode_maps_url = ?, last_updated = ?
		WHERE id = ?`,
		result.Latitude, result.Longitude, result.Provider,
		result.ResolvedAddress, result.ResolvedPhone, result.ResolvedWebsite,
		result.PlaceID, result.MapsURL, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save geocode for venue %d", id)
	}
	return checkRowsAffected(res, id)
}

// SaveMenu commits an extracted menu with its provenance.
func (s *SQLiteStore) SaveMenu(ctx context.Context, id int64, doc *model.MenuDocument, source model.MenuSource) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal menu for venue %d", id)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE venues SET menu_data = ?, menu_source = ?, menu_last_updated = ? WHERE id = ?`,
		string(payload), string(source), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save menu for venue %d", id)
	}
	return checkRowsAffected(res, id)
}

// TouchMenuAttempt stamps the attempt time so reports can tell "tried,
// nothing there" from "never tried". The stamp does not exclude the venue
// from later runs; VenuesForMenus filters on menu_data alone.
func (s *SQLiteStore) TouchMenuAttempt(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE venues SET menu_last_updated = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: touch menu attempt for venue %d", id)
	}
	return checkRowsAffected(res, id)
}

func checkRowsAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: venue %d not found", id)
	}
	return nil
}

func (s *SQLiteStore) queryVenues(ctx context.Context, query string, args ...any) ([]model.Venue, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query venues")
	}
	defer rows.Close() //nolint:errcheck

	var venues []model.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, *v)
	}
	return venues, eris.Wrap(rows.Err(), "sqlite: iterate venues")
}

func scanVenue(rows *sql.Rows) (*model.Venue, error) {
	var v model.Venue
	var menuData, menuSource, menuUpdated, lastUpdated sql.NullString
	err := rows.Scan(
		&v.ID, &v.Brand, &v.Branch, &v.Address, &v.Phone, &v.Website, &v.ExtraInfo,
		&v.Latitude, &v.Longitude, &v.GeocodeProvider, &v.ResolvedAddress, &v.ResolvedPhone,
		&v.ResolvedWebsite, &v.GeocodePlaceID, &v.GeocodeMapsURL,
		&menuData, &menuSource, &menuUpdated, &lastUpdated,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan venue")
	}

	if menuData.Valid && menuData.String != "" {
		var doc model.MenuDocument
		if err := json.Unmarshal([]byte(menuData.String), &doc); err != nil {
			// Malformed persisted menu JSON reads as "no menu".
			zap.L().Warn("sqlite: malformed menu json, treating as absent",
				zap.Int64("venue_id", v.ID),
				zap.Error(err),
			)
		} else {
			v.Menu = &doc
		}
	}
	if menuSource.Valid && menuSource.String != "" {
		src := model.MenuSource(menuSource.String)
		v.MenuSource = &src
	}
	if t, ok := parseTime(menuUpdated); ok {
		v.MenuLastUpdated = &t
	}
	if t, ok := parseTime(lastUpdated); ok {
		v.LastUpdated = t
	}
	return &v, nil
}

func parseTime(ns sql.NullString) (time.Time, bool) {
	if !ns.Valid || ns.String == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
