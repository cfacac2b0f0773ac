package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crystal-maps/venue-cli/internal/fetch"
	"github.com/crystal-maps/venue-cli/internal/menu"
	"github.com/crystal-maps/venue-cli/internal/model"
	"github.com/crystal-maps/venue-cli/internal/store"
	"github.com/crystal-maps/venue-cli/pkg/places"
)

// menuSource is one place a menu can come from. Scrape returns (nil, nil)
// when the venue lacks what the source needs or no menu is found there.
type menuSource interface {
	Name() model.MenuSource
	Scrape(ctx context.Context, v model.Venue) (*model.MenuDocument, error)
}

// Orchestrator tries each menu source in order per venue and stores the
// first hit with its provenance.
type Orchestrator struct {
	store   store.Store
	sources []menuSource
	delay   time.Duration
	force   bool
	limit   int

	sleep func(time.Duration)
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithMenuForce re-scrapes venues that already have a stored menu.
func WithMenuForce(force bool) OrchestratorOption {
	return func(o *Orchestrator) { o.force = force }
}

// WithMenuLimit caps how many venues one run processes.
func WithMenuLimit(limit int) OrchestratorOption {
	return func(o *Orchestrator) { o.limit = limit }
}

func withMenuSleep(fn func(time.Duration)) OrchestratorOption {
	return func(o *Orchestrator) { o.sleep = fn }
}

// NewOrchestrator builds the orchestrator with the standard source order:
// the venue's own website, then its Google Maps page, then the Places API.
// placesClient may be nil, which disables the last source.
func NewOrchestrator(s store.Store, fetcher *fetch.Chain, placesClient *places.Client, followLinks bool, delay time.Duration, opts ...OrchestratorOption) *Orchestrator {
	sources := []menuSource{
		&websiteSource{fetcher: fetcher, followLinks: followLinks},
		&mapsSource{fetcher: fetcher},
	}
	if placesClient != nil {
		sources = append(sources, &placesSource{client: placesClient})
	}

	o := &Orchestrator{
		store:   s,
		sources: sources,
		delay:   delay,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// MenuSummary reports one scrape run.
type MenuSummary struct {
	Total    int
	Found    int
	Missed   int
	BySource map[model.MenuSource]int
}

// Run scrapes menus for every pending venue. Whether or not a menu turns
// up, the attempt is stamped so operators can tell "never tried" from
// "tried and found nothing".
func (o *Orchestrator) Run(ctx context.Context) (*MenuSummary, error) {
	venues, err := o.store.VenuesForMenus(ctx, o.force, o.limit)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load venues for menus")
	}

	summary := &MenuSummary{Total: len(venues), BySource: make(map[model.MenuSource]int)}
	for i, v := range venues {
		if err := ctx.Err(); err != nil {
			return summary, eris.Wrap(err, "pipeline: menu scrape interrupted")
		}

		doc, source := o.scrapeOne(ctx, v)
		if doc != nil {
			if err := o.store.SaveMenu(ctx, v.ID, doc, source); err != nil {
				return summary, eris.Wrapf(err, "pipeline: save menu for venue %d", v.ID)
			}
			summary.Found++
			summary.BySource[source]++
			zap.L().Info("menu found",
				zap.String("venue", v.String()),
				zap.String("source", string(source)),
				zap.Int("items", doc.ItemCount()),
			)
		} else {
			if err := o.store.TouchMenuAttempt(ctx, v.ID); err != nil {
				return summary, eris.Wrapf(err, "pipeline: mark menu attempt for venue %d", v.ID)
			}
			summary.Missed++
			zap.L().Info("no menu found", zap.String("venue", v.String()))
		}

		if o.delay > 0 && i < len(venues)-1 {
			o.sleep(o.delay)
		}
	}

	return summary, nil
}

// scrapeOne walks the source chain and stops at the first menu.
func (o *Orchestrator) scrapeOne(ctx context.Context, v model.Venue) (*model.MenuDocument, model.MenuSource) {
	for _, src := range o.sources {
		doc, err := src.Scrape(ctx, v)
		if err != nil {
			zap.L().Debug("menu source failed, trying next",
				zap.String("venue", v.String()),
				zap.String("source", string(src.Name())),
				zap.Error(err),
			)
			continue
		}
		if doc != nil {
			return doc, src.Name()
		}
	}
	return nil, ""
}

// websiteSource scrapes the venue's own website, optionally following one
// in-site menu link when the landing page has no menu content.
type websiteSource struct {
	fetcher     *fetch.Chain
	followLinks bool
}

func (s *websiteSource) Name() model.MenuSource { return model.MenuSourceWebsite }

func (s *websiteSource) Scrape(ctx context.Context, v model.Venue) (*model.MenuDocument, error) {
	site := v.DisplayWebsite()
	if site == nil {
		return nil, nil
	}

	page, err := s.fetcher.Fetch(ctx, *site)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch website %s", *site)
	}

	doc, err := menu.Extract(page.HTML, page.FinalURL)
	if err != nil {
		return nil, err
	}
	if doc != nil || !s.followLinks {
		return doc, nil
	}

	// One hop only. A homepage that links to a menu page is common; deeper
	// crawling is not worth the request budget.
	link := menu.FindMenuLink(page.HTML, page.FinalURL)
	if link == "" {
		return nil, nil
	}
	linked, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch menu page %s", link)
	}
	return menu.Extract(linked.HTML, linked.FinalURL)
}

// mapsSource scrapes the venue's Google Maps page. The page is script
// rendered, so this only yields anything when the render fetcher is in the
// chain.
type mapsSource struct {
	fetcher *fetch.Chain
}

func (s *mapsSource) Name() model.MenuSource { return model.MenuSourceGoogleMaps }

func (s *mapsSource) Scrape(ctx context.Context, v model.Venue) (*model.MenuDocument, error) {
	if v.GeocodeMapsURL == nil || *v.GeocodeMapsURL == "" {
		return nil, nil
	}

	page, err := s.fetcher.Fetch(ctx, *v.GeocodeMapsURL)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch maps page %s", *v.GeocodeMapsURL)
	}
	return menu.ExtractMaps(page.HTML, *v.GeocodeMapsURL)
}

// placesSource asks the Places API for whatever menu-adjacent signal it
// has: an editorial summary and photos. Thin, but better than nothing when
// scraping comes up empty.
type placesSource struct {
	client *places.Client
}

func (s *placesSource) Name() model.MenuSource { return model.MenuSourceGooglePlaces }

func (s *placesSource) Scrape(ctx context.Context, v model.Venue) (*model.MenuDocument, error) {
	if v.GeocodePlaceID == nil || *v.GeocodePlaceID == "" {
		return nil, nil
	}

	details, err := s.client.Lookup(ctx, *v.GeocodePlaceID)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: place details for %s", *v.GeocodePlaceID)
	}
	if details == nil {
		return nil, nil
	}

	doc := &model.MenuDocument{
		Source: model.MenuSourceGooglePlaces,
		URL:    details.GoogleMapsURI,
	}
	if details.EditorialSummary != nil && details.EditorialSummary.Text != "" {
		summary := details.EditorialSummary.Text
		doc.Summary = &summary
	}
	// Persisted photo URLs carry no API key; the credential stays out of
	// the store and the exported HTML.
	for _, photo := range details.Photos {
		doc.ImageMenus = append(doc.ImageMenus, model.MenuLink{
			URL:   photo.MediaURL(0),
			Label: "Mekan fotoğrafı",
		})
	}

	if !doc.Present() {
		return nil, nil
	}
	return doc, nil
}
