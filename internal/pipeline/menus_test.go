package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystal-maps/venue-cli/internal/fetch"
	"github.com/crystal-maps/venue-cli/internal/model"
	"github.com/crystal-maps/venue-cli/pkg/places"
)

const menuPage = `<div class="menu-section">
	<h2>Ana Yemekler</h2>
	<ul><li>Adana Kebap ... ₺150</li></ul>
</div>`

const plainPage = `<html><body><h1>Hoş geldiniz</h1></body></html>`

// fakeFetcher serves canned pages keyed by URL and counts fetches.
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Name() string    { return "fake" }
func (f *fakeFetcher) Available() bool { return true }
func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	f.calls = append(f.calls, url)
	html, ok := f.pages[url]
	if !ok {
		return nil, eris.Errorf("no page for %s", url)
	}
	return &fetch.Page{HTML: html, FinalURL: url}, nil
}

func newOrchestratorForTest(s *fakeStore, f *fakeFetcher, client *places.Client, opts ...OrchestratorOption) *Orchestrator {
	opts = append(opts, withMenuSleep(func(time.Duration) {}))
	return NewOrchestrator(s, fetch.NewChain(f), client, true, time.Second, opts...)
}

func TestOrchestratorWebsiteFirst(t *testing.T) {
	s := newFakeStore(model.Venue{
		ID:             1,
		Brand:          "Ali Ocakbaşı",
		Website:        strp("https://ali.example"),
		GeocodeMapsURL: strp("https://maps.google.com/?cid=1"),
	})
	f := &fakeFetcher{pages: map[string]string{"https://ali.example": menuPage}}

	o := newOrchestratorForTest(s, f, nil)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, model.MenuSourceWebsite, s.sources[1])
	require.NotNil(t, s.menus[1])
	assert.Equal(t, 1, s.menus[1].ItemCount())

	// Website succeeded, so the maps URL was never fetched.
	assert.Equal(t, []string{"https://ali.example"}, f.calls)
}

func TestOrchestratorFollowsMenuLink(t *testing.T) {
	home := `<html><body><nav><a href="/menu">Menü</a></nav></body></html>`
	s := newFakeStore(model.Venue{ID: 1, Brand: "Ali Ocakbaşı", Website: strp("https://ali.example")})
	f := &fakeFetcher{pages: map[string]string{
		"https://ali.example":      home,
		"https://ali.example/menu": menuPage,
	}}

	o := newOrchestratorForTest(s, f, nil)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, model.MenuSourceWebsite, s.sources[1])
	assert.Equal(t, []string{"https://ali.example", "https://ali.example/menu"}, f.calls)
}

func TestOrchestratorFallsBackToMaps(t *testing.T) {
	mapsPage := `<html><body>
		<div class="fontBodyMedium">Adana Kebap ₺150</div>
		<div class="fontBodyMedium">Urfa Kebap ₺145</div>
	</body></html>`
	s := newFakeStore(model.Venue{
		ID:             1,
		Brand:          "Ali Ocakbaşı",
		Website:        strp("https://ali.example"),
		GeocodeMapsURL: strp("https://maps.google.com/?cid=1"),
	})
	f := &fakeFetcher{pages: map[string]string{
		"https://ali.example":            plainPage,
		"https://maps.google.com/?cid=1": mapsPage,
	}}

	o := newOrchestratorForTest(s, f, nil)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, model.MenuSourceGoogleMaps, s.sources[1])
	assert.Equal(t, 1, summary.BySource[model.MenuSourceGoogleMaps])
}

func TestOrchestratorFallsBackToPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/ChIJ123", r.URL.Path)
		w.Write([]byte(`{
			"id": "ChIJ123",
			"googleMapsUri": "https://maps.google.com/?cid=1",
			"editorialSummary": {"text": "Mangal başında klasik ocakbaşı."},
			"photos": [{"name": "places/ChIJ123/photos/abc", "widthPx": 1200, "heightPx": 800}]
		}`))
	}))
	defer srv.Close()

	s := newFakeStore(model.Venue{
		ID:             1,
		Brand:          "Ali Ocakbaşı",
		Website:        strp("https://ali.example"),
		GeocodePlaceID: strp("ChIJ123"),
	})
	f := &fakeFetcher{pages: map[string]string{"https://ali.example": plainPage}}
	client := places.NewClient("test-key", places.WithBaseURL(srv.URL))

	o := newOrchestratorForTest(s, f, client)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, model.MenuSourceGooglePlaces, s.sources[1])
	doc := s.menus[1]
	require.NotNil(t, doc)
	require.NotNil(t, doc.Summary)
	assert.Equal(t, "Mangal başında klasik ocakbaşı.", *doc.Summary)
	require.Len(t, doc.ImageMenus, 1)
	assert.Contains(t, doc.ImageMenus[0].URL, "places/ChIJ123/photos/abc")
	// The stored URL must never embed the API credential.
	assert.NotContains(t, doc.ImageMenus[0].URL, "test-key")
	assert.NotContains(t, doc.ImageMenus[0].URL, "key=")
}

func TestOrchestratorAllSourcesMissStampsAttempt(t *testing.T) {
	s := newFakeStore(model.Venue{ID: 1, Brand: "Ali Ocakbaşı", Website: strp("https://ali.example")})
	f := &fakeFetcher{pages: map[string]string{"https://ali.example": plainPage}}

	o := newOrchestratorForTest(s, f, nil)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Found)
	assert.Equal(t, 1, summary.Missed)
	assert.Equal(t, 1, s.attempts[1])
	assert.Empty(t, s.menus)
}

func TestOrchestratorSourceErrorFallsThrough(t *testing.T) {
	// Website fetch errors; maps page delivers. The chain treats a failed
	// source like a miss.
	mapsPage := `<div class="fontBodyMedium">Adana Kebap ₺150</div>`
	s := newFakeStore(model.Venue{
		ID:             1,
		Brand:          "Ali Ocakbaşı",
		Website:        strp("https://down.example"),
		GeocodeMapsURL: strp("https://maps.google.com/?cid=1"),
	})
	f := &fakeFetcher{pages: map[string]string{"https://maps.google.com/?cid=1": mapsPage}}

	o := newOrchestratorForTest(s, f, nil)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, model.MenuSourceGoogleMaps, s.sources[1])
}

func TestOrchestratorSecondRunIsIdempotent(t *testing.T) {
	s := newFakeStore(model.Venue{ID: 1, Brand: "Ali Ocakbaşı", Website: strp("https://ali.example")})
	f := &fakeFetcher{pages: map[string]string{"https://ali.example": menuPage}}

	o := newOrchestratorForTest(s, f, nil)
	_, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, f.calls, 1)

	_, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.calls, 1, "venues with stored menus must not be refetched")
}

func TestOrchestratorInterVenueDelay(t *testing.T) {
	s := newFakeStore(
		model.Venue{ID: 1, Brand: "A", Website: strp("https://a.example")},
		model.Venue{ID: 2, Brand: "B", Website: strp("https://b.example")},
		model.Venue{ID: 3, Brand: "C", Website: strp("https://c.example")},
	)
	f := &fakeFetcher{pages: map[string]string{
		"https://a.example": menuPage,
		"https://b.example": menuPage,
		"https://c.example": menuPage,
	}}

	var sleeps int
	o := NewOrchestrator(s, fetch.NewChain(f), nil, true, time.Second,
		withMenuSleep(countingSleep(&sleeps)))
	_, err := o.Run(context.Background())
	require.NoError(t, err)

	// No trailing delay after the last venue.
	assert.Equal(t, 2, sleeps)
}

func TestOrchestratorLimit(t *testing.T) {
	s := newFakeStore(
		model.Venue{ID: 1, Brand: "A", Website: strp("https://a.example")},
		model.Venue{ID: 2, Brand: "B", Website: strp("https://b.example")},
	)
	f := &fakeFetcher{pages: map[string]string{
		"https://a.example": menuPage,
		"https://b.example": menuPage,
	}}

	o := newOrchestratorForTest(s, f, nil, WithMenuLimit(1))
	summary, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Len(t, f.calls, 1)
}
