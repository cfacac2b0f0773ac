package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	t.Run("builds chain in configured order", func(t *testing.T) {
		providers := FromConfig([]string{"nominatim", "arcgis", "photon"}, Options{})
		require.Len(t, providers, 3)
		assert.Equal(t, "nominatim", providers[0].Name())
		assert.Equal(t, "arcgis", providers[1].Name())
		assert.Equal(t, "photon", providers[2].Name())
	})

	t.Run("skips unknown names", func(t *testing.T) {
		providers := FromConfig([]string{"arcgis", "mapzen"}, Options{})
		require.Len(t, providers, 1)
		assert.Equal(t, "arcgis", providers[0].Name())
	})

	t.Run("skips google without api key", func(t *testing.T) {
		providers := FromConfig([]string{"google", "photon"}, Options{})
		require.Len(t, providers, 1)
		assert.Equal(t, "photon", providers[0].Name())
	})

	t.Run("includes google with api key", func(t *testing.T) {
		providers := FromConfig([]string{"google"}, Options{GoogleAPIKey: "test-key"})
		require.Len(t, providers, 1)
		assert.Equal(t, "google", providers[0].Name())
	})

	t.Run("ignores blank and trims names", func(t *testing.T) {
		providers := FromConfig([]string{" nominatim ", "", "Photon"}, Options{})
		require.Len(t, providers, 2)
		assert.Equal(t, "nominatim", providers[0].Name())
		assert.Equal(t, "photon", providers[1].Name())
	})
}

func TestChainMinDelay(t *testing.T) {
	withNominatim := FromConfig([]string{"arcgis", "nominatim"}, Options{})
	assert.Equal(t, time.Second, ChainMinDelay(withNominatim))

	withoutNominatim := FromConfig([]string{"arcgis", "photon"}, Options{})
	assert.Zero(t, ChainMinDelay(withoutNominatim))
}

func TestNominatimGeocode(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Ali Ocakbaşı, Türkiye", r.URL.Query().Get("q"))
			assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
			assert.Contains(t, r.Header.Get("User-Agent"), "CrystalVenues/1.0")
			_, _ = w.Write([]byte(`[{"lat":"41.0369","lon":"28.9850","display_name":"Asmalı Mescit, Beyoğlu, İstanbul, Türkiye"}]`))
		}))
		defer srv.Close()

		p := NewNominatim(Options{NominatimEmail: "ops@example.com"})
		p.baseURL = srv.URL

		result, err := p.Geocode(context.Background(), "Ali Ocakbaşı, Türkiye")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.InDelta(t, 41.0369, result.Latitude, 1e-6)
		assert.InDelta(t, 28.9850, result.Longitude, 1e-6)
		require.NotNil(t, result.ResolvedAddress)
		assert.Contains(t, *result.ResolvedAddress, "Beyoğlu")
	})

	t.Run("empty result is not found, not error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		p := NewNominatim(Options{})
		p.baseURL = srv.URL

		result, err := p.Geocode(context.Background(), "nowhere")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("http error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		p := NewNominatim(Options{})
		p.baseURL = srv.URL

		_, err := p.Geocode(context.Background(), "anything")
		assert.Error(t, err)
	})
}

func TestArcGISGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("f"))
		assert.NotEmpty(t, r.URL.Query().Get("singleLine"))
		_, _ = w.Write([]byte(`{"candidates":[{"address":"Moda Cad 5, Kadıköy","location":{"x":29.0301,"y":40.9876}}]}`))
	}))
	defer srv.Close()

	p := NewArcGIS(Options{})
	p.baseURL = srv.URL

	result, err := p.Geocode(context.Background(), "Moda Cad 5, Kadıköy, Türkiye")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.InDelta(t, 40.9876, result.Latitude, 1e-6)
	assert.InDelta(t, 29.0301, result.Longitude, 1e-6)
}

func TestPhotonGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Turkish is not in Photon's language allowlist.
		assert.Equal(t, "default", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[29.0301,40.9876]},"properties":{"name":"Ali Ocakbaşı","city":"İstanbul","country":"Türkiye"}}]}`))
	}))
	defer srv.Close()

	p := NewPhoton(Options{Language: "tr"})
	p.baseURL = srv.URL

	result, err := p.Geocode(context.Background(), "Ali Ocakbaşı")
	require.NoError(t, err)
	require.NotNil(t, result)
	// GeoJSON order is lon, lat.
	assert.InDelta(t, 40.9876, result.Latitude, 1e-6)
	assert.InDelta(t, 29.0301, result.Longitude, 1e-6)
	require.NotNil(t, result.ResolvedAddress)
	assert.Equal(t, "Ali Ocakbaşı, İstanbul, Türkiye", *result.ResolvedAddress)
}
