package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystal-maps/venue-cli/pkg/places"
)

func TestGoogleGeocode(t *testing.T) {
	t.Run("full canonical field set", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/places:searchText", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
			assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.googleMapsUri")

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ali Ocakbaşı, Kadıköy, Türkiye", body["textQuery"])

			_, _ = w.Write([]byte(`{"places":[{
				"id":"ChIJabc123",
				"formattedAddress":"Caferağa Mah. Moda Cad. No:5, Kadıköy",
				"internationalPhoneNumber":"+90 216 111 11 11",
				"websiteUri":"https://aliocakbasi.example",
				"googleMapsUri":"https://maps.google.com/?cid=42",
				"location":{"latitude":40.9876,"longitude":29.0301}
			}]}`))
		}))
		defer srv.Close()

		client := places.NewClient("test-key", places.WithBaseURL(srv.URL))
		p := NewGoogleWithClient(client)

		result, err := p.Geocode(context.Background(), "Ali Ocakbaşı, Kadıköy, Türkiye")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.InDelta(t, 40.9876, result.Latitude, 1e-6)
		assert.InDelta(t, 29.0301, result.Longitude, 1e-6)
		require.NotNil(t, result.ResolvedAddress)
		require.NotNil(t, result.ResolvedPhone)
		require.NotNil(t, result.ResolvedWebsite)
		require.NotNil(t, result.PlaceID)
		require.NotNil(t, result.MapsURL)
		assert.Equal(t, "ChIJabc123", *result.PlaceID)
		assert.Equal(t, "https://maps.google.com/?cid=42", *result.MapsURL)
	})

	t.Run("national phone fallback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"places":[{
				"id":"ChIJdef456",
				"nationalPhoneNumber":"0216 222 22 22",
				"location":{"latitude":40.1,"longitude":29.1}
			}]}`))
		}))
		defer srv.Close()

		p := NewGoogleWithClient(places.NewClient("k", places.WithBaseURL(srv.URL)))
		result, err := p.Geocode(context.Background(), "anything")
		require.NoError(t, err)
		require.NotNil(t, result)
		require.NotNil(t, result.ResolvedPhone)
		assert.Equal(t, "0216 222 22 22", *result.ResolvedPhone)
	})

	t.Run("no places means not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		p := NewGoogleWithClient(places.NewClient("k", places.WithBaseURL(srv.URL)))
		result, err := p.Geocode(context.Background(), "nowhere")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("api error is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"message":"API key invalid"}}`))
		}))
		defer srv.Close()

		p := NewGoogleWithClient(places.NewClient("bad", places.WithBaseURL(srv.URL)))
		_, err := p.Geocode(context.Background(), "anything")
		assert.Error(t, err)
	})
}
