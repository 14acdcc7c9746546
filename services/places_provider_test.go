package services

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-places/models"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPlacesClientSendsLocationAndRadius(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"location": q.Get("location"),
			"radius":   q.Get("radius"),
			"key":      q.Get("key"),
			"type":     q.Get("type"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewPlacesClient(srv.URL+"/nearbysearch/json?type=cafe", "api-key", time.Second)
	body, err := client.NearbySearch(context.Background(), models.Coordinate{Latitude: 1.5, Longitude: 103.25}, 1000)
	require.NoError(t, err)

	assert.JSONEq(t, `{"results": []}`, string(body))
	assert.Equal(t, "1.500000,103.250000", gotQuery["location"])
	assert.Equal(t, "1000", gotQuery["radius"])
	assert.Equal(t, "api-key", gotQuery["key"])
	assert.Equal(t, "cafe", gotQuery["type"], "existing query parameters are kept")
}

func TestPlacesClientFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewPlacesClient(srv.URL, "", time.Second).NearbySearch(context.Background(), models.Coordinate{}, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPlacesClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewPlacesClient(srv.URL, "", 5*time.Second).NearbySearch(ctx, models.Coordinate{}, 1000)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPlacesClientRejectsOversizedPayload(t *testing.T) {
	body := `{"results": [` + strings.Repeat(" ", 64) + `]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewPlacesClient(srv.URL, "", time.Second)
	client.maxBytes = int64(len(body)) - 1
	_, err := client.NearbySearch(context.Background(), models.Coordinate{}, 1000)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	client.maxBytes = int64(len(body))
	got, err := client.NearbySearch(context.Background(), models.Coordinate{}, 1000)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}
