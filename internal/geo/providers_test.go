package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPInfoLookup(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantOK     bool
		wantCity   string
		wantCoords bool
	}{
		{
			name:   "full response",
			status: http.StatusOK,
			body:   `{"city":"Mountain View","region":"California","country":"US","loc":"37.3860,-122.0838"}`,
			wantOK: true, wantCity: "Mountain View", wantCoords: true,
		},
		{
			name:   "no coordinates still usable",
			status: http.StatusOK,
			body:   `{"city":"Berlin","country":"DE"}`,
			wantOK: true, wantCity: "Berlin",
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":"quota"}`,
		},
		{
			name:   "malformed JSON",
			status: http.StatusOK,
			body:   `{"city":`,
		},
		{
			name:   "malformed loc field",
			status: http.StatusOK,
			body:   `{"city":"X","country":"US","loc":"garbage"}`,
		},
		{
			name:   "bogon flag",
			status: http.StatusOK,
			body:   `{"bogon":true}`,
		},
		{
			name:   "semantically empty",
			status: http.StatusOK,
			body:   `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "tok", r.URL.Query().Get("token"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewIPInfoProvider("tok", srv.URL)
			loc, ok := p.Lookup(context.Background(), "203.0.113.9")
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantCity, loc.City)
			if tt.wantCoords {
				require.NotNil(t, loc.Latitude)
				require.NotNil(t, loc.Longitude)
				assert.InDelta(t, 37.3860, *loc.Latitude, 0.0001)
				assert.InDelta(t, -122.0838, *loc.Longitude, 0.0001)
			}
		})
	}
}

func TestIPInfoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	p := NewIPInfoProvider("tok", srv.URL)
	_, ok := p.Lookup(context.Background(), "203.0.113.9")
	assert.False(t, ok)
}

func TestIPAPILookup(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantOK      bool
		wantCountry string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"status":"success","country":"Germany","countryCode":"DE","regionName":"Berlin","city":"Berlin","lat":52.52,"lon":13.405}`,
			wantOK: true, wantCountry: "Germany",
		},
		{
			name:   "country falls back to code",
			status: http.StatusOK,
			body:   `{"status":"success","countryCode":"DE","city":"Berlin"}`,
			wantOK: true, wantCountry: "DE",
		},
		{
			name:   "provider-level failure inside 200",
			status: http.StatusOK,
			body:   `{"status":"fail","message":"reserved range"}`,
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `oops`,
		},
		{
			name:   "malformed JSON",
			status: http.StatusOK,
			body:   `<html>`,
		},
		{
			name:   "success with nothing in it",
			status: http.StatusOK,
			body:   `{"status":"success"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewIPAPIProvider(srv.URL)
			loc, ok := p.Lookup(context.Background(), "203.0.113.9")
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCountry, loc.Country)
			}
		})
	}
}
