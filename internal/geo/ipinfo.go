package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ignite/mailtrace/internal/domain"
)

// IPInfoProvider queries ipinfo.io, the token-gated, highest-precision
// stage of the chain.
type IPInfoProvider struct {
	token   string
	baseURL string
	client  *http.Client
}

// ipinfoResponse is the subset of the ipinfo.io payload we consume.
// Coordinates arrive as a single "lat,lon" string.
type ipinfoResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Loc     string `json:"loc"`
	Bogon   bool   `json:"bogon"`
}

// NewIPInfoProvider creates the ipinfo.io stage. baseURL overrides the
// production endpoint for tests; pass "" for the default.
func NewIPInfoProvider(token, baseURL string) *IPInfoProvider {
	if baseURL == "" {
		baseURL = "https://ipinfo.io"
	}
	return &IPInfoProvider{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Name implements Provider.
func (p *IPInfoProvider) Name() string { return "ipinfo" }

// Lookup implements Provider. Any transport error, non-200 status or
// malformed body is a stage miss; no retry.
func (p *IPInfoProvider) Lookup(ctx context.Context, ip string) (domain.Location, bool) {
	url := fmt.Sprintf("%s/%s?token=%s", p.baseURL, ip, p.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Location{}, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Location{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, false
	}

	var body ipinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Location{}, false
	}
	if body.Bogon {
		return domain.Location{}, false
	}
	if body.Country == "" && body.City == "" {
		return domain.Location{}, false
	}

	loc := domain.Location{
		Country: body.Country,
		Region:  body.Region,
		City:    body.City,
	}
	if body.Loc != "" {
		latStr, lonStr, found := strings.Cut(body.Loc, ",")
		if !found {
			return domain.Location{}, false
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if errLat != nil || errLon != nil {
			return domain.Location{}, false
		}
		loc.Latitude = &lat
		loc.Longitude = &lon
	}
	return loc, true
}
