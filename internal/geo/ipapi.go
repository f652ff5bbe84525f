package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ignite/mailtrace/internal/domain"
)

// IPAPIProvider queries ip-api.com, the free-tier, coarser-precision
// stage. Unlike ipinfo it signals failure inside a 200 response via the
// "status" field.
type IPAPIProvider struct {
	baseURL string
	client  *http.Client
}

type ipapiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// NewIPAPIProvider creates the ip-api.com stage. baseURL overrides the
// production endpoint for tests; pass "" for the default.
func NewIPAPIProvider(baseURL string) *IPAPIProvider {
	if baseURL == "" {
		baseURL = "http://ip-api.com"
	}
	return &IPAPIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Name implements Provider.
func (p *IPAPIProvider) Name() string { return "ip-api" }

// Lookup implements Provider.
func (p *IPAPIProvider) Lookup(ctx context.Context, ip string) (domain.Location, bool) {
	url := fmt.Sprintf("%s/json/%s?fields=status,message,country,countryCode,regionName,city,lat,lon", p.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Location{}, false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Location{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, false
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Location{}, false
	}
	if body.Status != "success" {
		return domain.Location{}, false
	}
	if body.Country == "" && body.CountryCode == "" && body.City == "" {
		return domain.Location{}, false
	}

	country := body.Country
	if country == "" {
		country = body.CountryCode
	}
	lat, lon := body.Lat, body.Lon
	return domain.Location{
		Country:   country,
		Region:    body.RegionName,
		City:      body.City,
		Latitude:  &lat,
		Longitude: &lon,
	}, true
}
