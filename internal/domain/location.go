package domain

// Unknown is the placeholder for location fields no provider could fill.
const Unknown = "Unknown"

// Location is a best-effort geolocation of a request IP. Every field may
// be the Unknown placeholder (or nil coordinates); that is a normal
// terminal state after the provider chain exhausts, not an error.
type Location struct {
	Country         string   `json:"country"`
	Region          string   `json:"region"`
	City            string   `json:"city"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	IsProxyInferred bool     `json:"is_proxy_inferred,omitempty"`
	// Source names the provider stage that produced this location.
	Source string `json:"source,omitempty"`
}

// UnknownLocation is the universal fallback when every stage exhausts.
func UnknownLocation() Location {
	return Location{Country: Unknown, Region: Unknown, City: Unknown}
}

// DeviceProfile describes the rendering device derived from the raw
// user-agent string. Purely descriptive; never drives control flow.
type DeviceProfile struct {
	BrowserName    string `json:"browser_name,omitempty"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OSName         string `json:"os_name,omitempty"`
	OSVersion      string `json:"os_version,omitempty"`
	DeviceModel    string `json:"device_model,omitempty"`
	DeviceType     string `json:"device_type,omitempty"`
}
