package fingerprint

import (
	"testing"

	"github.com/ignite/mailtrace/internal/domain"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want domain.DeviceProfile
	}{
		{
			name: "chrome on windows 10",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: domain.DeviceProfile{
				BrowserName: "Chrome", BrowserVersion: "120.0.0.0",
				OSName: "Windows", OSVersion: "10",
				DeviceType: "desktop",
			},
		},
		{
			name: "safari on iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			want: domain.DeviceProfile{
				BrowserName: "Safari", BrowserVersion: "17.1",
				OSName: "iOS", OSVersion: "17.1",
				DeviceModel: "iPhone", DeviceType: "mobile",
			},
		},
		{
			name: "firefox on macos",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: domain.DeviceProfile{
				BrowserName: "Firefox", BrowserVersion: "121.0",
				OSName: "macOS", OSVersion: "10.15",
				DeviceType: "desktop",
			},
		},
		{
			name: "edge embeds chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			want: domain.DeviceProfile{
				BrowserName: "Edge", BrowserVersion: "120.0.2210.91",
				OSName: "Windows", OSVersion: "10",
				DeviceType: "desktop",
			},
		},
		{
			name: "android tablet",
			ua:   "Mozilla/5.0 (Linux; Android 13; Tablet; SM-X200) AppleWebKit/537.36 Chrome/118.0.0.0 Safari/537.36",
			want: domain.DeviceProfile{
				BrowserName: "Chrome", BrowserVersion: "118.0.0.0",
				OSName: "Android", OSVersion: "13",
				DeviceModel: "Samsung Galaxy", DeviceType: "tablet",
			},
		},
		{
			name: "empty UA",
			ua:   "",
			want: domain.DeviceProfile{DeviceType: "desktop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUserAgent(tt.ua)
			if got != tt.want {
				t.Errorf("ParseUserAgent(%q)\n got  %+v\n want %+v", tt.ua, got, tt.want)
			}
		})
	}
}
