package fingerprint

import "testing"

func TestDetectClient(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		name    string
		ua      string
		referer string
		want    string
	}{
		{
			name: "gmail image proxy",
			ua:   "Mozilla/5.0 (Windows NT 5.1; rv:11.0) Gecko Firefox/11.0 (via ggpht.com GoogleImageProxy)",
			want: "Gmail",
		},
		{
			name:    "gmail webmail referer",
			ua:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
			referer: "https://mail.google.com/mail/u/0/",
			want:    "Gmail",
		},
		{
			name: "outlook desktop",
			ua:   "Mozilla/4.0 (compatible; MSIE 7.0; Windows NT 10.0; Microsoft Outlook 16.0.4266)",
			want: "Outlook",
		},
		{
			name:    "outlook web referer",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			referer: "https://outlook.live.com/mail/",
			want:    "Outlook Web",
		},
		{
			name: "thunderbird",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:102.0) Gecko/20100101 Thunderbird/102.13.0",
			want: "Thunderbird",
		},
		{
			name:    "yahoo webmail referer",
			ua:      "Mozilla/5.0",
			referer: "https://mail.yahoo.com/d/folders/1",
			want:    "Yahoo Mail",
		},
		{
			name: "plain browser is unknown",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			want: ClientUnknown,
		},
		{
			name: "empty inputs",
			want: ClientUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.DetectClient(tt.ua, tt.referer); got != tt.want {
				t.Errorf("DetectClient(%q, %q) = %q, want %q", tt.ua, tt.referer, got, tt.want)
			}
		})
	}
}

func TestIsBot(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"curl/8.4.0", true},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := c.IsBot(tt.ua); got != tt.want {
			t.Errorf("IsBot(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}
}
