package fingerprint

import "strings"

// ClientUnknown is returned when no heuristic matched.
const ClientUnknown = "Unknown"

// clientRule matches a lowercased substring against the user-agent or the
// referer. Rules are ordered; the first match wins.
type clientRule struct {
	substr    string
	inReferer bool
	client    string
}

// defaultClientRules covers the rendering proxies and webmail hosts of the
// major providers. Provider-controlled proxies come first: their UA
// strings are unambiguous, while generic browser UAs only make sense after
// the proxies have been ruled out.
var defaultClientRules = []clientRule{
	{substr: "googleimageproxy", client: "Gmail"},
	{substr: "ggpht.com", client: "Gmail"},
	{substr: "applemail", client: "Apple Mail"},
	{substr: "com.apple.mail", client: "Apple Mail"},
	{substr: "outlook-ios", client: "Outlook"},
	{substr: "outlook-android", client: "Outlook"},
	{substr: "microsoft outlook", client: "Outlook"},
	{substr: "microsoft office", client: "Outlook"},
	{substr: "thunderbird", client: "Thunderbird"},
	{substr: "yahoomailproxy", client: "Yahoo Mail"},
	{substr: "mail.google.com", inReferer: true, client: "Gmail"},
	{substr: "mail.yahoo.com", inReferer: true, client: "Yahoo Mail"},
	{substr: "outlook.live.com", inReferer: true, client: "Outlook Web"},
	{substr: "outlook.office.com", inReferer: true, client: "Outlook Web"},
	{substr: "mail.proton.me", inReferer: true, client: "Proton Mail"},
}

// DetectClient guesses the mail client that rendered the message from the
// request's user-agent and referer. First matching rule wins; no match
// yields ClientUnknown.
func (c *Classifier) DetectClient(userAgent, referer string) string {
	ua := strings.ToLower(userAgent)
	ref := strings.ToLower(referer)
	for _, r := range c.rules {
		haystack := ua
		if r.inReferer {
			haystack = ref
		}
		if haystack != "" && strings.Contains(haystack, r.substr) {
			return r.client
		}
	}
	return ClientUnknown
}

var botPatterns = []string{
	"bot", "crawler", "spider", "slurp", "preview",
	"scanner", "validator", "monitor", "curl/", "wget/",
}

// IsBot reports whether the user-agent looks like automated traffic.
// Bot opens are still recorded; the flag only enriches the event payload.
func (c *Classifier) IsBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, p := range botPatterns {
		if strings.Contains(ua, p) {
			return true
		}
	}
	return false
}
