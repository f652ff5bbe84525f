package fingerprint

import (
	"strings"

	"github.com/ignite/mailtrace/internal/domain"
)

// ParseUserAgent derives a descriptive device profile from the raw
// user-agent string. Substring heuristics only; an empty or unrecognized
// UA yields an empty profile with DeviceType "desktop".
func ParseUserAgent(userAgent string) domain.DeviceProfile {
	ua := strings.ToLower(userAgent)
	p := domain.DeviceProfile{DeviceType: detectDeviceType(ua)}
	if userAgent == "" {
		return p
	}

	p.BrowserName, p.BrowserVersion = detectBrowser(ua)
	p.OSName, p.OSVersion = detectOS(ua)
	p.DeviceModel = detectModel(ua)
	return p
}

func detectDeviceType(ua string) string {
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

// detectBrowser order matters: Edge and Opera embed "chrome", Chrome
// embeds "safari".
func detectBrowser(ua string) (name, version string) {
	switch {
	case strings.Contains(ua, "edg/"):
		return "Edge", versionAfter(ua, "edg/")
	case strings.Contains(ua, "opr/"):
		return "Opera", versionAfter(ua, "opr/")
	case strings.Contains(ua, "firefox/"):
		return "Firefox", versionAfter(ua, "firefox/")
	case strings.Contains(ua, "chrome/"):
		return "Chrome", versionAfter(ua, "chrome/")
	case strings.Contains(ua, "safari/") && strings.Contains(ua, "version/"):
		return "Safari", versionAfter(ua, "version/")
	case strings.Contains(ua, "trident/") || strings.Contains(ua, "msie "):
		return "Internet Explorer", versionAfter(ua, "msie ")
	default:
		return "", ""
	}
}

func detectOS(ua string) (name, version string) {
	switch {
	case strings.Contains(ua, "windows nt "):
		v := versionAfter(ua, "windows nt ")
		return "Windows", windowsVersionName(v)
	case strings.Contains(ua, "iphone os "):
		return "iOS", strings.ReplaceAll(versionAfter(ua, "iphone os "), "_", ".")
	case strings.Contains(ua, "cpu os ") && strings.Contains(ua, "ipad"):
		return "iPadOS", strings.ReplaceAll(versionAfter(ua, "cpu os "), "_", ".")
	case strings.Contains(ua, "mac os x "):
		return "macOS", strings.ReplaceAll(versionAfter(ua, "mac os x "), "_", ".")
	case strings.Contains(ua, "android "):
		return "Android", versionAfter(ua, "android ")
	case strings.Contains(ua, "linux"):
		return "Linux", ""
	default:
		return "", ""
	}
}

func detectModel(ua string) string {
	switch {
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "ipad"):
		return "iPad"
	case strings.Contains(ua, "pixel"):
		return "Pixel"
	case strings.Contains(ua, "sm-"):
		return "Samsung Galaxy"
	default:
		return ""
	}
}

// versionAfter returns the token following marker up to the next
// delimiter, e.g. versionAfter("... chrome/120.0.0.0 ...", "chrome/").
func versionAfter(ua, marker string) string {
	i := strings.Index(ua, marker)
	if i < 0 {
		return ""
	}
	rest := ua[i+len(marker):]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r == ' ' || r == ';' || r == ')' || r == ','
	})
	if end == -1 {
		return rest
	}
	return rest[:end]
}

func windowsVersionName(nt string) string {
	switch nt {
	case "10.0":
		return "10"
	case "6.3":
		return "8.1"
	case "6.2":
		return "8"
	case "6.1":
		return "7"
	default:
		return nt
	}
}
