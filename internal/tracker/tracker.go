// Package tracker mints tracking identifiers, builds the instrumentation
// URLs embedded in outbound messages, and classifies pixel views as
// primary or forwarded opens.
package tracker

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/mailtrace/internal/domain"
)

// ForwardPolicy selects how a pixel view is attributed to a forward. The
// source systems disagreed on this, so it is configuration, not algorithm.
type ForwardPolicy string

const (
	// PolicyDistinctPixel treats only the dedicated second pixel
	// (fwd=1) as a forward signal. Default.
	PolicyDistinctPixel ForwardPolicy = "distinct-pixel"
	// PolicyRecipientMismatch additionally treats any pixel view whose
	// recipient parameter differs from the recorded primary recipient
	// as a forward-open.
	PolicyRecipientMismatch ForwardPolicy = "recipient-mismatch"
)

// ParseForwardPolicy maps a config string to a policy, defaulting to
// distinct-pixel.
func ParseForwardPolicy(s string) ForwardPolicy {
	if ForwardPolicy(s) == PolicyRecipientMismatch {
		return PolicyRecipientMismatch
	}
	return PolicyDistinctPixel
}

// InstrumentationURLs is the set of links embedded in one message.
type InstrumentationURLs struct {
	PixelURL         string
	ForwardPixelURL  string
	ClickURL         string
	ForwardReportURL string
}

// Tracker builds instrumentation URLs against a public base URL.
type Tracker struct {
	baseURL string
	policy  ForwardPolicy
	// now is swappable for deterministic cache-buster tests.
	now func() time.Time
}

// New creates a Tracker. baseURL is the public origin serving the
// tracking endpoints, e.g. "https://t.example.com".
func New(baseURL string, policy ForwardPolicy) *Tracker {
	return &Tracker{
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
		now:     time.Now,
	}
}

// Policy returns the configured forward policy.
func (t *Tracker) Policy() ForwardPolicy { return t.policy }

// Issue mints a new tracking identifier: a v4 UUID, 128 bits of
// crypto/rand, never reused.
func (t *Tracker) Issue() string {
	return uuid.New().String()
}

// BuildURLs constructs the instrumentation URLs for one message. The
// tracking ID rides as a path segment on the pixel and click URLs so it
// survives mail clients that strip query strings; the pixel query carries
// the recipient and a cache-busting timestamp so client-side image caches
// cannot swallow repeat opens.
func (t *Tracker) BuildURLs(trackingID, recipient, clickTarget string) InstrumentationURLs {
	cb := fmt.Sprintf("%d", t.now().UnixNano())

	pixelQ := url.Values{}
	pixelQ.Set("r", recipient)
	pixelQ.Set("cb", cb)

	fwdQ := url.Values{}
	fwdQ.Set("r", recipient)
	fwdQ.Set("fwd", "1")
	fwdQ.Set("cb", cb)

	clickQ := url.Values{}
	clickQ.Set("url", clickTarget)

	return InstrumentationURLs{
		PixelURL:         fmt.Sprintf("%s/pixel/%s?%s", t.baseURL, trackingID, pixelQ.Encode()),
		ForwardPixelURL:  fmt.Sprintf("%s/pixel/%s?%s", t.baseURL, trackingID, fwdQ.Encode()),
		ClickURL:         fmt.Sprintf("%s/click/%s?%s", t.baseURL, trackingID, clickQ.Encode()),
		ForwardReportURL: fmt.Sprintf("%s/report-forward/%s", t.baseURL, trackingID),
	}
}

// ClickURL builds a tracked redirect URL for a single destination.
func (t *Tracker) ClickURL(trackingID, destination string) string {
	q := url.Values{}
	q.Set("url", destination)
	return fmt.Sprintf("%s/click/%s?%s", t.baseURL, trackingID, q.Encode())
}

// InjectTracking instruments an HTML message body: both pixels go in
// before </body> (the forward pixel only under the distinct-pixel
// policy), and every absolute link is rewritten to a tracked redirect.
func (t *Tracker) InjectTracking(html, trackingID, recipient string) string {
	urls := t.BuildURLs(trackingID, recipient, "")

	pixels := fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none" alt="" />`, urls.PixelURL)
	if t.policy == PolicyDistinctPixel {
		pixels += fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none" alt="" />`, urls.ForwardPixelURL)
	}

	if strings.Contains(html, "</body>") {
		html = strings.Replace(html, "</body>", pixels+"</body>", 1)
	} else {
		html += pixels
	}

	return t.rewriteLinks(html, trackingID)
}

// rewriteLinks replaces href="http..." targets with tracked click URLs,
// leaving already-tracked links alone.
func (t *Tracker) rewriteLinks(html, trackingID string) string {
	var b strings.Builder
	rest := html
	for {
		i := strings.Index(rest, `href="http`)
		if i == -1 {
			b.WriteString(rest)
			break
		}
		start := i + len(`href="`)
		end := strings.Index(rest[start:], `"`)
		if end == -1 {
			b.WriteString(rest)
			break
		}

		target := rest[start : start+end]
		b.WriteString(rest[:start])
		if strings.Contains(target, "/click/") || strings.Contains(target, "/pixel/") {
			b.WriteString(target)
		} else {
			b.WriteString(t.ClickURL(trackingID, target))
		}
		rest = rest[start+end:]
	}
	return b.String()
}

// ClassifyOpen decides whether a pixel view is a primary open or a
// forward-open under the configured policy. primaryRecipient is the
// recipient recorded on the sent event ("" when unknown); reqRecipient
// and fwdFlag come off the pixel request. The second return value is the
// original recipient to attribute on a forward-open.
func (t *Tracker) ClassifyOpen(primaryRecipient, reqRecipient string, fwdFlag bool) (domain.EventType, string) {
	if fwdFlag {
		return domain.EventForwardOpen, reqRecipient
	}
	if t.policy == PolicyRecipientMismatch &&
		reqRecipient != "" && primaryRecipient != "" &&
		!strings.EqualFold(reqRecipient, primaryRecipient) {
		return domain.EventForwardOpen, primaryRecipient
	}
	return domain.EventOpen, ""
}
