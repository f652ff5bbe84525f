package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/eventstore"
	"github.com/ignite/mailtrace/internal/fingerprint"
	"github.com/ignite/mailtrace/internal/geo"
	"github.com/ignite/mailtrace/internal/mailer"
	"github.com/ignite/mailtrace/internal/metrics"
	"github.com/ignite/mailtrace/internal/pkg/logger"
	"github.com/ignite/mailtrace/internal/tracker"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handlers orchestrates the tracking components behind the HTTP surface.
type Handlers struct {
	store      eventstore.Store
	resolver   *geo.Resolver
	classifier *fingerprint.Classifier
	tracker    *tracker.Tracker
	sender     mailer.Sender
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewHandlers wires the pipeline. sender may be nil when outbound mail is
// not configured; metrics may be nil in tests.
func NewHandlers(
	store eventstore.Store,
	resolver *geo.Resolver,
	classifier *fingerprint.Classifier,
	trk *tracker.Tracker,
	sender mailer.Sender,
	m *metrics.Metrics,
	lg *logger.Logger,
) *Handlers {
	if lg == nil {
		lg = logger.Default()
	}
	return &Handlers{
		store:      store,
		resolver:   resolver,
		classifier: classifier,
		tracker:    trk,
		sender:     sender,
		metrics:    m,
		log:        lg,
	}
}

// HandlePixel serves the 1x1 tracking pixel. The image and its
// cache-defeating headers go out no matter what happens inside
// instrumentation; a recipient must never see tracking fail.
func (h *Handlers) HandlePixel(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")
	q := r.URL.Query()

	h.recordEngagement(r, trackingID, "", q.Get("r"), q.Get("fwd") == "1", false)
	h.servePixel(w)
}

// HandleClick records the click and redirects. The redirect happens even
// if recording fails.
func (h *Handlers) HandleClick(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")
	dest := r.URL.Query().Get("url")
	if dest == "" {
		dest = "/"
	}

	h.recordEngagement(r, trackingID, dest, "", false, true)
	http.Redirect(w, r, dest, http.StatusFound)
}

// recordEngagement appends an open, forward-open or click event,
// best-effort. Every failure mode (resolver, classifier, store, even a
// panic) ends here; the caller's response is already decided.
func (h *Handlers) recordEngagement(r *http.Request, trackingID, clickTarget, reqRecipient string, fwdFlag, isClick bool) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("instrumentation panic suppressed", "tracking_id", trackingID, "panic", rec)
		}
	}()

	if trackingID == "" {
		return
	}

	ctx := r.Context()
	ip := clientIP(r)
	ua := r.UserAgent()
	referer := r.Referer()

	eng := &domain.EngagementInfo{
		IPAddress: ip,
		UserAgent: ua,
		Referer:   referer,
		Location:  h.resolver.Resolve(ctx, ip),
		Device:    fingerprint.ParseUserAgent(ua),
		Client:    h.classifier.DetectClient(ua, referer),
		Bot:       h.classifier.IsBot(ua),
	}

	eventType := domain.EventClick
	if isClick {
		eng.TargetURL = clickTarget
	} else {
		primary := ""
		if h.tracker.Policy() == tracker.PolicyRecipientMismatch {
			primary = h.primaryRecipient(ctx, trackingID)
		}
		var original string
		eventType, original = h.tracker.ClassifyOpen(primary, reqRecipient, fwdFlag)
		eng.OriginalRecipient = original
	}

	evt := domain.Event{
		TrackingID: trackingID,
		Timestamp:  time.Now().UTC(),
		Type:       eventType,
		Engagement: eng,
	}
	h.append(ctx, evt)

	h.log.Info("engagement recorded",
		"tracking_id", trackingID,
		"type", string(eventType),
		"client", eng.Client,
		"country", eng.Location.Country,
	)
}

// primaryRecipient looks up the recipient on the sent event, if the log
// has one ("" means unknown origin, which older logs may be).
func (h *Handlers) primaryRecipient(ctx context.Context, trackingID string) string {
	events, err := h.store.Query(ctx, trackingID)
	if err != nil {
		return ""
	}
	for _, evt := range events {
		if evt.Type == domain.EventSent && evt.Sent != nil {
			return evt.Sent.RecipientEmail
		}
	}
	return ""
}

// append records the event, logging rather than surfacing store failures.
func (h *Handlers) append(ctx context.Context, evt domain.Event) {
	if err := h.store.Append(ctx, evt); err != nil {
		h.log.Error("event append failed", "tracking_id", evt.TrackingID, "type", string(evt.Type), "error", err.Error())
		if h.metrics != nil {
			h.metrics.AppendFailure()
		}
		return
	}
	if h.metrics != nil {
		h.metrics.RecordEvent(evt.Type)
	}
}

func (h *Handlers) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Content-Length", "35")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelGIF)
}

// HandleGetTracking returns all events for one tracking ID.
func (h *Handlers) HandleGetTracking(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")

	events, err := h.store.Query(r.Context(), trackingID)
	if errors.Is(err, eventstore.ErrNotFound) {
		respondError(w, http.StatusNotFound, "tracking id not found")
		return
	}
	if err != nil {
		h.log.Error("tracking query failed", "tracking_id", trackingID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  events,
	})
}

// HandleTrackingLogs dumps the full event log. Administrative.
func (h *Handlers) HandleTrackingLogs(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.All(r.Context())
	if err != nil {
		h.log.Error("tracking log dump failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(events),
		"logs":    events,
	})
}

// HandleHealth reports liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// clientIP strips the port from the request's remote address. Behind the
// RealIP middleware RemoteAddr already carries the forwarded client IP.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSpace(addr)
}
