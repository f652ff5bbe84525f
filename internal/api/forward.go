package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/tracker"
)

// HandleReportForward records a human-confirmed forward. Unlike the pixel
// signal this one is authoritative but low-volume; both are surfaced as
// distinct event types so downstream analysis can weight them.
func (h *Handlers) HandleReportForward(w http.ResponseWriter, r *http.Request) {
	var report domain.ForwardReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := tracker.ValidateForwardReport(report); err != nil {
		var verr *tracker.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	method := report.Method
	if method == "" {
		method = "manual"
	}
	evt := domain.Event{
		TrackingID: report.TrackingID,
		Timestamp:  time.Now().UTC(),
		Type:       domain.EventForwardReport,
		Report: &domain.ForwardReportInfo{
			ForwardedTo:   report.ForwardedTo,
			ForwardedFrom: report.ForwardedFrom,
			Method:        method,
		},
	}

	if err := h.store.Append(r.Context(), evt); err != nil {
		h.log.Error("forward report append failed", "tracking_id", report.TrackingID, "error", err.Error())
		if h.metrics != nil {
			h.metrics.AppendFailure()
		}
		respondError(w, http.StatusInternalServerError, "failed to record forward report")
		return
	}
	if h.metrics != nil {
		h.metrics.RecordEvent(domain.EventForwardReport)
	}

	h.log.Info("forward report recorded",
		"tracking_id", report.TrackingID,
		"forwarded_to", report.ForwardedTo,
	)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"event":   evt,
	})
}

// HandleForwardForm renders the confirmation form a forwarded recipient
// lands on. Presentation only; the POST above does the work.
func (h *Handlers) HandleForwardForm(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;max-width:480px;margin:50px auto;">
	<h1>Confirm forwarded email</h1>
	<p>Let the sender know this message reached you as a forward.</p>
	<form id="fwd">
		<label>Your email<br/><input type="email" name="forwarded_to" required /></label><br/><br/>
		<label>Forwarded by (optional)<br/><input type="email" name="forwarded_from" /></label><br/><br/>
		<button type="submit">Confirm</button>
	</form>
	<p id="result"></p>
	<script>
	document.getElementById("fwd").addEventListener("submit", function(e) {
		e.preventDefault();
		var f = e.target;
		fetch("/report-forward", {
			method: "POST",
			headers: {"Content-Type": "application/json"},
			body: JSON.stringify({
				tracking_id: %q,
				forwarded_to: f.forwarded_to.value,
				forwarded_from: f.forwarded_from.value,
				method: "form"
			})
		}).then(function(r) { return r.json(); }).then(function(data) {
			document.getElementById("result").textContent =
				data.success ? "Thanks, your confirmation was recorded." : (data.error || "Something went wrong.");
		});
	});
	</script>
</body>
</html>`, trackingID)
}
