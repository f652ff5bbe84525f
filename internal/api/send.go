package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/mailer"
)

type sendRequest struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	HTMLBody    string `json:"html_body"`
	TextBody    string `json:"text_body"`
	ClickTarget string `json:"click_target"`
}

// HandleSend issues a tracking ID, instruments the message and delivers
// it. The sent event is recorded only after the sender confirms delivery;
// a failed send records nothing.
func (h *Handlers) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var missing []string
	if strings.TrimSpace(req.To) == "" {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(req.Subject) == "" {
		missing = append(missing, "subject")
	}
	if len(missing) > 0 {
		respondError(w, http.StatusBadRequest, "missing required field(s): "+strings.Join(missing, ", "))
		return
	}

	if h.sender == nil {
		respondError(w, http.StatusServiceUnavailable, "mail sending is not configured")
		return
	}

	trackingID := h.tracker.Issue()
	html := req.HTMLBody
	if html != "" {
		html = h.tracker.InjectTracking(html, trackingID, req.To)
	}

	deliveryID, err := h.sender.Send(r.Context(), mailer.Message{
		To:       req.To,
		Subject:  req.Subject,
		HTMLBody: html,
		TextBody: req.TextBody,
	})
	if err != nil {
		h.log.Error("send failed", "recipient_email", req.To, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "send failed: "+err.Error())
		return
	}

	h.append(r.Context(), domain.Event{
		TrackingID: trackingID,
		Timestamp:  time.Now().UTC(),
		Type:       domain.EventSent,
		Sent: &domain.SentInfo{
			RecipientEmail: req.To,
			Subject:        req.Subject,
			DeliveryID:     deliveryID,
		},
	})

	h.log.Info("message sent", "tracking_id", trackingID, "recipient_email", req.To, "delivery_id", deliveryID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"tracking_id": trackingID,
		"delivery_id": deliveryID,
	})
}
