package domain

import "time"

// EventType enumerates the kinds of engagement events in the tracking log.
type EventType string

const (
	EventSent          EventType = "sent"
	EventOpen          EventType = "open"
	EventForwardOpen   EventType = "forward-open"
	EventClick         EventType = "click"
	EventForwardReport EventType = "forward-report"
)

// Event is a single immutable entry in the append-only tracking log.
// Exactly one of the payload pointers is set, matching Type; the others
// stay nil and are omitted from the persisted JSON record.
type Event struct {
	TrackingID string    `json:"tracking_id"`
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`

	Sent       *SentInfo          `json:"sent,omitempty"`
	Engagement *EngagementInfo    `json:"engagement,omitempty"`
	Report     *ForwardReportInfo `json:"report,omitempty"`
}

// SentInfo is the payload of a "sent" event, recorded after the mail
// sender confirms delivery.
type SentInfo struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	DeliveryID     string `json:"delivery_id"`
}

// EngagementInfo is the payload shared by open, forward-open and click
// events: everything derived from the inbound pixel/click request.
type EngagementInfo struct {
	IPAddress string        `json:"ip_address,omitempty"`
	UserAgent string        `json:"user_agent,omitempty"`
	Referer   string        `json:"referer,omitempty"`
	Client    string        `json:"client,omitempty"`
	Bot       bool          `json:"bot,omitempty"`
	Location  Location      `json:"location"`
	Device    DeviceProfile `json:"device"`

	// TargetURL is set on click events only.
	TargetURL string `json:"target_url,omitempty"`
	// OriginalRecipient is set on forward-open events only.
	OriginalRecipient string `json:"original_recipient,omitempty"`
}

// ForwardReportInfo is the payload of a human-confirmed forward report.
type ForwardReportInfo struct {
	ForwardedTo   string `json:"forwarded_to"`
	ForwardedFrom string `json:"forwarded_from,omitempty"`
	Method        string `json:"method,omitempty"`
}

// ForwardReport is the inbound request body for POST /report-forward.
// ForwardedTo is mandatory, ForwardedFrom and Method are optional.
type ForwardReport struct {
	TrackingID    string `json:"tracking_id"`
	ForwardedTo   string `json:"forwarded_to"`
	ForwardedFrom string `json:"forwarded_from,omitempty"`
	Method        string `json:"method,omitempty"`
}
