// Package mailer is the outbound mail collaborator: it accepts a rendered
// message and returns a delivery identifier or fails. Delivery mechanics
// stay behind the Sender interface; the tracking pipeline only cares that
// a send either completed (record the sent event) or did not (record
// nothing).
package mailer

import "context"

// Message is a fully rendered outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers a message and returns the provider's delivery ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (deliveryID string, err error)
}
