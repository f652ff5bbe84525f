package tracker

import (
	"fmt"
	"strings"

	"github.com/ignite/mailtrace/internal/domain"
)

// ValidationError reports the required fields missing from a client
// request. It maps to a 400 response, never a server fault.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Missing, ", "))
}

// ValidateForwardReport checks a human-submitted forward report.
// TrackingID and ForwardedTo are mandatory; ForwardedFrom is optional.
func ValidateForwardReport(r domain.ForwardReport) error {
	var missing []string
	if strings.TrimSpace(r.TrackingID) == "" {
		missing = append(missing, "tracking_id")
	}
	if strings.TrimSpace(r.ForwardedTo) == "" {
		missing = append(missing, "forwarded_to")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
