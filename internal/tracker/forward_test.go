package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailtrace/internal/domain"
)

func TestValidateForwardReport(t *testing.T) {
	tests := []struct {
		name        string
		report      domain.ForwardReport
		wantMissing []string
	}{
		{
			name:   "valid",
			report: domain.ForwardReport{TrackingID: "abc", ForwardedTo: "a@b.com"},
		},
		{
			name:   "optional fields may be absent",
			report: domain.ForwardReport{TrackingID: "abc", ForwardedTo: "a@b.com", ForwardedFrom: "", Method: ""},
		},
		{
			name:        "missing forwarded_to",
			report:      domain.ForwardReport{TrackingID: "abc"},
			wantMissing: []string{"forwarded_to"},
		},
		{
			name:        "missing tracking_id",
			report:      domain.ForwardReport{ForwardedTo: "a@b.com"},
			wantMissing: []string{"tracking_id"},
		},
		{
			name:        "missing both",
			report:      domain.ForwardReport{},
			wantMissing: []string{"tracking_id", "forwarded_to"},
		},
		{
			name:        "whitespace does not count",
			report:      domain.ForwardReport{TrackingID: "  ", ForwardedTo: "a@b.com"},
			wantMissing: []string{"tracking_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForwardReport(tt.report)
			if len(tt.wantMissing) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verr, ok := err.(*ValidationError)
			require.True(t, ok, "expected *ValidationError, got %T", err)
			assert.Equal(t, tt.wantMissing, verr.Missing)
		})
	}
}
