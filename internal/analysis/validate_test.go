package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantField string
	}{
		{"valid", Request{RawNotes: "customer threatened chargeback", IssueType: "delayed refund"}, ""},
		{"notes too short", Request{RawNotes: "short", IssueType: "delayed refund"}, "rawNotes"},
		{"notes whitespace only", Request{RawNotes: "               ", IssueType: "delayed refund"}, "rawNotes"},
		{"missing issue type", Request{RawNotes: "customer threatened chargeback"}, "issueType"},
		{"blank issue type", Request{RawNotes: "customer threatened chargeback", IssueType: "  "}, "issueType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestRequestNormalizeDefaultsCaps(t *testing.T) {
	req := Request{RawNotes: "customer threatened chargeback", IssueType: "x"}
	req.Normalize()
	assert.Equal(t, 15.0, req.EncouragedCapPercent)
	assert.Equal(t, 20.0, req.MaxCapPercent)

	req = Request{EncouragedCapPercent: 10, MaxCapPercent: 12}
	req.Normalize()
	assert.Equal(t, 10.0, req.EncouragedCapPercent)
	assert.Equal(t, 12.0, req.MaxCapPercent)
}

func TestNewAuditRecordDefaultsAgent(t *testing.T) {
	req := &Request{RawNotes: "notes long enough here", IssueType: "dispute"}
	res := &Result{RiskLevel: RiskLow, Policy: map[string]any{}}

	rec := NewAuditRecord("", req, nil, res)
	assert.Equal(t, "unknown", rec.Agent)
	assert.Equal(t, "dispute", rec.IssueType)

	rec = NewAuditRecord("agent-7", req, nil, res)
	assert.Equal(t, "agent-7", rec.Agent)
}
