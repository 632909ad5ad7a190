// Package analysis defines the data model of the refund-case analysis
// pipeline and the reconciliation of engine output with locally computed
// policy facts.
package analysis

import "time"

// Risk levels the reasoning engine is allowed to emit.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Request is the inbound analysis request. Booking figures are nullable;
// cap overrides exist for testability and default to the policy constants
// when absent.
type Request struct {
	RawNotes             string   `json:"rawNotes"`
	IssueType            string   `json:"issueType"`
	BookingTotal         *float64 `json:"bookingTotal"`
	RefundedAmount       *float64 `json:"refundedAmount"`
	EncouragedCapPercent float64  `json:"encouragedCapPercent"`
	MaxCapPercent        float64  `json:"maxCapPercent"`
}

// Signal is one risk indicator produced by the reasoning engine. The core
// treats it as opaque beyond its shape.
type Signal struct {
	Name          string  `json:"name"`
	EvidenceQuote string  `json:"evidence_quote"`
	Weight        float64 `json:"weight"`
}

// EngineOutput is the structured shape the engine is instructed to emit.
// Policy is kept as a raw map so that engine-supplied sub-fields the core
// does not recognize survive reconciliation unchanged.
type EngineOutput struct {
	RiskScore         float64        `json:"risk_score"`
	RiskLevel         string         `json:"risk_level"`
	Confidence        float64        `json:"confidence"`
	Signals           []Signal       `json:"signals"`
	Warnings          []string       `json:"warnings"`
	RecommendedScript []string       `json:"recommended_script"`
	NextSteps         []string       `json:"next_steps"`
	MissingInfo       []string       `json:"missing_info"`
	Policy            map[string]any `json:"policy,omitempty"`
}

// Result is the reconciled analysis returned to the caller. Constructed once
// per request and immutable after return. The policy block is always present
// and its deterministic fields always reflect local computation.
type Result struct {
	RiskScore         float64        `json:"risk_score"`
	RiskLevel         string         `json:"risk_level"`
	Confidence        float64        `json:"confidence"`
	Signals           []Signal       `json:"signals"`
	Warnings          []string       `json:"warnings"`
	RecommendedScript []string       `json:"recommended_script"`
	NextSteps         []string       `json:"next_steps"`
	MissingInfo       []string       `json:"missing_info"`
	Policy            map[string]any `json:"policy"`
	Meta              map[string]any `json:"meta,omitempty"`
}

// AuditRecord is the write-once document appended to the audit store after a
// successful analysis: the original request fields, the derived refund
// percentage, and the full result, plus the store-assigned creation timestamp
// and the agent identifier.
type AuditRecord struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Agent     string    `json:"agent"`

	RawNotes             string   `json:"rawNotes"`
	IssueType            string   `json:"issueType"`
	BookingTotal         *float64 `json:"bookingTotal"`
	RefundedAmount       *float64 `json:"refundedAmount"`
	EncouragedCapPercent float64  `json:"encouragedCapPercent"`
	MaxCapPercent        float64  `json:"maxCapPercent"`
	RefundPercent        *float64 `json:"refund_percent,omitempty"`

	Result
}

// NewAuditRecord flattens a request and its reconciled result into the
// document shape the audit store expects. An empty agent defaults to
// "unknown".
func NewAuditRecord(agent string, req *Request, refundPercent *float64, res *Result) *AuditRecord {
	if agent == "" {
		agent = "unknown"
	}
	return &AuditRecord{
		Agent:                agent,
		RawNotes:             req.RawNotes,
		IssueType:            req.IssueType,
		BookingTotal:         req.BookingTotal,
		RefundedAmount:       req.RefundedAmount,
		EncouragedCapPercent: req.EncouragedCapPercent,
		MaxCapPercent:        req.MaxCapPercent,
		RefundPercent:        refundPercent,
		Result:               *res,
	}
}
