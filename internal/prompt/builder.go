// Package prompt builds the bounded, policy-constrained instruction sent to
// the reasoning engine. This is pure string construction: the builder embeds
// the case notes verbatim without attempting any semantic understanding of
// them, and it never touches the network.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"caselens/internal/analysis"
	"caselens/internal/policy"
)

// FormatPercent renders a computed refund percentage for display and for
// embedding in the instruction. An indeterminate percentage renders as
// "unknown".
func FormatPercent(pct *float64) string {
	if pct == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.2f%%", *pct)
}

func formatAmount(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Build composes the engine instruction for one validated request. The
// instruction carries the cap constants verbatim, the scrutiny and violation
// rules, the never-promise constraint, the exact output schema, and the case
// inputs including the raw notes embedded as-is.
func Build(req *analysis.Request, facts policy.RefundFacts) string {
	var b strings.Builder

	b.WriteString("You are a risk analyst for a travel call center. Analyze the case below and respond with a single JSON object and nothing else.\n\n")

	b.WriteString("Refund policy:\n")
	fmt.Fprintf(&b, "- Encouraged cap: %g%% of the booking total. A refund strictly above %g%% and at or below %g%% requires elevated scrutiny; recommend escalation.\n",
		facts.EncouragedCapPercent, facts.EncouragedCapPercent, facts.MaxCapPercent)
	fmt.Fprintf(&b, "- Maximum cap: %g%% of the booking total. A refund strictly above %g%% is a policy violation; label it as such and recommend immediate escalation.\n",
		facts.MaxCapPercent, facts.MaxCapPercent)
	b.WriteString("- Never promise refunds, approvals, or upgrades in any suggested wording.\n\n")

	b.WriteString("Required output schema (all fields required unless noted):\n")
	b.WriteString(`{
  "risk_score": number 0-100,
  "risk_level": "low" | "medium" | "high",
  "confidence": number 0-1,
  "signals": [{"name": string, "evidence_quote": string, "weight": number}],
  "warnings": [string],
  "recommended_script": [string],
  "next_steps": [string],
  "missing_info": [string]
}`)
	b.WriteString("\n\n")

	b.WriteString("Case inputs:\n")
	fmt.Fprintf(&b, "- Issue type: %s\n", req.IssueType)
	fmt.Fprintf(&b, "- Booking total: %s\n", formatAmount(req.BookingTotal))
	fmt.Fprintf(&b, "- Refunded amount: %s\n", formatAmount(req.RefundedAmount))
	fmt.Fprintf(&b, "- Computed refund percentage: %s\n", FormatPercent(facts.RefundPercent))
	b.WriteString("- Agent notes:\n")
	b.WriteString(req.RawNotes)
	b.WriteString("\n")

	return b.String()
}
