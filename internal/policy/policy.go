// Package policy computes deterministic refund-policy facts from booking
// figures. These facts are authoritative: anything the reasoning engine says
// about refund percentages or cap flags is overwritten by the values computed
// here.
package policy

// Default cap constants. Callers may override them per request for testing,
// but they are policy constants, not user-editable business state.
const (
	DefaultEncouragedCapPercent = 15.0
	DefaultMaxCapPercent        = 20.0
)

// RefundFacts holds the deterministically computed refund percentage and
// cap-exceedance flags. Derived once, never mutated afterwards.
type RefundFacts struct {
	// RefundPercent is nil when the inputs do not determine a percentage.
	RefundPercent        *float64
	SoftCapExceeded      bool
	HardCapExceeded      bool
	EncouragedCapPercent float64
	MaxCapPercent        float64
}

// ComputeRefundPercent returns refunded/total*100 and true when both inputs
// are usable. It fails closed: a missing, zero, or negative total, or a
// missing refunded amount, yields (0, false) rather than a zero percentage,
// so callers cannot infer a risk conclusion from indeterminate inputs.
// The result is unbounded and may exceed 100 to reflect an over-refund.
func ComputeRefundPercent(total, refunded *float64) (float64, bool) {
	if total == nil || *total <= 0 || refunded == nil {
		return 0, false
	}
	return *refunded / *total * 100, true
}

// Evaluate computes the full fact block for a request. Cap comparisons are
// strict greater-than: exactly at the cap is compliant. Both flags are false
// when the percentage is indeterminate; absence of evidence is not evidence
// of violation.
func Evaluate(total, refunded *float64, encouragedCap, maxCap float64) RefundFacts {
	facts := RefundFacts{
		EncouragedCapPercent: encouragedCap,
		MaxCapPercent:        maxCap,
	}
	pct, ok := ComputeRefundPercent(total, refunded)
	if !ok {
		return facts
	}
	facts.RefundPercent = &pct
	facts.SoftCapExceeded = pct > encouragedCap
	facts.HardCapExceeded = pct > maxCap
	return facts
}
