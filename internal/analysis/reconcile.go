package analysis

import "caselens/internal/policy"

// Reconcile merges the engine output with the locally computed policy facts
// into the final result. The merge is order-sensitive: the engine's policy
// block is applied first, then the authoritative local fields are overlaid,
// so the refund percentage, both cap flags, and the two cap constants can
// never be engine-hallucinated. Engine policy sub-fields the core does not
// recognize pass through untouched.
//
// Sequence fields the engine omitted come back as empty slices, never nil,
// so downstream consumers do not need to nil-check collections.
func Reconcile(out *EngineOutput, facts policy.RefundFacts) *Result {
	if out == nil {
		out = &EngineOutput{}
	}

	pol := make(map[string]any, len(out.Policy)+5)
	for k, v := range out.Policy {
		pol[k] = v
	}
	pol["soft_cap_exceeded"] = facts.SoftCapExceeded
	pol["hard_cap_exceeded"] = facts.HardCapExceeded
	pol["encouraged_cap_percent"] = facts.EncouragedCapPercent
	pol["max_cap_percent"] = facts.MaxCapPercent
	if facts.RefundPercent != nil {
		pol["refund_percent"] = *facts.RefundPercent
	} else {
		// Indeterminate locally means indeterminate in the result, even if
		// the engine invented a number.
		delete(pol, "refund_percent")
	}

	return &Result{
		RiskScore:         out.RiskScore,
		RiskLevel:         out.RiskLevel,
		Confidence:        out.Confidence,
		Signals:           emptyIfNil(out.Signals),
		Warnings:          emptyIfNil(out.Warnings),
		RecommendedScript: emptyIfNil(out.RecommendedScript),
		NextSteps:         emptyIfNil(out.NextSteps),
		MissingInfo:       emptyIfNil(out.MissingInfo),
		Policy:            pol,
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
