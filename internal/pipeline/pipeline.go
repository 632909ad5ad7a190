// Package pipeline orchestrates one analysis: validate, compute policy facts,
// build the instruction, invoke the reasoning engine, reconcile. Each run is
// one sequential chain with exactly one suspension point (the engine call)
// and carries no cross-request state.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"caselens/internal/analysis"
	"caselens/internal/engine"
	"caselens/internal/policy"
	"caselens/internal/prompt"
)

// Pipeline runs the policy-augmented analysis. Stateless between runs.
type Pipeline struct {
	engine engine.Client
	log    *zap.Logger
}

// New builds a pipeline around a reasoning-engine client.
func New(eng engine.Client, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{engine: eng, log: log}
}

// Facts exposes the deterministic policy computation for a request, shared by
// the endpoint and by clients that want instant feedback.
func Facts(req *analysis.Request) policy.RefundFacts {
	return policy.Evaluate(req.BookingTotal, req.RefundedAmount, req.EncouragedCapPercent, req.MaxCapPercent)
}

// Analyze runs the full chain for one request. Any stage failure short-
// circuits the rest; no partial result is ever returned. The request is
// normalized and validated here, so callers may pass raw input.
func (p *Pipeline) Analyze(ctx context.Context, req *analysis.Request) (*analysis.Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	facts := Facts(req)
	instruction := prompt.Build(req, facts)

	p.log.Debug("invoking reasoning engine",
		zap.String("model", p.engine.Model()),
		zap.Int("instruction_len", len(instruction)))

	out, err := p.engine.Analyze(ctx, instruction)
	if err != nil {
		p.log.Warn("engine invocation failed", zap.Error(err))
		return nil, err
	}

	res := analysis.Reconcile(out, facts)
	res.Meta = map[string]any{"model": p.engine.Model()}

	p.log.Info("analysis complete",
		zap.String("risk_level", res.RiskLevel),
		zap.Float64("risk_score", res.RiskScore),
		zap.Bool("soft_cap_exceeded", facts.SoftCapExceeded),
		zap.Bool("hard_cap_exceeded", facts.HardCapExceeded))

	return res, nil
}
