package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"caselens/internal/analysis"
	"caselens/internal/audit"
	"caselens/internal/engine"
	"caselens/internal/pipeline"
)

var (
	analyzeNotes    string
	analyzeIssue    string
	analyzeTotal    string
	analyzeRefunded string
	analyzeAgent    string
	analyzeNoAudit  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis from the command line",
	Long: `Runs the full analysis pipeline locally (no server needed), prints the
reconciled result as JSON, and appends the audit record.

Example:
  caselens analyze --issue "delayed refund" --total 560 --refunded 85.06 \
    --notes "Customer waited 6 weeks, threatened chargeback, supervisor promised callback"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &analysis.Request{
			RawNotes:       analyzeNotes,
			IssueType:      analyzeIssue,
			BookingTotal:   parseOptionalNumber(analyzeTotal),
			RefundedAmount: parseOptionalNumber(analyzeRefunded),
		}

		eng, err := engine.New(cfg.Engine)
		if err != nil {
			return err
		}
		pipe := pipeline.New(eng, logger)

		ctx, cancel := contextWithTimeout(cmd, cfg.Engine.EngineTimeout())
		defer cancel()

		res, err := pipe.Analyze(ctx, req)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if analyzeNoAudit {
			return nil
		}
		// Audit strictly follows display, and a failed write does not
		// invalidate the printed result.
		store, err := audit.Open(cmd.Context(), cfg.Audit)
		if err != nil {
			logger.Warn("audit store unavailable, record not saved", zap.Error(err))
			return nil
		}
		defer store.Close()

		var pct *float64
		if p, ok := res.Policy["refund_percent"].(float64); ok {
			pct = &p
		}
		rec := analysis.NewAuditRecord(analyzeAgent, req, pct, res)

		auditCtx, auditCancel := contextWithTimeout(cmd, cfg.Audit.AuditTimeout())
		defer auditCancel()
		id, err := store.Append(auditCtx, rec)
		if err != nil {
			logger.Warn("audit save failed, result above remains valid", zap.Error(err))
			return nil
		}
		logger.Info("audit record saved", zap.String("id", id))
		return nil
	},
}

func parseOptionalNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeNotes, "notes", "", "raw case notes (required, min 10 chars)")
	analyzeCmd.Flags().StringVar(&analyzeIssue, "issue", "", "issue type label (required)")
	analyzeCmd.Flags().StringVar(&analyzeTotal, "total", "", "booking total (optional)")
	analyzeCmd.Flags().StringVar(&analyzeRefunded, "refunded", "", "refunded amount (optional)")
	analyzeCmd.Flags().StringVar(&analyzeAgent, "agent", "", "agent identifier for the audit record")
	analyzeCmd.Flags().BoolVar(&analyzeNoAudit, "no-audit", false, "skip the audit record")
	_ = analyzeCmd.MarkFlagRequired("notes")
	_ = analyzeCmd.MarkFlagRequired("issue")
}
