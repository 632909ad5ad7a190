package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"caselens/internal/audit"
	"caselens/internal/prompt"
)

var (
	auditLimit int
	auditJSON  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recent audit records",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := audit.Open(cmd.Context(), cfg.Audit)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := contextWithTimeout(cmd, cfg.Audit.AuditTimeout())
		defer cancel()

		recs, err := store.Recent(ctx, auditLimit)
		if err != nil {
			return err
		}

		if auditJSON {
			out, err := json.MarshalIndent(recs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		for _, rec := range recs {
			fmt.Printf("%s  %-8s  %-6s  %-20s  refund %s  %s\n",
				rec.CreatedAt.Format(time.RFC3339),
				rec.Agent,
				rec.RiskLevel,
				rec.IssueType,
				prompt.FormatPercent(rec.RefundPercent),
				rec.ID)
		}
		if len(recs) == 0 {
			fmt.Println("no audit records")
		}
		return nil
	},
}

// contextWithTimeout derives a deadline-bound context from the command.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), d)
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "maximum records to list")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "print records as JSON")
}
