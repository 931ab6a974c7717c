package cli

import (
	"context"
	"fmt"

	"github.com/evyataryagoni/wataxrate/internal/config"
	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/evyataryagoni/wataxrate/internal/service"
	"github.com/spf13/cobra"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var (
		limit   int
		output  string
		logType string
		logPath string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lookups from the configured history",
		Long:  "Read the newest entries of the lookup audit log selected by AUDIT_LOG_TYPE (csv, mysql or redis).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			histCfg := *cfg
			histCfg.AuditLogType = logType
			histCfg.AuditLogPath = logPath

			auditLog, err := openAuditLog(ctx, &histCfg)
			if err != nil {
				return fmt.Errorf("opening lookup history: %w", err)
			}

			svc := service.NewTaxService(nil, auditLog, service.RetryPolicy{}, nil, logger.Nop())
			defer svc.Close()

			records, err := svc.RecentLookups(ctx, limit)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), format, records)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultRecentLimit, "number of lookups to show")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	cmd.Flags().StringVar(&logType, "type", cfg.AuditLogType, "history backend: none, csv, mysql or redis")
	cmd.Flags().StringVar(&logPath, "path", cfg.AuditLogPath, "CSV history file")
	return cmd
}
