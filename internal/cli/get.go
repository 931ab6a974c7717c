package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/config"
	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/evyataryagoni/wataxrate/internal/lookup"
	"github.com/evyataryagoni/wataxrate/internal/models"
	"github.com/evyataryagoni/wataxrate/internal/service"
	"github.com/evyataryagoni/wataxrate/internal/store"
	"github.com/spf13/cobra"
)

func newGetCmd(cfg *config.Config) *cobra.Command {
	var (
		baseURL  string
		timeout  time.Duration
		retries  int
		backoff  time.Duration
		output   string
		noRecord bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "get <street> <city> <zip>",
		Short: "Look up the sales tax rate for an address",
		Long:  "Query the DOR address rates service once per attempt and print the combined sales tax rate.",
		Example: `  taxrate get "400 Broad St" Seattle 98109
  taxrate get "6500 Linderson Way SW" Tumwater 98501 -o json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			client, err := lookup.New(
				lookup.WithBaseURL(baseURL),
				lookup.WithHTTPClient(&http.Client{
					Transport: lookup.DefaultTransport(),
					Timeout:   cfg.DORTimeout,
				}),
			)
			if err != nil {
				return fmt.Errorf("creating DOR client: %w", err)
			}

			log := logger.Nop()
			if verbose {
				log = logger.New(logger.Config{Level: "debug", Pretty: true, Output: cmd.ErrOrStderr()})
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var auditLog store.AuditLog
			if !noRecord {
				auditLog, err = openAuditLog(ctx, cfg)
				if err != nil {
					return fmt.Errorf("opening lookup history: %w", err)
				}
			}

			svc := service.NewTaxService(client, auditLog, service.RetryPolicy{
				MaxAttempts:    retries,
				AttemptTimeout: timeout,
				Backoff:        backoff,
			}, nil, log)
			defer svc.Close()

			q := models.AddressQuery{Street: args[0], City: args[1], ZIP: args[2]}
			info, err := svc.LookupRate(ctx, q)
			if err != nil {
				return err
			}

			return writeTaxInfo(cmd.OutOrStdout(), format, q, info)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", cfg.DORBaseURL, "DOR address rates endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", cfg.LookupAttemptTimeout, "timeout for each attempt")
	cmd.Flags().IntVar(&retries, "retries", cfg.LookupMaxAttempts, "maximum number of attempts")
	cmd.Flags().DurationVar(&backoff, "backoff", cfg.LookupRetryBackoff, "pause between attempts")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "skip writing the lookup to the configured history")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each attempt to stderr")
	return cmd
}

// openAuditLog opens the history backend named by AUDIT_LOG_TYPE
func openAuditLog(ctx context.Context, cfg *config.Config) (store.AuditLog, error) {
	return store.NewAuditLog(ctx, store.AuditLogConfig{
		Type:          cfg.AuditLogType,
		CSVPath:       cfg.AuditLogPath,
		MySQLDSN:      cfg.MySQLDSN,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
}
