package cli

import (
	"fmt"

	"github.com/evyataryagoni/wataxrate/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	// Flag defaults come from the environment, so .env is read before the subcommands are built
	envErr := config.LoadDotEnv()
	cfg := config.FromEnv()

	cmd := &cobra.Command{
		Use:           "taxrate",
		Short:         "Washington State sales tax rates by street address",
		Long:          "taxrate looks up the combined state and local sales tax rate for a Washington address using the Department of Revenue address rates service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("reading .env: %w", envErr)
			}
			return nil
		},
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGetCmd(cfg))
	cmd.AddCommand(newHistoryCmd(cfg))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
