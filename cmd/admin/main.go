// Command admin provides operator utilities for DevConnect: demo seeding,
// account purges, token minting and OpenAPI compatibility checks.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"devconnect/internal/config"

	"github.com/spf13/cobra"
)

var (
	timeout time.Duration
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "DevConnect operator utilities",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig is a PersistentPreRunE for commands that talk to the store.
func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	return nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(purgeAccountCmd)
	rootCmd.AddCommand(mintTokenCmd)
	rootCmd.AddCommand(openapiCheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
