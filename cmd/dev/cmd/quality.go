package cmd

import (
	"fmt"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func TestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run unit tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Test()
			if err != nil {
				return fmt.Errorf("unit tests failed: %w", err)
			}
			return nil
		},
	}
}

func LintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run linters",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Lint()
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}
			return nil
		},
	}
}

// IntegrationTestCmd runs the tests that need a sensor on a real bus.
func IntegrationTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integration-test",
		Short: "Run hardware integration tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Integ()
			if err != nil {
				return fmt.Errorf("integration tests failed: %w", err)
			}
			return nil
		},
	}
}
