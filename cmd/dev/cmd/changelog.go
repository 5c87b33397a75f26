package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// ChangelogCmd regenerates the changelog with git-chglog.
func ChangelogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Update the changelog from conventional commits",
		Example: `  dev changelog
  dev changelog --next v0.2.0
  dev changelog --tag v0.1.0 --output CHANGES.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			next, _ := cmd.Flags().GetString("next")
			tag, _ := cmd.Flags().GetString("tag")

			_, err := exec.LookPath("git-chglog")
			if err != nil {
				slog.Error("git-chglog not found", "install", "go install github.com/git-chglog/git-chglog/cmd/git-chglog@latest")
				return fmt.Errorf("git-chglog not installed: %w", err)
			}
			chglogArgs := []string{"--output", output}
			if next != "" {
				chglogArgs = append(chglogArgs, "--next-tag", next)
			}
			if tag != "" {
				chglogArgs = append(chglogArgs, tag)
			}
			slog.Debug("running git-chglog", "args", chglogArgs)
			run := exec.CommandContext(cmd.Context(), "git-chglog", chglogArgs...)
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			err = run.Run()
			if err != nil {
				return fmt.Errorf("failed to generate changelog: %w", err)
			}
			slog.Info("changelog updated", "output", output)
			return nil
		},
	}
	cmd.Flags().String("next", "", "tag of the upcoming release")
	cmd.Flags().String("output", "CHANGELOG.md", "output file")
	cmd.Flags().String("tag", "", "only render the given tag")
	return cmd
}
