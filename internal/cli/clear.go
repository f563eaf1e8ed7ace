package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saurabh1712/codebase-rag/internal/usecase"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a session's repository tree and index",
	Long: `Delete the session's fetched source tree and its persisted vector index,
recreating both directories empty. The session can be re-indexed afterwards.

Example:
  codebase-rag clear -s <session-id>`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if sessionID == "" {
		return fmt.Errorf("a session is required: pass --session")
	}

	session := usecase.NewSession(cfg, sessionID)
	if err := usecase.ClearSession(session); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Printf("Session %s cleared.\n", sessionID)
	return nil
}
