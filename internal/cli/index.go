package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <repo-url>",
	Short: "Clone and index a repository into a session",
	Long: `Clone a public repository, split its matching source files into chunks,
embed them and persist the session's vector index.

Indexing the same session again replaces the previous index entirely.

Examples:
  codebase-rag index https://github.com/streamlit/streamlit-example
  codebase-rag index -s 6f1c9b2e https://github.com/user/repo`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	locator := args[0]

	pipeline, err := newPipeline(cfg, sessionID)
	if err != nil {
		return err
	}
	session := pipeline.Session()

	fmt.Printf("Session: %s\n", session.ID)
	fmt.Printf("Cloning and indexing %s...\n", locator)

	var bar *progressbar.ProgressBar
	var chunksEmbedded int

	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
		chunksEmbedded = done
	}

	if err := pipeline.Index(cmd.Context(), locator, progress); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Chunks embedded: %d\n", chunksEmbedded)
	fmt.Printf("  Index stored at: %s\n", session.DBPath)
	fmt.Printf("\nAsk questions with:\n  codebase-rag ask -s %s -q \"your question\"\n", session.ID)
	return nil
}
