package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saurabh1712/codebase-rag/internal/domain"
)

var (
	askQuestion string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about an indexed session",
	Long: `Retrieve the most relevant code chunks for a question and synthesize a
grounded answer from them. The session must have been indexed first.

Examples:
  codebase-rag ask -s <session-id> -q "Where is the main entry point?"
  codebase-rag ask -s <session-id> -q "How does the auth flow work?" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "query", "q", "", "question to ask (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("query")
}

// askOutput is the JSON shape of one answer.
type askOutput struct {
	Answer  string      `json:"answer"`
	Sources []askSource `json:"sources"`
}

type askSource struct {
	SourcePath string `json:"source_path"`
	Content    string `json:"content"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if sessionID == "" {
		return fmt.Errorf("a session is required: pass --session from a previous index run")
	}

	pipeline, err := newPipeline(cfg, sessionID)
	if err != nil {
		return err
	}

	result, err := pipeline.Ask(cmd.Context(), askQuestion)
	if err != nil {
		if errors.Is(err, domain.ErrNotIndexed) {
			return fmt.Errorf("session %s has no index: run 'codebase-rag index' first", sessionID)
		}
		return err
	}

	if askJSON {
		out := askOutput{Answer: result.Answer}
		for _, chunk := range result.SourceChunks {
			out.Sources = append(out.Sources, askSource{
				SourcePath: chunk.SourcePath,
				Content:    chunk.Text,
			})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(result.Answer)

	if len(result.SourceChunks) > 0 {
		fmt.Printf("\nSources (%d chunks):\n", len(result.SourceChunks))
		for i, chunk := range result.SourceChunks {
			fmt.Printf("--- [%d] %s ---\n", i+1, chunk.SourcePath)
			text := chunk.Text
			if len(text) > 500 {
				text = text[:500] + "..."
			}
			fmt.Println(text)
			fmt.Println()
		}
	}

	return nil
}
