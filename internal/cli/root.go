package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saurabh1712/codebase-rag/config"
	"github.com/saurabh1712/codebase-rag/internal/adapter/chunker"
	"github.com/saurabh1712/codebase-rag/internal/adapter/embedding"
	"github.com/saurabh1712/codebase-rag/internal/adapter/fetcher"
	"github.com/saurabh1712/codebase-rag/internal/adapter/llm"
	"github.com/saurabh1712/codebase-rag/internal/adapter/loader"
	"github.com/saurabh1712/codebase-rag/internal/port"
	"github.com/saurabh1712/codebase-rag/internal/usecase"
)

var (
	cfgFile   string
	sessionID string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "codebase-rag",
	Short: "Index a public repository and ask grounded questions about its code",
	Long: `codebase-rag clones a public source repository, splits its files into
retrievable chunks, embeds them into a persistent per-session vector index,
and answers natural-language questions grounded in the retrieved code.

Example usage:
  codebase-rag index https://github.com/user/repo   # index into a new session
  codebase-rag ask -s <session-id> -q "How does authentication work?"
  codebase-rag clear -s <session-id>                # delete the session's storage`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./codebase-rag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "session identifier (default is a fresh UUID)")
}

// newPipeline assembles a session pipeline from the loaded config.
func newPipeline(cfg *config.Config, sessionID string) (*usecase.Pipeline, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	session := usecase.NewSession(cfg, sessionID)

	return usecase.NewPipeline(
		session,
		fetcher.NewGitFetcher(),
		embedder,
		generator,
		loader.New(cfg.Loader.Includes, cfg.Loader.Excludes, cfg.Loader.MaxFileSize),
		chunker.New(cfg.Chunk.Size, cfg.Chunk.Overlap, cfg.Chunk.Separators),
		cfg.Retrieve.TopK,
		cfg.Embedding.BatchSize,
	), nil
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BatchSize)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

func newGenerator(cfg *config.Config) (port.Generator, error) {
	return llm.NewOpenAIGenerator(cfg.LLM.APIKeyEnv, cfg.LLM.Model, cfg.LLM.Temperature)
}
