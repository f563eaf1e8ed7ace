package main

import (
	"github.com/joho/godotenv"

	"github.com/saurabh1712/codebase-rag/internal/cli"
)

func main() {
	// Best effort: API keys may come from a .env file or the environment.
	_ = godotenv.Load()

	cli.Execute()
}
