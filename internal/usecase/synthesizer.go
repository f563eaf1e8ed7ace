package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/saurabh1712/codebase-rag/internal/domain"
	"github.com/saurabh1712/codebase-rag/internal/port"
)

// FallbackAnswer is the exact sentence the model must reply with when the
// retrieved context does not contain the answer.
const FallbackAnswer = "The answer is not present in the codebase."

const archaeologistPrompt = "You are an expert Codebase Archaeologist. Analyze ONLY the retrieved documents " +
	"to answer the question. Ground your answer strictly in the code context provided. " +
	"If the answer is not present in the retrieved context, reply: " +
	"'" + FallbackAnswer + "'\n\n" +
	"Context:\n%s"

// Synthesizer produces a grounded answer from a question and retrieved
// chunks. Each call is stateless: one context string, one generative call,
// no conversation memory.
type Synthesizer struct {
	generator port.Generator
}

// NewSynthesizer creates a Synthesizer over the given generator.
func NewSynthesizer(generator port.Generator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// Generate answers question using exactly the supplied chunks, in order.
func (s *Synthesizer) Generate(ctx context.Context, question string, contextChunks []domain.Chunk) (string, error) {
	systemPrompt := fmt.Sprintf(archaeologistPrompt, formatContext(contextChunks))

	answer, err := s.generator.Generate(ctx, systemPrompt, question)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(answer), nil
}

// formatContext mashes the chunk contents into one context string,
// rank order preserved, double-newline separated.
func formatContext(chunks []domain.Chunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Text
	}
	return strings.Join(parts, "\n\n")
}
