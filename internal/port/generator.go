package port

import "context"

// Generator produces text from a system instruction and a user prompt.
// Each call is stateless; conversational continuity is the caller's problem.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the generative model.
	ModelName() string
}
