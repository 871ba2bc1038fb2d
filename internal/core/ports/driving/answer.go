package driving

import "context"

// AnswerService answers free-text questions over the ingested corpus
// using retrieval-augmented generation, with fixed-intent routing to the
// visualization collaborators.
type AnswerService interface {
	// Answer returns the assistant's reply for a question. Completion
	// failures are absorbed into a formatted error string so the session
	// stays alive.
	Answer(ctx context.Context, question string) (string, error)
}
