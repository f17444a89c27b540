package llm

import "context"

// Provider is a stateless language model backend. Each call carries the
// full conversation in the request.
type Provider interface {
	// Complete generates a reply to the conversation in req.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name identifies the provider in logs and errors.
	Name() string
}
