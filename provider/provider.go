package provider

import "context"

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Operation is optionally implemented by inputs that can name themselves.
// Middleware uses the name for log fields, span names and metric labels.
type Operation interface {
	OperationName() string
}

// operationName returns the input's own name, or fallback.
func operationName(input any, fallback string) string {
	if op, ok := input.(Operation); ok {
		if name := op.OperationName(); name != "" {
			return name
		}
	}
	return fallback
}
