package core

import "context"

// Context keys for stage options
type contextKey string

const (
	suppressOutputKey contextKey = "suppressOutput"
	runIDKey          contextKey = "runID"
)

// withSuppressOutput marks that stages should not print their result tables
func withSuppressOutput(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressOutputKey, true)
}

// shouldSuppressOutput returns whether result tables should be suppressed from context
func shouldSuppressOutput(ctx context.Context) bool {
	val := ctx.Value(suppressOutputKey)
	if val == nil {
		return false // default: print tables
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID sets the results store run the stages belong to
func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the results store run from context
func getRunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}
