package processor

import "context"

// ResetFunc drops and recreates the ledger schema. It backs the "e" tag.
type ResetFunc func(ctx context.Context) error
