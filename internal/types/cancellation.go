package types

import "context"

// ContextCancellationToken reports cancellation of Ctx.
type ContextCancellationToken struct {
	Ctx context.Context
}

func (t ContextCancellationToken) IsCancellationRequested() bool {
	return t.Ctx.Err() != nil
}

func (t ContextCancellationToken) ThrowIfCancellationRequested() error {
	return t.Ctx.Err()
}
