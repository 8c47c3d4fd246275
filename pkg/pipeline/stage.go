// Package pipeline holds the stage contract and the values passed between
// the layout, composite and encode stages.
package pipeline

import "context"

// Stage turns one input into one output. Stages are run in order by the
// orchestrator and hold no state between calls.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}
