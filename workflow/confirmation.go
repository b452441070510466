package workflow

import (
	"context"

	"github.com/EdgeApp/infinite-ramp/core"
)

// Confirmation shows the final confirm/cancel summary. It never
// short-circuits, and declining is a normal terminal outcome rather than a
// cancellation: the step completes and writes false to confirmed.
//
// The summary is computed at step run time so it reflects a fresh re-quote
// taken after the earlier steps finished.
func Confirmation(summarize func(ctx context.Context) (core.ConfirmSummary, error), confirmed *bool) Step {
	return Step{
		Name: StepConfirmation,
		Run: func(ctx context.Context, env *Env) error {
			state := env.State

			state.Mark(StepConfirmation, StatusStarted)
			mode := env.presentMode(StepConfirmation)
			state.SetSceneShown(StepConfirmation, true)

			summary, err := summarize(ctx)
			if err != nil {
				return err
			}

			ok, err := env.Screens.ShowConfirmation(ctx, mode, summary)
			if err != nil {
				if core.IsCancelled(err) {
					state.Mark(StepConfirmation, StatusCancelled)
				}
				return err
			}

			*confirmed = ok
			state.Mark(StepConfirmation, StatusCompleted)
			return nil
		},
	}
}
