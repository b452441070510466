package workflow

import (
	"context"
	"fmt"

	"github.com/EdgeApp/infinite-ramp/core"
)

// Step is one named unit of the onboarding chain
type Step struct {
	Name string
	Run  func(ctx context.Context, env *Env) error
}

// Run executes the steps strictly in order. A cancellation signal raised by
// any step terminates the chain quietly; every other error stops the chain
// and propagates to the caller unchanged.
func Run(ctx context.Context, env *Env, steps ...Step) error {
	for _, step := range steps {
		if err := step.Run(ctx, env); err != nil {
			if core.IsCancelled(err) {
				env.Log.Info("onboarding cancelled by user",
					"step", step.Name,
					"reason", err.Error())
				return nil
			}
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
	}
	return nil
}
