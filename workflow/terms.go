package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/EdgeApp/infinite-ramp/core"
)

// termsTimeout bounds how long the pending screen waits for the user to
// accept the terms in the external browser
const termsTimeout = 60 * time.Second

// AcceptTerms gates on the partner's terms-of-service acceptance. Already
// accepted (or not required) short-circuits; a pending acceptance opens the
// terms page in an external browser and polls until accepted, timing out
// non-fatally.
func AcceptTerms() Step {
	return Step{Name: StepAcceptTerms, Run: runAcceptTerms}
}

func runAcceptTerms(ctx context.Context, env *Env) error {
	state := env.State

	tos, err := env.API.GetTosStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get terms status: %w", err)
	}

	switch tos.Status {
	case core.TosStatusAccepted, core.TosStatusNotRequired:
		state.Mark(StepAcceptTerms, StatusCompleted)
		return nil
	}

	state.Mark(StepAcceptTerms, StatusStarted)
	mode := env.presentMode(StepAcceptTerms)
	state.SetSceneShown(StepAcceptTerms, true)

	if err := env.Browser.OpenURL(ctx, tos.URL); err != nil {
		return fmt.Errorf("failed to open terms page: %w", err)
	}

	deadline := env.now().Add(termsTimeout)
	timedOut := false

	err = env.Screens.ShowPendingStatus(ctx, mode, "Terms of Service", func(ctx context.Context) (bool, error) {
		if env.now().After(deadline) {
			timedOut = true
			return true, nil
		}
		current, err := env.API.GetTosStatus(ctx)
		if err != nil {
			return false, err
		}
		return current.Status == core.TosStatusAccepted, nil
	})
	if err != nil {
		if core.IsCancelled(err) {
			state.Mark(StepAcceptTerms, StatusCancelled)
		}
		return err
	}

	if timedOut {
		// Acceptance may land later on the partner side; record the step as
		// ignored rather than failing the chain.
		env.Log.Warn("terms acceptance timed out", "timeout", termsTimeout)
		state.Mark(StepAcceptTerms, StatusIgnored)
		return nil
	}

	state.Mark(StepAcceptTerms, StatusCompleted)
	return nil
}
