package workflow

import (
	"context"
	"fmt"

	"github.com/EdgeApp/infinite-ramp/infinite"
)

// Step names, in chain order
const (
	StepAuthenticate = "authenticate"
	StepAcceptTerms  = "acceptTerms"
	StepKyc          = "kyc"
	StepBankAccount  = "bankAccount"
	StepConfirmation = "confirmation"
)

// ChainOrder is the fixed step order of one approve invocation
var ChainOrder = []string{
	StepAuthenticate,
	StepAcceptTerms,
	StepKyc,
	StepBankAccount,
	StepConfirmation,
}

// Authenticate establishes a partner session. Fully programmatic: it loads
// or generates the device key, signs the partner's challenge, and verifies
// the signature. No screen is ever shown.
func Authenticate() Step {
	return Step{Name: StepAuthenticate, Run: runAuthenticate}
}

func runAuthenticate(ctx context.Context, env *Env) error {
	state := env.State

	if env.API.IsAuthenticated() {
		state.Mark(StepAuthenticate, StatusCompleted)
		return nil
	}

	state.Mark(StepAuthenticate, StatusStarted)

	key, err := env.PrivateKey(ctx)
	if err != nil {
		return err
	}
	publicKey := infinite.PublicKeyHex(key)

	challenge, err := env.API.GetChallenge(ctx, publicKey)
	if err != nil {
		return fmt.Errorf("failed to get challenge: %w", err)
	}

	signature, err := infinite.SignChallenge(challenge.Message, key)
	if err != nil {
		return err
	}

	auth, err := env.API.VerifySignature(ctx, infinite.VerifyParams{
		PublicKey: publicKey,
		Signature: signature,
		Nonce:     challenge.Nonce,
		Platform:  "edge",
	})
	if err != nil {
		return fmt.Errorf("failed to verify signature: %w", err)
	}

	// The partner remembers onboarded devices; pick up the customer id so
	// later steps can short-circuit.
	if auth.CustomerID != nil && *auth.CustomerID != "" && env.Plugin.CustomerID == "" {
		env.Plugin.CustomerID = *auth.CustomerID
		if err := env.SavePluginState(ctx); err != nil {
			return err
		}
	}

	state.Mark(StepAuthenticate, StatusCompleted)
	return nil
}
