package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/infinite"
	"github.com/EdgeApp/infinite-ramp/ports"
)

const (
	// kycRedirectURL is where the hosted verification page deep-links back
	// into the app
	kycRedirectURL = "edge://ramp/kyc"

	// kycTimeout bounds the pending-status polling; hosted verification
	// rarely takes longer when the user is actually at it
	kycTimeout = 10 * time.Minute
)

// Kyc drives identity verification. A stored customer with approved status
// short-circuits; otherwise the step collects contact info, creates the
// customer, sends the user to the hosted verification page, and polls until
// the partner approves or terminally rejects.
func Kyc(countryCode string) Step {
	return Step{
		Name: StepKyc,
		Run: func(ctx context.Context, env *Env) error {
			return runKyc(ctx, env, countryCode)
		},
	}
}

func runKyc(ctx context.Context, env *Env, countryCode string) error {
	state := env.State

	customerID := env.Plugin.CustomerID
	if customerID == "" {
		customerID = env.API.Auth().CustomerID
	}

	if customerID != "" {
		status, err := env.API.GetKycStatus(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to get kyc status: %w", err)
		}
		if status.KycStatus == core.KycStatusActive {
			env.Plugin.KycStatus = core.KycStatusActive
			state.Mark(StepKyc, StatusCompleted)
			return nil
		}
	}

	state.Mark(StepKyc, StatusStarted)
	mode := env.presentMode(StepKyc)
	state.SetSceneShown(StepKyc, true)

	if customerID == "" {
		var err error
		customerID, err = onboardCustomer(ctx, env, mode, countryCode)
		if err != nil {
			if core.IsCancelled(err) {
				state.Mark(StepKyc, StatusCancelled)
			}
			return err
		}

		env.API.SaveCustomerID(customerID)
		env.Plugin.CustomerID = customerID
		if err := env.SavePluginState(ctx); err != nil {
			return err
		}

		link, err := env.API.GetKycLink(ctx, customerID, kycRedirectURL)
		if err != nil {
			return fmt.Errorf("failed to get kyc link: %w", err)
		}
		if err := env.Browser.OpenURL(ctx, link.URL); err != nil {
			return fmt.Errorf("failed to open kyc page: %w", err)
		}

		// The form screen already occupied the top of the stack; the
		// pending screen that follows swaps it.
		mode = ports.PresentReplace
	}

	deadline := env.now().Add(kycTimeout)
	terminal := core.KycStatus("")

	err := env.Screens.ShowPendingStatus(ctx, mode, "Identity Verification", func(ctx context.Context) (bool, error) {
		if env.now().After(deadline) {
			terminal = core.KycStatusTimedOut
			return true, nil
		}
		status, err := env.API.GetKycStatus(ctx, customerID)
		if err != nil {
			return false, err
		}
		if status.KycStatus.Terminal() {
			terminal = status.KycStatus
			return true, nil
		}
		return status.KycStatus == core.KycStatusActive, nil
	})
	if err != nil {
		if core.IsCancelled(err) {
			state.Mark(StepKyc, StatusCancelled)
		}
		return err
	}

	if terminal != "" {
		env.Plugin.KycStatus = terminal
		if err := env.SavePluginState(ctx); err != nil {
			return err
		}
		return &core.KycError{Status: terminal}
	}

	env.Plugin.KycStatus = core.KycStatusActive
	if err := env.SavePluginState(ctx); err != nil {
		return err
	}

	state.Mark(StepKyc, StatusCompleted)
	return nil
}

// onboardCustomer collects contact details and creates the partner customer
// record, resolving the duplicate-email OTP round when the partner requests
// it
func onboardCustomer(ctx context.Context, env *Env, mode ports.PresentMode, countryCode string) (string, error) {
	info, err := env.Screens.ShowContactForm(ctx, mode)
	if err != nil {
		return "", err
	}

	request := infinite.CustomerRequest{
		Type:        "individual",
		CountryCode: countryCode,
		ContactInformation: infinite.ContactInformation{
			Email: info.Email,
		},
		IndividualData: &infinite.IndividualData{
			FirstName:   info.FirstName,
			LastName:    info.LastName,
			Nationality: info.Nationality,
			Phone:       info.Phone,
			DateOfBirth: info.DateOfBirth,
		},
	}
	if info.Address != nil {
		request.Address = &infinite.CustomerAddress{
			AddressLine1: info.Address.Line1,
			AddressLine2: info.Address.Line2,
			City:         info.Address.City,
			State:        info.Address.State,
			PostalCode:   info.Address.PostalCode,
			Country:      info.Address.Country,
		}
	}

	result, err := env.API.CreateCustomer(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	if result.OTPSent {
		code, err := env.Screens.ShowOTPEntry(ctx, ports.PresentReplace, info.Email)
		if err != nil {
			return "", err
		}
		result, err = env.API.VerifyOTP(ctx, infinite.VerifyOTPParams{Email: info.Email, Code: code})
		if err != nil {
			return "", fmt.Errorf("failed to verify otp: %w", err)
		}
	}

	return result.CustomerID, nil
}
