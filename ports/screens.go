package ports

import (
	"context"

	"github.com/EdgeApp/infinite-ramp/core"
)

// PresentMode says how a screen enters the navigation stack
type PresentMode string

const (
	// PresentPush pushes a new screen onto the stack
	PresentPush PresentMode = "push"

	// PresentReplace swaps the screen currently on top of the stack
	PresentReplace PresentMode = "replace"
)

// StatusCheck is polled by the pending-status screen. Returning done stops
// the polling and dismisses the screen.
type StatusCheck func(ctx context.Context) (done bool, err error)

// Screens is the presentation layer consumed by the workflow steps. Each call
// suspends until the screen resolves exactly once. Unless noted otherwise, a
// user dismissal resolves with an error matching core.ErrCancelled.
type Screens interface {
	// ShowContactForm collects customer contact details
	ShowContactForm(ctx context.Context, mode PresentMode) (core.ContactInfo, error)

	// ShowOTPEntry collects a one-time code sent to an already-registered
	// email address
	ShowOTPEntry(ctx context.Context, mode PresentMode, email string) (string, error)

	// ShowPendingStatus displays a polling wait screen titled title and
	// invokes check until it reports done
	ShowPendingStatus(ctx context.Context, mode PresentMode, title string, check StatusCheck) error

	// ShowBankForm collects bank account details
	ShowBankForm(ctx context.Context, mode PresentMode) (core.BankDetails, error)

	// ShowConfirmation displays the final confirm/cancel summary. Declining
	// resolves false with a nil error; it is a normal outcome, not a
	// cancellation.
	ShowConfirmation(ctx context.Context, mode PresentMode, summary core.ConfirmSummary) (bool, error)
}

// Browser opens a URL outside the app, e.g. for hosted KYC or terms pages
type Browser interface {
	OpenURL(ctx context.Context, url string) error
}
