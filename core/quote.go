package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a ramp conversion
type Direction string

const (
	DirectionBuy  Direction = "buy"  // fiat -> crypto
	DirectionSell Direction = "sell" // crypto -> fiat
)

// AmountType says which side of the conversion the requested amount is
// denominated in
type AmountType string

const (
	AmountTypeFiat   AmountType = "fiat"
	AmountTypeCrypto AmountType = "crypto"
)

// RegionCode identifies the user's region
type RegionCode struct {
	CountryCode       string // ISO 3166-1 alpha-2
	StateProvinceCode string
}

// CryptoAsset identifies a crypto asset by chain plugin and token
type CryptoAsset struct {
	PluginID string // chain plugin id, e.g. "polygon"
	TokenID  string // empty for the chain's native asset
}

// FiatAsset identifies a fiat currency
type FiatAsset struct {
	CurrencyCode string // "iso:" prefixed, e.g. "iso:USD"
}

// CheckSupportRequest asks whether a conversion is supported at all
type CheckSupportRequest struct {
	Direction   Direction
	RegionCode  RegionCode
	FiatAsset   FiatAsset
	CryptoAsset CryptoAsset
}

// SupportResult is the answer to a support check
type SupportResult struct {
	Supported            bool
	SupportedAmountTypes []AmountType
}

// QuoteRequest asks for a priced conversion quote
type QuoteRequest struct {
	Direction           Direction
	RegionCode          RegionCode
	ExchangeAmount      decimal.Decimal
	AmountType          AmountType
	MaxAmount           bool             // request the largest allowed amount
	MaxAmountLimit      *decimal.Decimal // optional cap on a max-amount request
	PluginID            string           // chain plugin id
	TokenID             string
	DisplayCurrencyCode string
	FiatCurrencyCode    string // "iso:" prefixed
}

// Wallet is the slice of the host wallet the approve chain needs
type Wallet interface {
	// ReceiveAddress returns the wallet's current receive address
	ReceiveAddress(ctx context.Context) (string, error)
}

// ApproveFunc runs the full onboarding chain for a quote. A nil return means
// the chain finished or the user backed out; any other error is a genuine
// failure.
type ApproveFunc func(ctx context.Context, wallet Wallet) error

// Quote is a priced, time-bounded offer to convert a specific amount
type Quote struct {
	ProviderID          string
	DisplayCurrencyCode string
	CryptoAmount        decimal.Decimal
	FiatCurrencyCode    string
	FiatAmount          decimal.Decimal
	Direction           Direction
	RegionCode          RegionCode
	PaymentType         string
	IsEstimate          bool
	ExpirationDate      time.Time

	// Approve runs the onboarding chain and, on confirmation, creates the
	// transfer. Re-invocation after a cancellation re-runs the chain from
	// scratch.
	Approve ApproveFunc

	// Close is a no-op cleanup hook for the host
	Close func()
}

// Expired reports whether the quote's pricing window has passed
func (q *Quote) Expired(now time.Time) bool {
	return now.After(q.ExpirationDate)
}

// ConfirmSummary is what the final confirmation screen displays
type ConfirmSummary struct {
	Direction          Direction
	SourceAmount       decimal.Decimal
	SourceCurrencyCode string
	TargetAmount       decimal.Decimal
	TargetCurrencyCode string
}
