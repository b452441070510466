package ports

import (
	"context"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/shopspring/decimal"
)

// ConversionEvent records a completed buy or sell conversion
type ConversionEvent struct {
	ProviderID         string          `json:"provider_id"`
	OrderID            string          `json:"order_id"`
	Direction          core.Direction  `json:"direction"`
	FiatCurrencyCode   string          `json:"fiat_currency_code"`
	FiatAmount         decimal.Decimal `json:"fiat_amount"`
	CryptoCurrencyCode string          `json:"crypto_currency_code"`
	CryptoAmount       decimal.Decimal `json:"crypto_amount"`
}

// EventPublisher publishes conversion events to the host's analytics pipeline
type EventPublisher interface {
	PublishConversion(ctx context.Context, event ConversionEvent) error
}
