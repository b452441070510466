package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/infinite"
	"github.com/EdgeApp/infinite-ramp/ports"
	"github.com/EdgeApp/infinite-ramp/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// ProviderID identifies this ramp provider to the aggregation host
	ProviderID = "infinite"

	// DisplayName is the partner's user-facing name
	DisplayName = "Infinite"

	// paymentType is the only payment rail the partner currently supports
	paymentType = "wire"

	// defaultQuoteExpiry applies when the partner omits an expiry
	defaultQuoteExpiry = 5 * time.Minute
)

// Config configures the ramp service
type Config struct {
	// Tokens maps chain plugin id -> token id -> contract address, for
	// resolving which partner currency a wallet asset is
	Tokens map[string]map[string]string
}

// RampService is the plugin facade: support checks, quote fetching, and the
// onboarding chain behind quote approval
type RampService struct {
	api     *infinite.Client
	store   ports.Store
	screens ports.Screens
	browser ports.Browser
	events  ports.EventPublisher
	log     *slog.Logger
	tokens  map[string]map[string]string

	now func() time.Time
}

// NewRampService creates the facade
func NewRampService(
	api *infinite.Client,
	store ports.Store,
	screens ports.Screens,
	browser ports.Browser,
	events ports.EventPublisher,
	log *slog.Logger,
	cfg Config,
) *RampService {
	if log == nil {
		log = slog.Default()
	}
	return &RampService{
		api:     api,
		store:   store,
		screens: screens,
		browser: browser,
		events:  events,
		log:     log,
		tokens:  cfg.Tokens,
		now:     time.Now,
	}
}

// lookupKey resolves a wallet asset to the normalized-currency index key
func (s *RampService) lookupKey(pluginID, tokenID string) (string, bool) {
	if tokenID == "" {
		return "native", true
	}
	contract, ok := s.tokens[pluginID][tokenID]
	if !ok {
		return "", false
	}
	return normalizedKeyForContract(contract), true
}

func normalizedKeyForContract(contract string) string {
	if contract == "" {
		return "native"
	}
	return strings.ToLower(contract)
}

// CheckSupport is a pure read-only support check against cached reference
// data and the static network map. It never mutates state, never shows a
// screen, and reports unsupported rather than erroring on internal failure.
func (s *RampService) CheckSupport(ctx context.Context, req core.CheckSupportRequest) core.SupportResult {
	unsupported := core.SupportResult{}

	// Sell is not supported yet
	if req.Direction == core.DirectionSell {
		return unsupported
	}

	if _, ok := providerNetwork(req.CryptoAsset.PluginID); !ok {
		return unsupported
	}

	countries, err := s.api.GetCountries(ctx)
	if err != nil {
		s.log.Error("support check failed to load countries", "err", err)
		return unsupported
	}
	currencies, err := s.api.GetCurrencies(ctx)
	if err != nil {
		s.log.Error("support check failed to load currencies", "err", err)
		return unsupported
	}

	country := findCountry(countries, req.RegionCode.CountryCode)
	if country == nil {
		return unsupported
	}

	fiat := cleanFiatCode(req.FiatAsset.CurrencyCode)
	if !contains(country.SupportedFiatCurrencies, fiat) {
		return unsupported
	}

	if len(paymentMethodsFor(country, req.Direction)) == 0 {
		return unsupported
	}

	target := s.findTargetCurrency(normalizeCurrencies(currencies), req.CryptoAsset.PluginID, req.CryptoAsset.TokenID)
	if target == nil {
		return unsupported
	}

	if req.Direction == core.DirectionBuy && !target.SupportsOnRamp {
		return unsupported
	}
	if len(target.OnRampCountries) > 0 && !contains(target.OnRampCountries, country.Code) {
		return unsupported
	}

	return core.SupportResult{
		Supported:            true,
		SupportedAmountTypes: []core.AmountType{core.AmountTypeFiat, core.AmountTypeCrypto},
	}
}

// FetchQuote validates the request against live reference data, prices it
// with the partner, and wraps the result in a Quote whose Approve runs the
// onboarding chain. Business-rule failures come back as typed
// ProviderErrors so the host can render a specific message.
func (s *RampService) FetchQuote(ctx context.Context, req core.QuoteRequest) ([]*core.Quote, error) {
	if req.AmountType != core.AmountTypeFiat && req.AmountType != core.AmountTypeCrypto {
		return nil, &core.ProviderError{ProviderID: ProviderID, Kind: core.KindAmountTypeUnsupported}
	}

	network, ok := providerNetwork(req.PluginID)
	if !ok {
		return nil, &core.ProviderError{ProviderID: ProviderID, Kind: core.KindAssetUnsupported}
	}

	countries, err := s.api.GetCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load countries: %w", err)
	}
	currencies, err := s.api.GetCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}

	country := findCountry(countries, req.RegionCode.CountryCode)
	if country == nil {
		return nil, &core.ProviderError{
			ProviderID:   ProviderID,
			Kind:         core.KindRegionRestricted,
			CurrencyCode: req.DisplayCurrencyCode,
		}
	}

	fiat := cleanFiatCode(req.FiatCurrencyCode)
	if !contains(country.SupportedFiatCurrencies, fiat) {
		return nil, &core.ProviderError{
			ProviderID:   ProviderID,
			Kind:         core.KindFiatUnsupported,
			CurrencyCode: fiat,
		}
	}

	if len(paymentMethodsFor(country, req.Direction)) == 0 {
		return nil, &core.ProviderError{ProviderID: ProviderID, Kind: core.KindPaymentUnsupported}
	}

	target := s.findTargetCurrency(normalizeCurrencies(currencies), req.PluginID, req.TokenID)
	if target == nil {
		return nil, &core.ProviderError{ProviderID: ProviderID, Kind: core.KindAssetUnsupported}
	}

	directionSupported := (req.Direction == core.DirectionBuy && target.SupportsOnRamp) ||
		(req.Direction == core.DirectionSell && target.SupportsOffRamp)
	if !directionSupported {
		return nil, &core.ProviderError{ProviderID: ProviderID, Kind: core.KindAssetUnsupported}
	}

	allowlist := target.OnRampCountries
	if req.Direction == core.DirectionSell {
		allowlist = target.OffRampCountries
	}
	if len(allowlist) > 0 && !contains(allowlist, country.Code) {
		return nil, &core.ProviderError{
			ProviderID:   ProviderID,
			Kind:         core.KindRegionRestricted,
			CurrencyCode: req.DisplayCurrencyCode,
		}
	}

	fiatCurrency := findFiatCurrency(currencies, fiat)
	if fiatCurrency == nil {
		return nil, &core.ProviderError{
			ProviderID:   ProviderID,
			Kind:         core.KindFiatUnsupported,
			CurrencyCode: fiat,
		}
	}

	amount, empty, err := s.resolveAmount(req, fiatCurrency, target)
	if err != nil {
		return nil, err
	}
	if empty {
		return []*core.Quote{}, nil
	}

	params := buildQuoteParams(req, fiat, target.Code, network, amount)

	priced, err := s.api.CreateQuote(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	fiatAmount, cryptoAmount := splitAmounts(req.Direction, priced)

	quote := &core.Quote{
		ProviderID:          ProviderID,
		DisplayCurrencyCode: req.DisplayCurrencyCode,
		CryptoAmount:        cryptoAmount,
		FiatCurrencyCode:    req.FiatCurrencyCode,
		FiatAmount:          fiatAmount,
		Direction:           req.Direction,
		RegionCode:          req.RegionCode,
		PaymentType:         paymentType,
		ExpirationDate:      s.quoteExpiry(priced),
		Close:               func() {},
	}
	quote.Approve = s.buildApprove(req, params, fiat, target.Code, network)

	return []*core.Quote{quote}, nil
}

// buildApprove closes over the quote parameters and runs the onboarding
// chain with a fresh per-call state tracker. PluginState writes assume a
// single approve chain in flight per plugin instance; this is a documented
// assumption, not an enforced invariant.
func (s *RampService) buildApprove(req core.QuoteRequest, params infinite.QuoteParams, fiat, cryptoCode, network string) core.ApproveFunc {
	return func(ctx context.Context, wallet core.Wallet) error {
		env := &workflow.Env{
			API:      s.api,
			Store:    s.store,
			Screens:  s.screens,
			Browser:  s.browser,
			State:    workflow.NewState(workflow.ChainOrder...),
			Plugin:   &workflow.PluginState{},
			PluginID: ProviderID,
			Log:      s.log,
		}
		if err := env.LoadPluginState(ctx); err != nil {
			return err
		}

		confirmed := false
		var fresh infinite.QuoteResponse

		// Always re-quote before the confirmation screen so the user never
		// confirms stale pricing, no matter how long onboarding took.
		summarize := func(ctx context.Context) (core.ConfirmSummary, error) {
			priced, err := s.api.CreateQuote(ctx, params)
			if err != nil {
				return core.ConfirmSummary{}, fmt.Errorf("failed to refresh quote: %w", err)
			}
			fresh = priced

			fiatAmount, cryptoAmount := splitAmounts(req.Direction, priced)
			summary := core.ConfirmSummary{Direction: req.Direction}
			if req.Direction == core.DirectionBuy {
				summary.SourceAmount = fiatAmount
				summary.SourceCurrencyCode = fiat
				summary.TargetAmount = cryptoAmount
				summary.TargetCurrencyCode = req.DisplayCurrencyCode
			} else {
				summary.SourceAmount = cryptoAmount
				summary.SourceCurrencyCode = req.DisplayCurrencyCode
				summary.TargetAmount = fiatAmount
				summary.TargetCurrencyCode = fiat
			}
			return summary, nil
		}

		err := workflow.Run(ctx, env,
			workflow.Authenticate(),
			workflow.AcceptTerms(),
			workflow.Kyc(req.RegionCode.CountryCode),
			workflow.BankAccount(),
			workflow.Confirmation(summarize, &confirmed),
		)
		if err != nil {
			return err
		}

		// Declined at confirmation, or the chain was cancelled upstream:
		// both end approval normally with no transfer.
		if !confirmed {
			return nil
		}

		address, err := wallet.ReceiveAddress(ctx)
		if err != nil {
			return fmt.Errorf("failed to get receive address: %w", err)
		}

		transferParams := infinite.TransferParams{
			Amount:            fresh.Source.Amount,
			ClientReferenceID: uuid.New().String(),
		}
		if req.Direction == core.DirectionBuy {
			transferParams.Type = infinite.FlowOnRamp
			transferParams.Source = infinite.TransferEndpoint{
				Currency:  fiat,
				Network:   paymentType,
				AccountID: env.Plugin.BankAccountID,
			}
			transferParams.Destination = infinite.TransferEndpoint{
				Currency:  cryptoCode,
				Network:   network,
				ToAddress: address,
			}
		} else {
			transferParams.Type = infinite.FlowOffRamp
			transferParams.Source = infinite.TransferEndpoint{
				Currency:    cryptoCode,
				Network:     network,
				FromAddress: address,
			}
			transferParams.Destination = infinite.TransferEndpoint{
				Currency:  fiat,
				Network:   paymentType,
				AccountID: env.Plugin.BankAccountID,
			}
		}

		transfer, err := s.api.CreateTransfer(ctx, transferParams)
		if err != nil {
			return fmt.Errorf("failed to create transfer: %w", err)
		}

		fiatAmount, cryptoAmount := splitAmounts(req.Direction, fresh)
		s.log.Info("transfer created",
			"transfer_id", transfer.ID,
			"direction", req.Direction,
			"fiat_amount", fiatAmount,
			"crypto_amount", cryptoAmount,
			"has_deposit_instructions", transfer.SourceDepositInstructions != nil)

		if s.events != nil {
			event := ports.ConversionEvent{
				ProviderID:         ProviderID,
				OrderID:            transfer.ID,
				Direction:          req.Direction,
				FiatCurrencyCode:   req.FiatCurrencyCode,
				FiatAmount:         fiatAmount,
				CryptoCurrencyCode: req.DisplayCurrencyCode,
				CryptoAmount:       cryptoAmount,
			}
			if err := s.events.PublishConversion(ctx, event); err != nil {
				// The transfer already exists; losing the analytics event is
				// not worth failing the approval.
				s.log.Warn("failed to publish conversion event", "err", err)
			}
		}

		return nil
	}
}

// resolveAmount applies the limit rules and returns the requested amount.
// empty means the request cannot produce a quote but is not an error (the
// original contract returns an empty quote list).
func (s *RampService) resolveAmount(req core.QuoteRequest, fiatCurrency, target *infinite.Currency) (decimal.Decimal, bool, error) {
	limits := fiatCurrency
	limitCurrency := cleanFiatCode(req.FiatCurrencyCode)
	if req.AmountType == core.AmountTypeCrypto {
		limits = target
		limitCurrency = req.DisplayCurrencyCode
	}

	if req.MaxAmount {
		max := limits.MaxAmount
		if max.IsZero() {
			return decimal.Decimal{}, true, nil
		}
		amount := max
		if req.MaxAmountLimit != nil && req.MaxAmountLimit.LessThan(amount) {
			amount = *req.MaxAmountLimit
		}
		if !limits.MinAmount.IsZero() && amount.LessThan(limits.MinAmount) {
			return decimal.Decimal{}, false, &core.ProviderError{
				ProviderID:   ProviderID,
				Kind:         core.KindUnderLimit,
				Amount:       limits.MinAmount,
				CurrencyCode: limitCurrency,
			}
		}
		return amount, false, nil
	}

	amount := req.ExchangeAmount
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, true, nil
	}
	if !limits.MinAmount.IsZero() && amount.LessThan(limits.MinAmount) {
		return decimal.Decimal{}, false, &core.ProviderError{
			ProviderID:   ProviderID,
			Kind:         core.KindUnderLimit,
			Amount:       limits.MinAmount,
			CurrencyCode: limitCurrency,
		}
	}
	if !limits.MaxAmount.IsZero() && amount.GreaterThan(limits.MaxAmount) {
		return decimal.Decimal{}, false, &core.ProviderError{
			ProviderID:   ProviderID,
			Kind:         core.KindOverLimit,
			Amount:       limits.MaxAmount,
			CurrencyCode: limitCurrency,
		}
	}
	return amount, false, nil
}

// quoteExpiry parses the partner's expiry or falls back to the default
// window
func (s *RampService) quoteExpiry(priced infinite.QuoteResponse) time.Time {
	if priced.ExpiresAt != nil {
		if expiry, err := time.Parse(time.RFC3339, *priced.ExpiresAt); err == nil {
			return expiry
		}
	}
	return s.now().Add(defaultQuoteExpiry)
}

func (s *RampService) findTargetCurrency(normalized normalizedCurrencies, pluginID, tokenID string) *infinite.Currency {
	key, ok := s.lookupKey(pluginID, tokenID)
	if !ok {
		return nil
	}
	return normalized[pluginID][key]
}

// buildQuoteParams pins the requested amount to the correct leg of the
// conversion
func buildQuoteParams(req core.QuoteRequest, fiat, cryptoCode, network string, amount decimal.Decimal) infinite.QuoteParams {
	fiatLeg := infinite.QuoteLegParams{Asset: fiat}
	cryptoLeg := infinite.QuoteLegParams{Asset: cryptoCode, Network: network}

	if req.AmountType == core.AmountTypeFiat {
		fiatLeg.Amount = &amount
	} else {
		cryptoLeg.Amount = &amount
	}

	if req.Direction == core.DirectionBuy {
		return infinite.QuoteParams{Flow: infinite.FlowOnRamp, Source: fiatLeg, Target: cryptoLeg}
	}
	return infinite.QuoteParams{Flow: infinite.FlowOffRamp, Source: cryptoLeg, Target: fiatLeg}
}

// splitAmounts maps a priced quote's legs onto fiat and crypto amounts
// based on direction
func splitAmounts(direction core.Direction, priced infinite.QuoteResponse) (fiatAmount, cryptoAmount decimal.Decimal) {
	if direction == core.DirectionBuy {
		return priced.Source.Amount, priced.Target.Amount
	}
	return priced.Target.Amount, priced.Source.Amount
}

func paymentMethodsFor(country *infinite.Country, direction core.Direction) []string {
	if direction == core.DirectionBuy {
		return country.SupportedPaymentMethods.OnRamp
	}
	return country.SupportedPaymentMethods.OffRamp
}

func findFiatCurrency(currencies infinite.CurrenciesResponse, code string) *infinite.Currency {
	for i := range currencies.Currencies {
		c := &currencies.Currencies[i]
		if c.Type == "fiat" && c.Code == code {
			return c
		}
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
