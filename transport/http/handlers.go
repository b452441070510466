package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RampHandlers contains HTTP handlers for the ramp facade
type RampHandlers struct {
	rampService *service.RampService
}

// NewRampHandlers creates new ramp handlers
func NewRampHandlers(rampService *service.RampService) *RampHandlers {
	return &RampHandlers{
		rampService: rampService,
	}
}

type supportRequest struct {
	Direction        string `json:"direction" binding:"required"`
	CountryCode      string `json:"country_code" binding:"required"`
	StateProvince    string `json:"state_province"`
	FiatCurrencyCode string `json:"fiat_currency_code" binding:"required"`
	PluginID         string `json:"plugin_id" binding:"required"`
	TokenID          string `json:"token_id"`
}

// CheckSupport handles the support check request
func (h *RampHandlers) CheckSupport(c *gin.Context) {
	var req supportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result := h.rampService.CheckSupport(c.Request.Context(), core.CheckSupportRequest{
		Direction: core.Direction(req.Direction),
		RegionCode: core.RegionCode{
			CountryCode:       req.CountryCode,
			StateProvinceCode: req.StateProvince,
		},
		FiatAsset:   core.FiatAsset{CurrencyCode: req.FiatCurrencyCode},
		CryptoAsset: core.CryptoAsset{PluginID: req.PluginID, TokenID: req.TokenID},
	})

	c.JSON(http.StatusOK, gin.H{
		"supported":              result.Supported,
		"supported_amount_types": result.SupportedAmountTypes,
	})
}

type quoteRequest struct {
	Direction           string `json:"direction" binding:"required"`
	CountryCode         string `json:"country_code" binding:"required"`
	StateProvince       string `json:"state_province"`
	ExchangeAmount      string `json:"exchange_amount" binding:"required"`
	AmountType          string `json:"amount_type" binding:"required"`
	PluginID            string `json:"plugin_id" binding:"required"`
	TokenID             string `json:"token_id"`
	DisplayCurrencyCode string `json:"display_currency_code" binding:"required"`
	FiatCurrencyCode    string `json:"fiat_currency_code" binding:"required"`
}

type quoteResponse struct {
	ProviderID          string    `json:"provider_id"`
	Direction           string    `json:"direction"`
	FiatCurrencyCode    string    `json:"fiat_currency_code"`
	FiatAmount          string    `json:"fiat_amount"`
	DisplayCurrencyCode string    `json:"display_currency_code"`
	CryptoAmount        string    `json:"crypto_amount"`
	PaymentType         string    `json:"payment_type"`
	ExpirationDate      time.Time `json:"expiration_date"`
}

// FetchQuote handles the quote request. Approval is an in-process,
// interactive operation and is not exposed over HTTP.
func (h *RampHandlers) FetchQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	amount, err := decimal.NewFromString(req.ExchangeAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	quotes, err := h.rampService.FetchQuote(c.Request.Context(), core.QuoteRequest{
		Direction: core.Direction(req.Direction),
		RegionCode: core.RegionCode{
			CountryCode:       req.CountryCode,
			StateProvinceCode: req.StateProvince,
		},
		ExchangeAmount:      amount,
		AmountType:          core.AmountType(req.AmountType),
		PluginID:            req.PluginID,
		TokenID:             req.TokenID,
		DisplayCurrencyCode: req.DisplayCurrencyCode,
		FiatCurrencyCode:    req.FiatCurrencyCode,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}

	out := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, quoteResponse{
			ProviderID:          q.ProviderID,
			Direction:           string(q.Direction),
			FiatCurrencyCode:    q.FiatCurrencyCode,
			FiatAmount:          q.FiatAmount.String(),
			DisplayCurrencyCode: q.DisplayCurrencyCode,
			CryptoAmount:        q.CryptoAmount.String(),
			PaymentType:         q.PaymentType,
			ExpirationDate:      q.ExpirationDate,
		})
	}

	c.JSON(http.StatusOK, gin.H{"quotes": out})
}

// writeQuoteError maps typed provider errors to a specific payload and
// everything else to a gateway failure
func writeQuoteError(c *gin.Context, err error) {
	var providerErr *core.ProviderError
	if errors.As(err, &providerErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         string(providerErr.Kind),
			"amount":        providerErr.Amount.String(),
			"currency_code": providerErr.CurrencyCode,
		})
		return
	}

	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch quote"})
}
