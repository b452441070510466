package infinite

import (
	"fmt"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/shopspring/decimal"
)

// ChallengeResponse is the partner's answer to a challenge request
type ChallengeResponse struct {
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}

// VerifyParams is the signed-challenge verification request
type VerifyParams struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
	Platform  string `json:"platform"`
}

// AuthResponse is the partner's answer to signature verification
type AuthResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   int64   `json:"expires_in"` // seconds
	CustomerID  *string `json:"customer_id"`
	SessionID   string  `json:"session_id"`
	Onboarded   bool    `json:"onboarded"`
}

// QuoteFlow is the partner's conversion direction
type QuoteFlow string

const (
	FlowOnRamp  QuoteFlow = "ONRAMP"
	FlowOffRamp QuoteFlow = "OFFRAMP"
)

// QuoteLegParams describes one side of a quote request. Amount is set on
// exactly one leg.
type QuoteLegParams struct {
	Asset   string           `json:"asset"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Network string           `json:"network,omitempty"`
}

// QuoteParams is a quote creation request
type QuoteParams struct {
	Flow   QuoteFlow      `json:"flow"`
	Source QuoteLegParams `json:"source"`
	Target QuoteLegParams `json:"target"`
}

// QuoteLeg is one priced side of a quote response
type QuoteLeg struct {
	Amount decimal.Decimal `json:"amount"`
}

// QuoteResponse is the partner's priced quote
type QuoteResponse struct {
	Source    QuoteLeg `json:"source"`
	Target    QuoteLeg `json:"target"`
	ExpiresAt *string  `json:"expiresAt"` // RFC 3339, may be absent
}

// TransferEndpoint describes the source or destination of a transfer
type TransferEndpoint struct {
	Currency    string `json:"currency"`
	Network     string `json:"network"`
	AccountID   string `json:"accountId,omitempty"`
	FromAddress string `json:"fromAddress,omitempty"`
	ToAddress   string `json:"toAddress,omitempty"`
}

// TransferParams is a transfer creation request
type TransferParams struct {
	Type              QuoteFlow        `json:"type"`
	Amount            decimal.Decimal  `json:"amount"`
	Source            TransferEndpoint `json:"source"`
	Destination       TransferEndpoint `json:"destination"`
	ClientReferenceID string           `json:"clientReferenceId,omitempty"`
	DeveloperFee      string           `json:"developerFee,omitempty"`
}

// DepositInstructions tells the user how to fund a transfer
type DepositInstructions struct {
	Amount            decimal.Decimal `json:"amount"`
	BankAccountNumber *string         `json:"bankAccountNumber"`
	BankRoutingNumber *string         `json:"bankRoutingNumber"`
	BankName          *string         `json:"bankName"`
	ToAddress         *string         `json:"toAddress"`
}

// TransferResponse is the partner's view of a transfer
type TransferResponse struct {
	ID                        string               `json:"id"`
	Status                    string               `json:"status,omitempty"`
	SourceDepositInstructions *DepositInstructions `json:"sourceDepositInstructions,omitempty"`
}

// ContactInformation is the contact block of a customer record
type ContactInformation struct {
	Email string `json:"email"`
}

// IndividualData is the personal block of a customer record
type IndividualData struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Nationality string `json:"nationality"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

// CustomerAddress is the address block of a customer record
type CustomerAddress struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

// CustomerRequest is a customer creation request
type CustomerRequest struct {
	Type               string             `json:"type"` // "individual" or "business"
	CountryCode        string             `json:"countryCode"`
	ContactInformation ContactInformation `json:"contactInformation"`
	IndividualData     *IndividualData    `json:"individualData,omitempty"`
	Address            *CustomerAddress   `json:"address,omitempty"`
}

// CustomerResult is the outcome of customer creation. When the email is
// already registered the partner sends an OTP instead of a customer record,
// and OTPSent is true with an empty CustomerID.
type CustomerResult struct {
	CustomerID string
	OTPSent    bool
}

// customerResponse is the partner wire shape for a created customer
type customerResponse struct {
	Customer struct {
		ID string `json:"id"`
	} `json:"customer"`
	OTPSent bool `json:"otpSent"`
}

// VerifyOTPParams resolves the duplicate-email OTP round
type VerifyOTPParams struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// KycStatusResponse is the partner's identity-verification status
type KycStatusResponse struct {
	KycStatus core.KycStatus `json:"kycStatus"`
}

// KycLinkResponse carries the hosted identity-verification URL
type KycLinkResponse struct {
	URL string `json:"url"`
}

// TosResponse is the partner's terms-of-service state for a customer
type TosResponse struct {
	Status core.TosStatus `json:"status"`
	URL    string         `json:"url,omitempty"`
}

// BankAccountParams is a bank account creation request
type BankAccountParams struct {
	Type             string `json:"type"` // always "bank_account"
	BankName         string `json:"bankName"`
	AccountName      string `json:"accountName"`
	AccountOwnerName string `json:"accountOwnerName"`
	AccountNumber    string `json:"accountNumber"`
	RoutingNumber    string `json:"routingNumber"`
}

// BankAccountResponse is a created bank account
type BankAccountResponse struct {
	ID string `json:"id"`
}

// Account is one of a customer's linked payout accounts
type Account struct {
	ID string `json:"id"`
}

// AccountsResponse lists a customer's linked accounts
type AccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// PaymentMethods lists the rails available per direction
type PaymentMethods struct {
	OnRamp  []string `json:"onRamp"`
	OffRamp []string `json:"offRamp"`
}

// Country is one entry of the supported-countries reference data
type Country struct {
	Code                     string         `json:"code"`
	IsAllowed                bool           `json:"isAllowed"`
	SupportedFiatCurrencies  []string       `json:"supportedFiatCurrencies"`
	SupportedPaymentMethods  PaymentMethods `json:"supportedPaymentMethods"`
	MemberStates             []string       `json:"memberStates,omitempty"`
}

// CountriesResponse is the supported-countries reference data
type CountriesResponse struct {
	Countries []Country `json:"countries"`
}

// CurrencyNetwork is one chain a currency is available on
type CurrencyNetwork struct {
	Network         string  `json:"network"`
	NetworkCode     string  `json:"networkCode"`
	ContractAddress *string `json:"contractAddress"`
}

// Currency is one entry of the supported-currencies reference data
type Currency struct {
	Code              string            `json:"code"`
	Name              string            `json:"name"`
	Type              string            `json:"type"` // "crypto" or "fiat"
	SupportedNetworks []CurrencyNetwork `json:"supportedNetworks,omitempty"`
	SupportsOnRamp    bool              `json:"supportsOnRamp,omitempty"`
	SupportsOffRamp   bool              `json:"supportsOffRamp,omitempty"`
	OnRampCountries   []string          `json:"onRampCountries,omitempty"`
	OffRampCountries  []string          `json:"offRampCountries,omitempty"`
	MinAmount         decimal.Decimal   `json:"minAmount"`
	MaxAmount         decimal.Decimal   `json:"maxAmount"`
	Precision         int               `json:"precision"`
}

// CurrenciesResponse is the supported-currencies reference data
type CurrenciesResponse struct {
	Currencies []Currency `json:"currencies"`
}

// APIError is a non-2xx answer from the partner
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("infinite api error %d: %s: %s", e.Status, e.Title, e.Detail)
}

// errorResponse is the partner's problem-details error shape
type errorResponse struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// httpErrorResponse is the partner's alternate gateway error shape
type httpErrorResponse struct {
	Message    any    `json:"message"` // string or []string
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}
