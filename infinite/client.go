package infinite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/EdgeApp/infinite-ramp/core"
)

// ErrSchema is returned when a partner response does not match the expected
// shape
var ErrSchema = errors.New("malformed partner response")

// DefaultTimeout bounds a single partner round-trip
const DefaultTimeout = 30 * time.Second

// Config configures a partner API client
type Config struct {
	APIURL string
	OrgID  string

	// HTTPClient overrides the default client, mainly for tests
	HTTPClient *http.Client
}

// AuthState is the client's session with the partner. A token is valid iff
// present and ExpiresAt is in the future.
type AuthState struct {
	Token      string
	ExpiresAt  time.Time
	CustomerID string
	SessionID  string
	Onboarded  bool
}

// Client issues typed requests against the partner's HTTP surface. It owns
// the session token and the reference-data cache for one provider
// connection. AuthState is replaced wholesale by VerifySignature and read by
// every workflow step; the documented access pattern is a single approve
// chain in flight per client, so no locking is used.
type Client struct {
	apiURL string
	orgID  string
	http   *http.Client

	auth AuthState

	countriesCache  *cacheEntry[CountriesResponse]
	currenciesCache *cacheEntry[CurrenciesResponse]

	now func() time.Time
}

// New creates a partner API client
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		apiURL: cfg.APIURL,
		orgID:  cfg.OrgID,
		http:   httpClient,
		now:    time.Now,
	}
}

// Auth returns the current session state
func (c *Client) Auth() AuthState {
	return c.auth
}

// IsAuthenticated reports whether the client holds a non-expired token
func (c *Client) IsAuthenticated() bool {
	return c.auth.Token != "" && c.now().Before(c.auth.ExpiresAt)
}

// ClearAuth resets the session state, e.g. on logout or detected
// invalidation
func (c *Client) ClearAuth() {
	c.auth = AuthState{}
}

// SaveCustomerID records a customer id obtained outside of signature
// verification, e.g. after customer creation
func (c *Client) SaveCustomerID(customerID string) {
	c.auth.CustomerID = customerID
}

// GetChallenge requests an authentication challenge for a public key.
// Unauthenticated.
func (c *Client) GetChallenge(ctx context.Context, publicKey string) (ChallengeResponse, error) {
	var out ChallengeResponse
	body := map[string]string{"public_key": publicKey}
	err := c.do(ctx, http.MethodPost, "/v1/auth/challenge", false, body, &out)
	return out, err
}

// VerifySignature exchanges a signed challenge for a session. On success the
// client's AuthState is replaced wholesale; this is the only mutator of the
// token.
func (c *Client) VerifySignature(ctx context.Context, params VerifyParams) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/verify", false, params, &out); err != nil {
		return AuthResponse{}, err
	}

	state := AuthState{
		Token:     out.AccessToken,
		ExpiresAt: c.now().Add(time.Duration(out.ExpiresIn) * time.Second),
		SessionID: out.SessionID,
		Onboarded: out.Onboarded,
	}
	if out.CustomerID != nil {
		state.CustomerID = *out.CustomerID
	}
	c.auth = state

	return out, nil
}

// CreateCustomer creates a customer record. May run pre-authentication. When
// the email is already registered the partner answers with an OTP round
// instead of a customer record.
func (c *Client) CreateCustomer(ctx context.Context, params CustomerRequest) (CustomerResult, error) {
	var out customerResponse
	if err := c.do(ctx, http.MethodPost, "/v1/customers", false, params, &out); err != nil {
		return CustomerResult{}, err
	}
	return CustomerResult{CustomerID: out.Customer.ID, OTPSent: out.OTPSent}, nil
}

// VerifyOTP resolves the duplicate-email OTP round and returns the existing
// customer
func (c *Client) VerifyOTP(ctx context.Context, params VerifyOTPParams) (CustomerResult, error) {
	var out customerResponse
	if err := c.do(ctx, http.MethodPost, "/v1/customers/verify-otp", false, params, &out); err != nil {
		return CustomerResult{}, err
	}
	return CustomerResult{CustomerID: out.Customer.ID}, nil
}

// GetKycStatus returns the identity-verification status of a customer
func (c *Client) GetKycStatus(ctx context.Context, customerID string) (KycStatusResponse, error) {
	var out KycStatusResponse
	err := c.do(ctx, http.MethodGet, "/v1/customers/"+url.PathEscape(customerID)+"/kyc", true, nil, &out)
	return out, err
}

// GetKycLink returns the hosted identity-verification URL for a customer
func (c *Client) GetKycLink(ctx context.Context, customerID, redirectURL string) (KycLinkResponse, error) {
	var out KycLinkResponse
	path := "/v1/customers/" + url.PathEscape(customerID) + "/kyc-link?redirectUrl=" + url.QueryEscape(redirectURL)
	err := c.do(ctx, http.MethodGet, path, true, nil, &out)
	return out, err
}

// GetTosStatus returns the terms-of-service state for the session's customer
func (c *Client) GetTosStatus(ctx context.Context) (TosResponse, error) {
	var out TosResponse
	err := c.do(ctx, http.MethodGet, "/v1/tos", true, nil, &out)
	return out, err
}

// AddBankAccount links a bank account to the session's customer
func (c *Client) AddBankAccount(ctx context.Context, params BankAccountParams) (BankAccountResponse, error) {
	var out BankAccountResponse
	err := c.do(ctx, http.MethodPost, "/v1/accounts", true, params, &out)
	return out, err
}

// GetCustomerAccounts lists the linked payout accounts of a customer. Always
// a live call; account state is too costly to serve stale.
func (c *Client) GetCustomerAccounts(ctx context.Context, customerID string) (AccountsResponse, error) {
	var out AccountsResponse
	err := c.do(ctx, http.MethodGet, "/v1/accounts?customerId="+url.QueryEscape(customerID), true, nil, &out)
	return out, err
}

// CreateQuote prices a conversion. May run pre-authentication.
func (c *Client) CreateQuote(ctx context.Context, params QuoteParams) (QuoteResponse, error) {
	var out QuoteResponse
	err := c.do(ctx, http.MethodPost, "/v1/quotes", false, params, &out)
	return out, err
}

// CreateTransfer executes a confirmed conversion
func (c *Client) CreateTransfer(ctx context.Context, params TransferParams) (TransferResponse, error) {
	var out TransferResponse
	err := c.do(ctx, http.MethodPost, "/v1/transfers", true, params, &out)
	return out, err
}

// GetTransferStatus returns the current state of a transfer
func (c *Client) GetTransferStatus(ctx context.Context, transferID string) (TransferResponse, error) {
	var out TransferResponse
	err := c.do(ctx, http.MethodGet, "/v1/transfers/"+url.PathEscape(transferID), true, nil, &out)
	return out, err
}

// do issues one request. authRequired gates on a valid token; a valid token
// is attached either way.
func (c *Client) do(ctx context.Context, method, path string, authRequired bool, body, out any) error {
	if authRequired && !c.IsAuthenticated() {
		return fmt.Errorf("%s %s: %w", method, path, core.ErrAuthRequired)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.orgID != "" {
		req.Header.Set("X-Org-Id", c.orgID)
	}
	if c.IsAuthenticated() {
		req.Header.Set("Authorization", "Bearer "+c.auth.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrSchema, err)
	}

	return nil
}

// parseAPIError maps a non-2xx body onto APIError, accepting both partner
// error shapes
func parseAPIError(status int, raw []byte) error {
	var problem errorResponse
	if err := json.Unmarshal(raw, &problem); err == nil && problem.Title != "" {
		return &APIError{Status: status, Title: problem.Title, Detail: problem.Detail}
	}

	var gateway httpErrorResponse
	if err := json.Unmarshal(raw, &gateway); err == nil && gateway.Error != "" {
		detail := ""
		switch msg := gateway.Message.(type) {
		case string:
			detail = msg
		case []any:
			for i, part := range msg {
				if s, ok := part.(string); ok {
					if i > 0 {
						detail += "; "
					}
					detail += s
				}
			}
		}
		return &APIError{Status: status, Title: gateway.Error, Detail: detail}
	}

	return &APIError{Status: status, Title: http.StatusText(status), Detail: string(raw)}
}
