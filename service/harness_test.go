package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/EdgeApp/infinite-ramp/adapters/store"
	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/infinite"
	"github.com/EdgeApp/infinite-ramp/ports"
)

const testUSDCContract = "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultCountries() infinite.CountriesResponse {
	return infinite.CountriesResponse{Countries: []infinite.Country{
		{
			Code:                    "US",
			IsAllowed:               true,
			SupportedFiatCurrencies: []string{"USD"},
			SupportedPaymentMethods: infinite.PaymentMethods{OnRamp: []string{"wire"}},
		},
		{
			Code:                    "EU",
			IsAllowed:               true,
			SupportedFiatCurrencies: []string{"EUR"},
			SupportedPaymentMethods: infinite.PaymentMethods{OnRamp: []string{"wire"}},
			MemberStates:            []string{"DE", "FR"},
		},
		{Code: "KP", IsAllowed: false},
	}}
}

func defaultCurrencies() infinite.CurrenciesResponse {
	contract := testUSDCContract
	return infinite.CurrenciesResponse{Currencies: []infinite.Currency{
		{
			Code: "USDC",
			Type: "crypto",
			SupportedNetworks: []infinite.CurrencyNetwork{
				{Network: "Polygon", NetworkCode: "POLYGON", ContractAddress: &contract},
			},
			SupportsOnRamp:  true,
			OnRampCountries: []string{"US", "EU"},
			MinAmount:       decimal.NewFromInt(1),
			MaxAmount:       decimal.NewFromInt(25000),
		},
		{
			Code:              "BTC",
			Type:              "crypto",
			SupportedNetworks: []infinite.CurrencyNetwork{{NetworkCode: "BITCOIN"}},
			SupportsOnRamp:    false,
		},
		{
			Code:      "USD",
			Type:      "fiat",
			MinAmount: decimal.NewFromInt(10),
			MaxAmount: decimal.NewFromInt(10000),
		},
	}}
}

// fakePartner scripts the full partner surface the facade touches: reference
// data, auth, onboarding, quotes, and transfers
type fakePartner struct {
	mu sync.Mutex

	countries  infinite.CountriesResponse
	currencies infinite.CurrenciesResponse

	verifyCustomerID string
	kycStatuses      []core.KycStatus
	tosStatuses      []core.TosStatus
	accounts         []infinite.Account

	quoteExpiresAt string
	transferFail   bool
	refDataFail    bool

	quoteCalls    int
	transferCalls int
	customerCalls int

	lastQuote    infinite.QuoteParams
	lastTransfer infinite.TransferParams
}

func newFakePartner() *fakePartner {
	return &fakePartner{
		countries:  defaultCountries(),
		currencies: defaultCurrencies(),
	}
}

func (p *fakePartner) nextKyc() core.KycStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.kycStatuses) == 0 {
		return core.KycStatusActive
	}
	status := p.kycStatuses[0]
	if len(p.kycStatuses) > 1 {
		p.kycStatuses = p.kycStatuses[1:]
	}
	return status
}

func (p *fakePartner) nextTos() core.TosStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tosStatuses) == 0 {
		return core.TosStatusNotRequired
	}
	status := p.tosStatuses[0]
	if len(p.tosStatuses) > 1 {
		p.tosStatuses = p.tosStatuses[1:]
	}
	return status
}

func (p *fakePartner) handler() http.Handler {
	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/ramp/countries", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		countries := p.countries
		fail := p.refDataFail
		p.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			reply(w, map[string]any{"title": "Internal Server Error"})
			return
		}
		reply(w, countries)
	})

	mux.HandleFunc("GET /v1/ramp/currencies", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		currencies := p.currencies
		fail := p.refDataFail
		p.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			reply(w, map[string]any{"title": "Internal Server Error"})
			return
		}
		reply(w, currencies)
	})

	mux.HandleFunc("POST /v1/auth/challenge", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"nonce": "nonce-1", "message": "Sign this message: nonce-1"})
	})

	mux.HandleFunc("POST /v1/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		customerID := p.verifyCustomerID
		p.mu.Unlock()

		out := map[string]any{
			"access_token": "tok-1",
			"expires_in":   3600,
			"session_id":   "sess-1",
			"onboarded":    customerID != "",
		}
		if customerID != "" {
			out["customer_id"] = customerID
		}
		reply(w, out)
	})

	mux.HandleFunc("POST /v1/customers", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.customerCalls++
		p.mu.Unlock()
		reply(w, map[string]any{"customer": map[string]any{"id": "cus_new"}})
	})

	mux.HandleFunc("GET /v1/customers/{id}/kyc", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"kycStatus": p.nextKyc()})
	})

	mux.HandleFunc("GET /v1/customers/{id}/kyc-link", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"url": "https://verify.example/session-1"})
	})

	mux.HandleFunc("GET /v1/tos", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"status": p.nextTos(), "url": "https://terms.example"})
	})

	mux.HandleFunc("GET /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		accounts := append([]infinite.Account(nil), p.accounts...)
		p.mu.Unlock()
		reply(w, map[string]any{"accounts": accounts})
	})

	mux.HandleFunc("POST /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.accounts = append(p.accounts, infinite.Account{ID: "bank_1"})
		p.mu.Unlock()
		reply(w, map[string]any{"id": "bank_1"})
	})

	mux.HandleFunc("POST /v1/quotes", func(w http.ResponseWriter, r *http.Request) {
		var params infinite.QuoteParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			reply(w, map[string]any{"title": "Bad Request", "detail": err.Error()})
			return
		}

		p.mu.Lock()
		p.quoteCalls++
		p.lastQuote = params
		expiresAt := p.quoteExpiresAt
		p.mu.Unlock()

		// Price at a flat 0.5% spread off whichever leg carries the amount.
		rate := decimal.RequireFromString("0.995")
		var source, target decimal.Decimal
		switch {
		case params.Source.Amount != nil:
			source = *params.Source.Amount
			target = source.Mul(rate)
		case params.Target.Amount != nil:
			target = *params.Target.Amount
			source = target.Div(rate).Round(8)
		}

		out := map[string]any{
			"source": map[string]any{"amount": source},
			"target": map[string]any{"amount": target},
		}
		if expiresAt != "" {
			out["expiresAt"] = expiresAt
		}
		reply(w, out)
	})

	mux.HandleFunc("POST /v1/transfers", func(w http.ResponseWriter, r *http.Request) {
		var params infinite.TransferParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			reply(w, map[string]any{"title": "Bad Request", "detail": err.Error()})
			return
		}

		p.mu.Lock()
		p.transferCalls++
		p.lastTransfer = params
		fail := p.transferFail
		p.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			reply(w, map[string]any{"title": "Internal Server Error", "detail": "transfer rejected"})
			return
		}

		reply(w, map[string]any{
			"id":     "tr_1",
			"status": "AWAITING_FUNDS",
			"sourceDepositInstructions": map[string]any{
				"amount":            params.Amount,
				"bankName":          "First Federal",
				"bankAccountNumber": "000123456789",
				"bankRoutingNumber": "026009593",
			},
		})
	})

	return mux
}

// fakeScreens resolves every screen from scripted answers and records each
// call as "name:mode"
type fakeScreens struct {
	contact    core.ContactInfo
	contactErr error
	otp        string
	otpErr     error
	bank       core.BankDetails
	bankErr    error
	confirmOK  bool
	confirmErr error
	pendingErr error

	summaries []core.ConfirmSummary
	calls     []string
}

func (f *fakeScreens) record(name string, mode ports.PresentMode) {
	f.calls = append(f.calls, name+":"+string(mode))
}

func (f *fakeScreens) ShowContactForm(ctx context.Context, mode ports.PresentMode) (core.ContactInfo, error) {
	f.record("contact", mode)
	return f.contact, f.contactErr
}

func (f *fakeScreens) ShowOTPEntry(ctx context.Context, mode ports.PresentMode, email string) (string, error) {
	f.record("otp", mode)
	return f.otp, f.otpErr
}

func (f *fakeScreens) ShowPendingStatus(ctx context.Context, mode ports.PresentMode, title string, check ports.StatusCheck) error {
	f.record("pending", mode)
	if f.pendingErr != nil {
		return f.pendingErr
	}
	for i := 0; i < 50; i++ {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return fmt.Errorf("status polling never finished")
}

func (f *fakeScreens) ShowBankForm(ctx context.Context, mode ports.PresentMode) (core.BankDetails, error) {
	f.record("bank", mode)
	return f.bank, f.bankErr
}

func (f *fakeScreens) ShowConfirmation(ctx context.Context, mode ports.PresentMode, summary core.ConfirmSummary) (bool, error) {
	f.record("confirm", mode)
	f.summaries = append(f.summaries, summary)
	return f.confirmOK, f.confirmErr
}

type fakeBrowser struct {
	urls []string
}

func (b *fakeBrowser) OpenURL(ctx context.Context, url string) error {
	b.urls = append(b.urls, url)
	return nil
}

type fakeWallet struct {
	address string
}

func (w *fakeWallet) ReceiveAddress(ctx context.Context) (string, error) {
	return w.address, nil
}

type fakePublisher struct {
	events []ports.ConversionEvent
	err    error
}

func (p *fakePublisher) PublishConversion(ctx context.Context, event ports.ConversionEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type testRig struct {
	svc     *RampService
	partner *fakePartner
	screens *fakeScreens
	browser *fakeBrowser
	events  *fakePublisher
}

func newTestRig(t *testing.T, partner *fakePartner) *testRig {
	t.Helper()

	server := httptest.NewServer(partner.handler())
	t.Cleanup(server.Close)

	screens := &fakeScreens{
		contact: core.ContactInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		},
		bank: core.BankDetails{
			BankName:      "First Federal",
			AccountNumber: "000123456789",
			RoutingNumber: "026009593",
		},
		confirmOK: true,
	}
	browser := &fakeBrowser{}
	events := &fakePublisher{}

	svc := NewRampService(
		infinite.New(infinite.Config{APIURL: server.URL, OrgID: "org_test"}),
		store.NewMemoryStore(),
		screens,
		browser,
		events,
		discardLogger(),
		Config{Tokens: map[string]map[string]string{
			"polygon": {"usdc": "0x3C499c542cEF5E3811e1192ce70d8cC03d5c3359"},
		}},
	)

	return &testRig{svc: svc, partner: partner, screens: screens, browser: browser, events: events}
}

func buyRequest(amount string) core.QuoteRequest {
	return core.QuoteRequest{
		Direction:           core.DirectionBuy,
		RegionCode:          core.RegionCode{CountryCode: "US"},
		ExchangeAmount:      decimal.RequireFromString(amount),
		AmountType:          core.AmountTypeFiat,
		PluginID:            "polygon",
		TokenID:             "usdc",
		DisplayCurrencyCode: "USDC",
		FiatCurrencyCode:    "iso:USD",
	}
}

func supportRequest() core.CheckSupportRequest {
	return core.CheckSupportRequest{
		Direction:   core.DirectionBuy,
		RegionCode:  core.RegionCode{CountryCode: "US"},
		FiatAsset:   core.FiatAsset{CurrencyCode: "iso:USD"},
		CryptoAsset: core.CryptoAsset{PluginID: "polygon", TokenID: "usdc"},
	}
}
