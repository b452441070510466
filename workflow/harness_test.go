package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EdgeApp/infinite-ramp/adapters/store"
	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/infinite"
	"github.com/EdgeApp/infinite-ramp/ports"
)

// fakePartner is a scripted in-memory stand-in for the partner API. Status
// sequences are consumed one entry per poll; the last entry repeats.
type fakePartner struct {
	mu sync.Mutex

	verifyCustomerID string
	otpOnCreate      bool
	kycStatuses      []core.KycStatus
	tosStatuses      []core.TosStatus
	accounts         []infinite.Account

	challengeCalls int
	verifyCalls    int
	customerCalls  int
	otpCalls       int
	kycLinkCalls   int
	accountAdds    int
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

	mux.HandleFunc("POST /v1/auth/challenge", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.challengeCalls++
		p.mu.Unlock()
		reply(w, map[string]any{"nonce": "nonce-1", "message": "Sign this message: nonce-1"})
	})

	mux.HandleFunc("POST /v1/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.verifyCalls++
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
		otp := p.otpOnCreate
		p.mu.Unlock()

		if otp {
			reply(w, map[string]any{"otpSent": true})
			return
		}
		reply(w, map[string]any{"customer": map[string]any{"id": "cus_new"}})
	})

	mux.HandleFunc("POST /v1/customers/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.otpCalls++
		p.mu.Unlock()
		reply(w, map[string]any{"customer": map[string]any{"id": "cus_existing"}})
	})

	mux.HandleFunc("GET /v1/customers/{id}/kyc", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"kycStatus": p.nextKyc()})
	})

	mux.HandleFunc("GET /v1/customers/{id}/kyc-link", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.kycLinkCalls++
		p.mu.Unlock()
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
		p.accountAdds++
		p.accounts = append(p.accounts, infinite.Account{ID: "bank_1"})
		p.mu.Unlock()
		reply(w, map[string]any{"id": "bank_1"})
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

	calls []string
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
	return f.confirmOK, f.confirmErr
}

type fakeBrowser struct {
	urls []string
	err  error
}

func (b *fakeBrowser) OpenURL(ctx context.Context, url string) error {
	b.urls = append(b.urls, url)
	return b.err
}

func newTestEnv(t *testing.T, partner *fakePartner, screens *fakeScreens, browser *fakeBrowser) *Env {
	t.Helper()

	server := httptest.NewServer(partner.handler())
	t.Cleanup(server.Close)

	return &Env{
		API:      infinite.New(infinite.Config{APIURL: server.URL, OrgID: "org_test"}),
		Store:    store.NewMemoryStore(),
		Screens:  screens,
		Browser:  browser,
		State:    NewState(ChainOrder...),
		Plugin:   &PluginState{},
		PluginID: "infinite",
		Log:      discardLogger(),
	}
}

func authenticateEnv(t *testing.T, env *Env) {
	t.Helper()
	require.NoError(t, Authenticate().Run(context.Background(), env))
	require.True(t, env.API.IsAuthenticated())
}
