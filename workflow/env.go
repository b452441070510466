package workflow

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/infinite"
	"github.com/EdgeApp/infinite-ramp/ports"
)

// Durable storage keys
const (
	storageKeyPrivateKey  = "infinite_auth_private_key"
	storageKeyPluginState = "infinite_plugin_state"
)

// PluginState is the durable per-plugin onboarding state. It lives for the
// app session, is persisted as a blob to the plugin's key/value store, and
// is never deleted automatically. The private key is stored under its own
// key, hex encoded.
type PluginState struct {
	CustomerID    string         `json:"customerId,omitempty"`
	BankAccountID string         `json:"bankAccountId,omitempty"`
	KycStatus     core.KycStatus `json:"kycStatus,omitempty"`

	privateKey *ecdsa.PrivateKey
}

// Env is the shared utility bundle handed to every step of one approve
// invocation
type Env struct {
	API      *infinite.Client
	Store    ports.Store
	Screens  ports.Screens
	Browser  ports.Browser
	State    *State
	Plugin   *PluginState
	PluginID string
	Log      *slog.Logger

	// Now overrides the step clock, mainly for tests; nil means time.Now
	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// LoadPluginState restores the durable blob into Env.Plugin. A missing blob
// is not an error; the state is created lazily the first time a step needs
// it.
func (e *Env) LoadPluginState(ctx context.Context) error {
	raw, err := e.Store.GetItem(ctx, e.PluginID, storageKeyPluginState)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load plugin state: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), e.Plugin); err != nil {
		return fmt.Errorf("failed to decode plugin state: %w", err)
	}
	return nil
}

// SavePluginState persists the durable blob
func (e *Env) SavePluginState(ctx context.Context) error {
	raw, err := json.Marshal(e.Plugin)
	if err != nil {
		return fmt.Errorf("failed to encode plugin state: %w", err)
	}
	if err := e.Store.SetItem(ctx, e.PluginID, storageKeyPluginState, string(raw)); err != nil {
		return fmt.Errorf("failed to save plugin state: %w", err)
	}
	return nil
}

// PrivateKey returns the plugin's authentication key, checking memory, then
// durable storage, then generating and persisting a fresh one
func (e *Env) PrivateKey(ctx context.Context) (*ecdsa.PrivateKey, error) {
	if e.Plugin.privateKey != nil {
		return e.Plugin.privateKey, nil
	}

	stored, err := e.Store.GetItem(ctx, e.PluginID, storageKeyPrivateKey)
	switch {
	case err == nil:
		key, err := infinite.PrivateKeyFromHex(stored)
		if err != nil {
			return nil, err
		}
		e.Plugin.privateKey = key
		return key, nil

	case errors.Is(err, core.ErrNotFound):
		key, err := infinite.NewPrivateKey()
		if err != nil {
			return nil, err
		}
		if err := e.Store.SetItem(ctx, e.PluginID, storageKeyPrivateKey, infinite.PrivateKeyHex(key)); err != nil {
			return nil, fmt.Errorf("failed to persist private key: %w", err)
		}
		e.Plugin.privateKey = key
		return key, nil

	default:
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
}

// presentMode applies the navigation policy for a step's first screen
func (e *Env) presentMode(step string) ports.PresentMode {
	return e.State.PresentMode(step)
}
