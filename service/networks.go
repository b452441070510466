package service

import (
	"strings"

	"github.com/EdgeApp/infinite-ramp/infinite"
)

// networkByPlugin maps wallet chain plugin ids onto the partner's network
// identifiers
var networkByPlugin = map[string]string{
	"bitcoin":   "BITCOIN",
	"ethereum":  "ETHEREUM",
	"polygon":   "POLYGON",
	"avalanche": "AVALANCHE",
	"base":      "BASE",
	"arbitrum":  "ARBITRUM",
	"optimism":  "OPTIMISM",
	"solana":    "SOLANA",
	"tron":      "TRON",
}

// pluginByNetwork is the reverse mapping, keyed by the partner's network
// code
var pluginByNetwork = func() map[string]string {
	m := make(map[string]string, len(networkByPlugin))
	for plugin, network := range networkByPlugin {
		m[network] = plugin
	}
	return m
}()

// providerNetwork resolves a chain plugin id to the partner network name
func providerNetwork(pluginID string) (string, bool) {
	network, ok := networkByPlugin[pluginID]
	return network, ok
}

// normalizedCurrencies indexes the partner's crypto currencies by chain
// plugin id and contract address ("native" for the chain asset)
type normalizedCurrencies map[string]map[string]*infinite.Currency

// normalizeCurrencies builds the lookup index from the raw reference data
func normalizeCurrencies(resp infinite.CurrenciesResponse) normalizedCurrencies {
	out := make(normalizedCurrencies)

	for i := range resp.Currencies {
		currency := &resp.Currencies[i]
		if currency.Type != "crypto" {
			continue
		}
		for _, network := range currency.SupportedNetworks {
			pluginID, ok := pluginByNetwork[strings.ToUpper(network.NetworkCode)]
			if !ok {
				continue
			}
			key := "native"
			if network.ContractAddress != nil && *network.ContractAddress != "" {
				key = strings.ToLower(*network.ContractAddress)
			}
			if out[pluginID] == nil {
				out[pluginID] = make(map[string]*infinite.Currency)
			}
			out[pluginID][key] = currency
		}
	}

	return out
}

// findCountry matches a country by code, or through an aggregate's member
// states (e.g. EU)
func findCountry(countries infinite.CountriesResponse, countryCode string) *infinite.Country {
	code := strings.ToUpper(countryCode)

	for i := range countries.Countries {
		c := &countries.Countries[i]
		if c.Code == code && c.IsAllowed {
			return c
		}
	}
	for i := range countries.Countries {
		c := &countries.Countries[i]
		if !c.IsAllowed {
			continue
		}
		for _, member := range c.MemberStates {
			if member == code {
				return c
			}
		}
	}
	return nil
}

// cleanFiatCode strips the "iso:" prefix from a fiat currency code
func cleanFiatCode(code string) string {
	return strings.ToUpper(strings.TrimPrefix(code, "iso:"))
}
