package infinite

import (
	"context"
	"time"
)

// CacheTTL bounds how long countries/currencies reference data is served
// without a live fetch
const CacheTTL = 120 * time.Second

// cacheEntry is one cached read-endpoint response, replaced wholesale on
// refresh
type cacheEntry[T any] struct {
	data      T
	timestamp time.Time
}

func (e *cacheEntry[T]) fresh(now time.Time, ttl time.Duration) bool {
	return e != nil && now.Sub(e.timestamp) < ttl
}

// GetCountries returns the supported-countries reference data, served from
// cache while under TTL. Concurrent refreshes of a stale entry are
// tolerated; the data is read-only and last write wins.
func (c *Client) GetCountries(ctx context.Context) (CountriesResponse, error) {
	if c.countriesCache.fresh(c.now(), CacheTTL) {
		return c.countriesCache.data, nil
	}

	var out CountriesResponse
	if err := c.do(ctx, "GET", "/v1/ramp/countries", false, nil, &out); err != nil {
		return CountriesResponse{}, err
	}

	c.countriesCache = &cacheEntry[CountriesResponse]{data: out, timestamp: c.now()}
	return out, nil
}

// GetCurrencies returns the supported-currencies reference data, served from
// cache while under TTL
func (c *Client) GetCurrencies(ctx context.Context) (CurrenciesResponse, error) {
	if c.currenciesCache.fresh(c.now(), CacheTTL) {
		return c.currenciesCache.data, nil
	}

	var out CurrenciesResponse
	if err := c.do(ctx, "GET", "/v1/ramp/currencies", false, nil, &out); err != nil {
		return CurrenciesResponse{}, err
	}

	c.currenciesCache = &cacheEntry[CurrenciesResponse]{data: out, timestamp: c.now()}
	return out, nil
}
