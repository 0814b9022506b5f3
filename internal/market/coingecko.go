package market

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"cryptoinvest/internal/cache"
)

// DefaultQuoteURL is the public CoinGecko endpoint mirrored by /api/prices.
const DefaultQuoteURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin,ethereum&vs_currencies=usd"

const (
	quoteCacheKey = "external_prices"
	maxQuoteBody  = 1 << 20
)

// ErrUpstream is returned when the quote API is unreachable or answers with garbage.
var ErrUpstream = errors.New("upstream quote api unavailable")

// CoinGecko fetches spot prices from the public CoinGecko API.
type CoinGecko struct {
	url    string
	client *http.Client
}

// NewCoinGecko builds a client whose transport is traced with otelhttp.
func NewCoinGecko(url string, timeout time.Duration) *CoinGecko {
	if url == "" {
		url = DefaultQuoteURL
	}
	return &CoinGecko{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Fetch returns the raw JSON body after checking that it carries at least one usd price.
func (c *CoinGecko) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(ParseUSDPrices(body)) == 0 {
		return nil, fmt.Errorf("%w: no usd prices in response", ErrUpstream)
	}
	return body, nil
}

// ParseUSDPrices extracts {"<coin>": {"usd": <price>}} pairs. Invalid JSON yields an empty map.
func ParseUSDPrices(body []byte) map[string]float64 {
	out := make(map[string]float64)
	if !gjson.ValidBytes(body) {
		return out
	}
	gjson.ParseBytes(body).ForEach(func(coin, v gjson.Result) bool {
		if usd := v.Get("usd"); usd.Type == gjson.Number {
			out[coin.String()] = usd.Float()
		}
		return true
	})
	return out
}

// Fetcher returns a raw upstream quote document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// ExternalQuotes serves upstream prices through a read-through cache.
// Cache errors are logged and fall back to the upstream.
type ExternalQuotes struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
	log     *zap.Logger
}

// NewExternalQuotes wires a fetcher to an optional cache. A nil cache disables caching.
func NewExternalQuotes(f Fetcher, c cache.Cache, ttl time.Duration, log *zap.Logger) *ExternalQuotes {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExternalQuotes{fetcher: f, cache: c, ttl: ttl, log: log.Named("quotes")}
}

// Prices returns the upstream JSON document.
func (q *ExternalQuotes) Prices(ctx context.Context) ([]byte, error) {
	if q.cache != nil {
		b, err := q.cache.Get(ctx, quoteCacheKey)
		switch {
		case err == nil:
			return b, nil
		case !errors.Is(err, cache.ErrMiss):
			q.log.Warn("quote cache read failed", zap.String("event", "quote_cache_error"), zap.Error(err))
		}
	}

	b, err := q.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if q.cache != nil && q.ttl > 0 {
		if err := q.cache.Set(ctx, quoteCacheKey, b, q.ttl); err != nil {
			q.log.Warn("quote cache write failed", zap.String("event", "quote_cache_error"), zap.Error(err))
		}
	}
	return b, nil
}
