package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/cache"
	"cryptoinvest/internal/cache/mocks"
)

const sampleQuotes = `{"bitcoin":{"usd":67123.5},"ethereum":{"usd":3456.78}}`

func TestParseUSDPrices(t *testing.T) {
	got := ParseUSDPrices([]byte(sampleQuotes))
	assert.Equal(t, map[string]float64{"bitcoin": 67123.5, "ethereum": 3456.78}, got)

	assert.Empty(t, ParseUSDPrices([]byte(`{"bitcoin":{"eur":1}}`)))
	assert.Empty(t, ParseUSDPrices([]byte(`not json`)))
}

func TestCoinGeckoFetch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, body: sampleQuotes},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantErr: true},
		{name: "no prices", status: http.StatusOK, body: `{"status":"down"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			body, err := NewCoinGecko(srv.URL, time.Second).Fetch(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUpstream)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, sampleQuotes, string(body))
		})
	}
}

type stubFetcher struct {
	body  []byte
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context) ([]byte, error) {
	s.calls++
	return s.body, s.err
}

func TestExternalQuotesPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		c := new(mocks.MockCache)
		f := &stubFetcher{}
		c.On("Get", ctx, quoteCacheKey).Return([]byte(sampleQuotes), nil)

		b, err := NewExternalQuotes(f, c, time.Minute, nil).Prices(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleQuotes, string(b))
		assert.Equal(t, 0, f.calls)
	})

	t.Run("miss fetches and stores", func(t *testing.T) {
		c := new(mocks.MockCache)
		f := &stubFetcher{body: []byte(sampleQuotes)}
		c.On("Get", ctx, quoteCacheKey).Return(nil, cache.ErrMiss)
		c.On("Set", ctx, quoteCacheKey, []byte(sampleQuotes), time.Minute).Return(nil)

		b, err := NewExternalQuotes(f, c, time.Minute, nil).Prices(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleQuotes, string(b))
		c.AssertExpectations(t)
	})

	t.Run("cache down degrades to upstream", func(t *testing.T) {
		c := new(mocks.MockCache)
		f := &stubFetcher{body: []byte(sampleQuotes)}
		c.On("Get", ctx, quoteCacheKey).Return(nil, errors.New("dial tcp: refused"))
		c.On("Set", ctx, quoteCacheKey, mock.Anything, time.Minute).Return(errors.New("dial tcp: refused"))

		b, err := NewExternalQuotes(f, c, time.Minute, nil).Prices(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, b)
		assert.Equal(t, 1, f.calls)
	})

	t.Run("upstream error", func(t *testing.T) {
		f := &stubFetcher{err: ErrUpstream}
		_, err := NewExternalQuotes(f, nil, time.Minute, nil).Prices(ctx)
		assert.ErrorIs(t, err, ErrUpstream)
	})
}
