package textprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wordhaven/creditledger/internal/config"
	"github.com/wordhaven/creditledger/internal/pricing"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Params{
		Config: config.Config{
			TextProviderURL:     srv.URL,
			TextProviderAPIKey:  "test-key",
			TextProviderTimeout: 5 * time.Second,
		},
		Log: zap.NewNop(),
	})
}

func TestHumanizeSendsStrength(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/humanize", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"result":"ok"}`))
	}))

	out, err := client.Humanize(context.Background(), "some text", pricing.ModeAggressive)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"ok"}`, string(out))
	assert.Equal(t, "More Human", got["strength"])
	assert.Equal(t, "University", got["readability"])
	assert.Equal(t, "Essay", got["purpose"])
}

func TestStrengthMapping(t *testing.T) {
	assert.Equal(t, "Quality", strengthFor(pricing.ModeEasy))
	assert.Equal(t, "Balanced", strengthFor(pricing.ModeMedium))
	assert.Equal(t, "More Human", strengthFor(pricing.ModeAggressive))
	assert.Equal(t, "Balanced", strengthFor(pricing.Mode("unknown")))
}

func TestHumanizeBatch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/humanize_list", r.URL.Path)
		var payload struct {
			ContentList []string `json:"content_list"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Len(t, payload.ContentList, 2)
		w.Write([]byte(`{"result_list":["a","b"]}`))
	}))

	out, err := client.HumanizeBatch(context.Background(), []string{"one", "two"}, pricing.ModeEasy)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result_list":["a","b"]}`, string(out))
}

func TestBalance(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/balance", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"balance":1234.5}`))
	}))

	balance, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("1234.5")), "got %s", balance)
}

func TestErrorStatusWrapsErrProvider(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))

	_, err := client.Detect(context.Background(), "text")
	require.ErrorIs(t, err, ErrProvider)

	_, err = client.Balance(context.Background())
	require.ErrorIs(t, err, ErrProvider)
}
