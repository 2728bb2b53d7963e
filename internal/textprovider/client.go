package textprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/wordhaven/creditledger/internal/config"
	"github.com/wordhaven/creditledger/internal/pricing"
)

// ErrProvider wraps every upstream failure so callers can map the whole
// class to one error category without inspecting transport details.
var ErrProvider = errors.New("text_provider_unavailable")

// Client is the upstream text-processing API: humanization, AI detection,
// and the provider-side credit balance for the shared API key.
type Client interface {
	Humanize(ctx context.Context, text string, mode pricing.Mode) (json.RawMessage, error)
	HumanizeBatch(ctx context.Context, texts []string, mode pricing.Mode) (json.RawMessage, error)
	Detect(ctx context.Context, text string) (json.RawMessage, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// modeToStrength maps billing modes to the provider's strength labels.
// Unknown modes fall back to Balanced, matching the provider default.
var modeToStrength = map[pricing.Mode]string{
	pricing.ModeAggressive: "More Human",
	pricing.ModeMedium:     "Balanced",
	pricing.ModeEasy:       "Quality",
}

func strengthFor(mode pricing.Mode) string {
	if s, ok := modeToStrength[pricing.Mode(strings.ToLower(string(mode)))]; ok {
		return s
	}
	return "Balanced"
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

func New(p Params) Client {
	return &client{
		baseURL: strings.TrimRight(p.Config.TextProviderURL, "/"),
		apiKey:  p.Config.TextProviderAPIKey,
		http:    &http.Client{Timeout: p.Config.TextProviderTimeout},
		log:     p.Log.Named("textprovider"),
	}
}

type humanizeRequest struct {
	Content     string `json:"content"`
	Readability string `json:"readability"`
	Purpose     string `json:"purpose"`
	Strength    string `json:"strength"`
}

type humanizeListRequest struct {
	ContentList []string `json:"content_list"`
	Readability string   `json:"readability"`
	Purpose     string   `json:"purpose"`
	Strength    string   `json:"strength"`
}

type checkRequest struct {
	Content string `json:"content"`
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (c *client) Humanize(ctx context.Context, text string, mode pricing.Mode) (json.RawMessage, error) {
	return c.post(ctx, "/humanize", humanizeRequest{
		Content:     text,
		Readability: "University",
		Purpose:     "Essay",
		Strength:    strengthFor(mode),
	})
}

func (c *client) HumanizeBatch(ctx context.Context, texts []string, mode pricing.Mode) (json.RawMessage, error) {
	return c.post(ctx, "/humanize_list", humanizeListRequest{
		ContentList: texts,
		Readability: "University",
		Purpose:     "Essay",
		Strength:    strengthFor(mode),
	})
}

func (c *client) Detect(ctx context.Context, text string) (json.RawMessage, error) {
	return c.post(ctx, "/check", checkRequest{Content: text})
}

func (c *client) Balance(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.do(ctx, http.MethodGet, "/balance", nil)
	if err != nil {
		return decimal.Zero, err
	}

	var resp balanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode balance: %v", ErrProvider, err)
	}
	return resp.Balance, nil
}

func (c *client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("provider request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrProvider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("provider returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}
	return raw, nil
}

var Module = fx.Module("textprovider",
	fx.Provide(New),
)
