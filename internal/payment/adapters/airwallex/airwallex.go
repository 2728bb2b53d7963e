package airwallex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wordhaven/creditledger/internal/config"
	"github.com/wordhaven/creditledger/internal/payment/domain"
)

const (
	requestTimeout = 30 * time.Second

	// Tokens are valid for 30 minutes; refresh a little early so an
	// in-flight request never carries one that expires mid-call.
	tokenTTL   = 30 * time.Minute
	tokenSlack = time.Minute
)

// Adapter talks to the direct-debit provider. Authentication is a bearer
// token minted from client id + api key; the cached token is refreshed
// through singleflight so concurrent expiries trigger one login.
type Adapter struct {
	clientID string
	apiKey   string
	baseURL  string
	http     *http.Client
	log      *zap.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	flight    singleflight.Group
}

func New(cfg config.Config, log *zap.Logger) *Adapter {
	return &Adapter{
		clientID: cfg.AirwallexClientID,
		apiKey:   cfg.AirwallexAPIKey,
		baseURL:  strings.TrimRight(cfg.AirwallexBaseURL, "/"),
		http:     &http.Client{Timeout: requestTimeout},
		log:      log.Named("payment.airwallex"),
	}
}

func (a *Adapter) Name() string { return "airwallex" }

type loginResponse struct {
	Token string `json:"token"`
}

type intentResponse struct {
	ID                   string  `json:"id"`
	RequestID            string  `json:"request_id"`
	Amount               float64 `json:"amount"`
	CapturedAmount       float64 `json:"captured_amount"`
	Currency             string  `json:"currency"`
	Status               string  `json:"status"`
	ClientSecret         string  `json:"client_secret"`
	MerchantOrderID      string  `json:"merchant_order_id"`
	CreatedAt            string  `json:"created_at"`
	LatestPaymentAttempt struct {
		PaymentMethod struct {
			Type string `json:"type"`
		} `json:"payment_method"`
	} `json:"latest_payment_attempt"`
}

func (a *Adapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.token != "" && time.Now().Before(a.expiresAt) {
		token := a.token
		a.mu.Unlock()
		return token, nil
	}
	a.mu.Unlock()

	value, err, _ := a.flight.Do("token", func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/v1/authentication/login", bytes.NewReader([]byte("{}")))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-client-id", a.clientID)
		req.Header.Set("x-api-key", a.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: login: %v", domain.ErrProvider, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: login read body: %v", domain.ErrProvider, err)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("%w: login status %d", domain.ErrProvider, resp.StatusCode)
		}

		var login loginResponse
		if err := json.Unmarshal(raw, &login); err != nil || login.Token == "" {
			return nil, fmt.Errorf("%w: login without token", domain.ErrProvider)
		}

		a.mu.Lock()
		a.token = login.Token
		a.expiresAt = time.Now().Add(tokenTTL - tokenSlack)
		a.mu.Unlock()
		return login.Token, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (a *Adapter) CreateIntent(ctx context.Context, userID string, amountMinor int64, currency string) (*domain.IntentSecret, error) {
	payload := map[string]any{
		"amount":            float64(amountMinor) / 100,
		"currency":          currency,
		"request_id":        uuid.NewString(),
		"merchant_order_id": userID,
	}

	intent, err := a.call(ctx, http.MethodPost, "/api/v1/pa/payment_intents/create", payload)
	if err != nil {
		return nil, err
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: intent without id or client_secret", domain.ErrProvider)
	}
	// The intent id is the stored join key; the client secret is a short
	// lived JWT handed to the frontend.
	return &domain.IntentSecret{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (a *Adapter) FetchResult(ctx context.Context, resultID string) (*domain.ProviderResult, error) {
	intent, err := a.call(ctx, http.MethodGet, "/api/v1/pa/payment_intents/"+url.PathEscape(resultID), nil)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(intent.MerchantOrderID)
	if userID == "" {
		return nil, fmt.Errorf("%w: result without merchant_order_id", domain.ErrProvider)
	}

	created, err := time.Parse(time.RFC3339, intent.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad created_at %q", domain.ErrProvider, intent.CreatedAt)
	}

	status := strings.ToLower(intent.Status)
	if status == "succeeded" && intent.CapturedAmount == 0 {
		intent.CapturedAmount = intent.Amount
	}

	return &domain.ProviderResult{
		UserID:              userID,
		ResultID:            intent.ID,
		ClientSecret:        intent.ID,
		AmountMinor:         majorToMinor(intent.Amount),
		AmountReceivedMinor: majorToMinor(intent.CapturedAmount),
		Currency:            intent.Currency,
		Status:              status,
		PaymentMethod:       intent.LatestPaymentAttempt.PaymentMethod.Type,
		Created:             created.UTC(),
	}, nil
}

func majorToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (a *Adapter) call(ctx context.Context, method, path string, payload any) (*intentResponse, error) {
	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		a.log.Warn("request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrProvider, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		a.log.Warn("provider returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProvider, resp.StatusCode)
	}

	var intent intentResponse
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: decode intent: %v", domain.ErrProvider, err)
	}
	return &intent, nil
}
