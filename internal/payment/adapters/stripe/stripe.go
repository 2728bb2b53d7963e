package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wordhaven/creditledger/internal/config"
	"github.com/wordhaven/creditledger/internal/payment/domain"
)

const requestTimeout = 30 * time.Second

// Adapter talks to the card-network provider's payment-intent API. The
// user id rides in intent metadata and comes back on the result.
type Adapter struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Adapter {
	return &Adapter{
		apiKey:  cfg.StripeAPIKey,
		baseURL: strings.TrimRight(cfg.StripeBaseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		log:     log.Named("payment.stripe"),
	}
}

func (a *Adapter) Name() string { return "stripe" }

type paymentIntent struct {
	ID                 string            `json:"id"`
	Amount             int64             `json:"amount"`
	AmountReceived     int64             `json:"amount_received"`
	ClientSecret       string            `json:"client_secret"`
	Currency           string            `json:"currency"`
	Status             string            `json:"status"`
	Created            int64             `json:"created"`
	Metadata           map[string]string `json:"metadata"`
	PaymentMethodTypes []string          `json:"payment_method_types"`
}

func (a *Adapter) CreateIntent(ctx context.Context, userID string, amountMinor int64, currency string) (*domain.IntentSecret, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("metadata[user_id]", userID)

	intent, err := a.call(ctx, http.MethodPost, "/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: intent without client_secret", domain.ErrProvider)
	}
	return &domain.IntentSecret{ClientSecret: intent.ClientSecret}, nil
}

func (a *Adapter) FetchResult(ctx context.Context, resultID string) (*domain.ProviderResult, error) {
	intent, err := a.call(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(resultID), nil)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(intent.Metadata["user_id"])
	if userID == "" {
		return nil, fmt.Errorf("%w: result without user_id metadata", domain.ErrProvider)
	}
	if len(intent.PaymentMethodTypes) == 0 {
		return nil, fmt.Errorf("%w: result without payment method", domain.ErrProvider)
	}

	return &domain.ProviderResult{
		UserID:              userID,
		ResultID:            intent.ID,
		ClientSecret:        intent.ClientSecret,
		AmountMinor:         intent.Amount,
		AmountReceivedMinor: intent.AmountReceived,
		Currency:            intent.Currency,
		Status:              intent.Status,
		PaymentMethod:       intent.PaymentMethodTypes[0],
		Created:             time.Unix(intent.Created, 0).UTC(),
	}, nil
}

func (a *Adapter) call(ctx context.Context, method, path string, body io.Reader) (*paymentIntent, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

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
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.log.Warn("provider returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProvider, resp.StatusCode)
	}

	var intent paymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: decode intent: %v", domain.ErrProvider, err)
	}
	return &intent, nil
}
