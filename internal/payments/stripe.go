package payments

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

	"github.com/google/uuid"
)

const stripeAPIBaseURL = "https://api.stripe.com"

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	BaseURL        string // defaults to the live API
	HTTPClient     *http.Client
}

// StripeAdapter creates PaymentIntents and verifies them by retrieving the
// intent from Stripe after the client confirms it.
type StripeAdapter struct {
	secretKey      string
	publishableKey string
	baseURL        string
	httpClient     *http.Client
}

func NewStripeAdapter(cfg StripeConfig) (*StripeAdapter, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe: secret key is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = stripeAPIBaseURL
	}
	return &StripeAdapter{
		secretKey:      cfg.SecretKey,
		publishableKey: cfg.PublishableKey,
		baseURL:        base,
		httpClient:     client,
	}, nil
}

// stripeError represents the error structure from Stripe API
type stripeError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		Message     string `json:"message"`
		DeclineCode string `json:"decline_code"`
	} `json:"error"`
}

type paymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

func buildIntentForm(req PaymentRequest) (url.Values, error) {
	currency := strings.ToLower(req.Currency)
	amount, err := ToMinorUnits(req.Amount, currency)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("metadata[customer_name]", req.CustomerName)
	form.Set("metadata[customer_email]", req.CustomerEmail)
	form.Add("payment_method_types[]", MethodCard)
	form.Set("description", fmt.Sprintf("Payment for %s - %s", req.CustomerName, req.CustomerEmail))
	return form, nil
}

func stripeMessage(status int, raw []byte) string {
	var e stripeError
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return fmt.Sprintf("http=%d body=%s", status, string(raw))
}

func (s *StripeAdapter) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (s *StripeAdapter) CreatePayment(ctx context.Context, req PaymentRequest) (GatewayOrder, error) {
	form, err := buildIntentForm(req)
	if err != nil {
		return GatewayOrder{}, rejected("stripe", "invalid amount", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return GatewayOrder{}, rejected("stripe", "build payment intent request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	status, raw, err := s.do(httpReq)
	if err != nil {
		return GatewayOrder{}, rejected("stripe", "payment intent request failed", err)
	}
	if status < 200 || status >= 300 {
		return GatewayOrder{}, rejected("stripe", stripeMessage(status, raw), nil)
	}

	var pi paymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return GatewayOrder{}, rejected("stripe", "decode payment intent", err)
	}

	return GatewayOrder{
		OrderID:       pi.ID,
		Amount:        pi.Amount,
		Currency:      pi.Currency,
		Status:        pi.Status,
		PaymentMethod: MethodCard,
		Handshake: map[string]string{
			"client_secret":   pi.ClientSecret,
			"publishable_key": s.publishableKey,
		},
	}, nil
}

// VerifyPayment retrieves the PaymentIntent identified by req.PaymentID. Only
// the "succeeded" status counts as success.
func (s *StripeAdapter) VerifyPayment(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	id := strings.TrimSpace(req.PaymentID)
	if id == "" {
		id = strings.TrimSpace(req.OrderID)
	}
	if id == "" || strings.ContainsAny(id, "/?#") {
		return VerificationResult{}, unavailable("stripe", fmt.Sprintf("malformed payment intent id %q", id), nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/payment_intents/"+url.PathEscape(id), nil)
	if err != nil {
		return VerificationResult{}, unavailable("stripe", "build retrieve request", err)
	}

	status, raw, err := s.do(httpReq)
	if err != nil {
		return VerificationResult{}, unavailable("stripe", "retrieve payment intent failed", err)
	}
	if status < 200 || status >= 300 {
		return VerificationResult{}, unavailable("stripe", stripeMessage(status, raw), nil)
	}

	var pi paymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return VerificationResult{}, unavailable("stripe", "decode payment intent", err)
	}

	return VerificationResult{
		Success: pi.Status == "succeeded",
		Details: map[string]any{
			"paymentIntentId": pi.ID,
			"status":          pi.Status,
			"amount":          pi.Amount,
			"currency":        pi.Currency,
		},
	}, nil
}
