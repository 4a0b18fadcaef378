package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/speps/go-hashids/v2"
)

const razorpayAPIBaseURL = "https://api.razorpay.com"

type RazorpayConfig struct {
	KeyID      string
	KeySecret  string
	BaseURL    string // defaults to the live API
	HTTPClient *http.Client
}

// RazorpayAdapter creates Razorpay orders and verifies the checkout signature
// returned to the client after payment.
type RazorpayAdapter struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	receipts   *hashids.HashID
	seq        atomic.Int64
}

func NewRazorpayAdapter(cfg RazorpayConfig) (*RazorpayAdapter, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay: key id and key secret are required")
	}
	hd := hashids.NewData()
	hd.Salt = cfg.KeyID
	hd.MinLength = 10
	receipts, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("razorpay receipts: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = razorpayAPIBaseURL
	}
	return &RazorpayAdapter{
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		baseURL:    base,
		httpClient: client,
		receipts:   receipts,
	}, nil
}

func (rp *RazorpayAdapter) receipt() (string, error) {
	code, err := rp.receipts.EncodeInt64([]int64{time.Now().UnixMilli(), rp.seq.Add(1)})
	if err != nil {
		return "", err
	}
	return "receipt_" + code, nil
}

func (rp *RazorpayAdapter) CreatePayment(ctx context.Context, req PaymentRequest) (GatewayOrder, error) {
	method := strings.ToLower(req.PaymentMethod)
	if method == "" {
		method = MethodCard
	}
	currency := strings.ToUpper(req.Currency)

	amount, err := ToMinorUnits(req.Amount, currency)
	if err != nil {
		return GatewayOrder{}, rejected("razorpay", "invalid amount", err)
	}

	receipt, err := rp.receipt()
	if err != nil {
		return GatewayOrder{}, rejected("razorpay", "could not build receipt", err)
	}

	payload := map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes": map[string]string{
			"name":           req.CustomerName,
			"email":          req.CustomerEmail,
			"payment_method": method,
		},
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rp.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return GatewayOrder{}, rejected("razorpay", "build order request", err)
	}
	httpReq.SetBasicAuth(rp.keyID, rp.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := rp.httpClient.Do(httpReq)
	if err != nil {
		return GatewayOrder{}, rejected("razorpay", "order request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var e struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		msg := fmt.Sprintf("http=%d body=%s", resp.StatusCode, string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error.Description != "" {
			msg = e.Error.Description
		}
		return GatewayOrder{}, rejected("razorpay", msg, nil)
	}

	var res struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return GatewayOrder{}, rejected("razorpay", "decode order response", err)
	}

	status := res.Status
	if status == "" {
		status = "created"
	}
	return GatewayOrder{
		OrderID:       res.ID,
		Amount:        res.Amount,
		Currency:      res.Currency,
		Status:        status,
		PaymentMethod: method,
		Handshake:     map[string]string{"key_id": rp.keyID},
	}, nil
}

// Signature returns the checkout signature Razorpay issues for orderID and paymentID.
func (rp *RazorpayAdapter) Signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(rp.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (rp *RazorpayAdapter) VerifyPayment(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	paymentID := strings.TrimSpace(req.PaymentID)
	if orderID == "" || paymentID == "" {
		return VerificationResult{}, unavailable("razorpay", "order id and payment id are required", nil)
	}

	want := rp.Signature(orderID, paymentID)
	if !hmac.Equal([]byte(want), []byte(strings.TrimSpace(req.Proof))) {
		return VerificationResult{
			Success: false,
			Details: map[string]any{
				"verified":  false,
				"reason":    "signature mismatch",
				"orderId":   orderID,
				"paymentId": paymentID,
			},
		}, nil
	}

	return VerificationResult{
		Success: true,
		Details: map[string]any{
			"verified":  true,
			"orderId":   orderID,
			"paymentId": paymentID,
		},
	}, nil
}
