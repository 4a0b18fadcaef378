// Package orchestrator drives a payment attempt through its two phases:
// initiate creates the provider-side order and persists nothing; verify
// confirms the outcome with the provider and records exactly one transaction.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"paygate/internal/domain/transactions"
	"paygate/internal/metrics"
	"paygate/internal/payments"

	"go.uber.org/zap"
)

const defaultRecordTimeout = 5 * time.Second

type Service struct {
	gateways Gateways
	store    transactions.Store
	logger   *zap.SugaredLogger
	metrics  *metrics.Payments

	now           func() time.Time
	recordTimeout time.Duration
}

// NewService wires the orchestrator. m may be nil.
func NewService(gateways Gateways, store transactions.Store, logger *zap.SugaredLogger, m *metrics.Payments) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		gateways:      gateways,
		store:         store,
		logger:        logger,
		metrics:       m,
		now:           func() time.Time { return time.Now().UTC() },
		recordTimeout: defaultRecordTimeout,
	}
}

// Initiate validates req and asks the selected gateway to create an order.
// Nothing is persisted: the provider-side order exists remotely until the
// client completes it and comes back through Verify.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	req, err := validateInitiate(s.gateways, req)
	if err != nil {
		s.logger.Infow("payment initiation rejected", "gateway", req.Gateway, "err", err.Error())
		s.countInitiated(s.gatewayLabel(req.Gateway), "invalid")
		return nil, err
	}

	gateway, err := s.gateways.Gateway(req.Gateway)
	if err != nil {
		return nil, invalid("gateway", "unsupported gateway %q", req.Gateway)
	}

	order, err := gateway.CreatePayment(ctx, payments.PaymentRequest{
		Gateway:       req.Gateway,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		s.logger.Errorw("gateway order creation failed", "gateway", req.Gateway, "err", err)
		s.countInitiated(req.Gateway, "gateway_error")
		return nil, err
	}

	s.logger.Infow("gateway order created", "gateway", req.Gateway, "order_id", order.OrderID, "amount_minor", order.Amount, "currency", order.Currency)
	s.countInitiated(req.Gateway, "ok")

	return &InitiateResult{
		Success:       true,
		Gateway:       req.Gateway,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Name:          req.Name,
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
		Order:         order,
	}, nil
}

// Verify confirms the payment with the gateway and records one transaction
// whatever the outcome: completed when the gateway confirms it, failed otherwise.
//
// When the gateway call itself faults, a failed transaction carrying the fault
// is recorded and Verify returns that result together with the gateway error.
// If that fallback write also fails, the result is nil and only the gateway
// error is returned. A failed write on the normal path returns a *PersistenceError.
// Calling Verify twice for the same payment records two transactions.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	req.Gateway = strings.ToLower(strings.TrimSpace(req.Gateway))
	gateway, err := s.gateways.Gateway(req.Gateway)
	if err != nil {
		return nil, invalid("gateway", "unsupported gateway %q", req.Gateway)
	}

	res, verr := gateway.VerifyPayment(ctx, payments.VerifyRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Proof:     req.Signature,
	})
	if verr != nil {
		return s.recordFault(ctx, req, verr)
	}

	status := transactions.StatusFailed
	if res.Success {
		status = transactions.StatusCompleted
	}

	payload, err := json.Marshal(res)
	if err != nil {
		payload, _ = json.Marshal(map[string]string{"error": "unencodable verification details: " + err.Error()})
	}

	id, err := s.record(ctx, s.newTransaction(req, status, payload))
	if err != nil {
		s.logger.Errorw("transaction write failed after verification", "gateway", req.Gateway, "order_id", req.OrderID, "payment_id", req.PaymentID, "status", status, "err", err)
		s.countRecordFailure(req.Gateway, "verified")
		return nil, &PersistenceError{Err: err}
	}

	s.logger.Infow("transaction recorded", "transaction_id", id, "gateway", req.Gateway, "status", status)
	s.countVerified(req.Gateway, status)

	return &VerifyResult{Success: true, Verification: res, TransactionID: id}, nil
}

func (s *Service) recordFault(ctx context.Context, req VerifyRequest, verr error) (*VerifyResult, error) {
	s.logger.Errorw("payment verification failed", "gateway", req.Gateway, "order_id", req.OrderID, "payment_id", req.PaymentID, "err", verr)

	fault := map[string]any{"error": verr.Error()}
	var ge *payments.GatewayError
	if errors.As(verr, &ge) {
		fault["kind"] = ge.Kind
	}
	payload, _ := json.Marshal(fault)

	id, err := s.record(ctx, s.newTransaction(req, transactions.StatusFailed, payload))
	if err != nil {
		s.logger.Errorw("failed to record failed transaction", "gateway", req.Gateway, "order_id", req.OrderID, "verify_err", verr, "err", err)
		s.countRecordFailure(req.Gateway, "fault")
		return nil, verr
	}

	s.logger.Infow("failed transaction recorded", "transaction_id", id, "gateway", req.Gateway)
	s.countVerified(req.Gateway, transactions.StatusFailed)

	return &VerifyResult{
		Success:       false,
		Verification:  payments.VerificationResult{Success: false, Details: fault},
		TransactionID: id,
	}, verr
}

// record writes t on a context detached from the caller's cancellation so a
// client disconnecting after verification cannot drop the record.
func (s *Service) record(ctx context.Context, t *transactions.Transaction) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
	defer cancel()
	return s.store.Record(ctx, t)
}

func (s *Service) newTransaction(req VerifyRequest, status transactions.Status, payload []byte) *transactions.Transaction {
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = payments.MethodCard
	}
	currency := strings.TrimSpace(req.Currency)
	if c, err := payments.NormalizeCurrency(currency); err == nil {
		currency = c
	}
	completedAt := s.now()

	return &transactions.Transaction{
		Gateway:          req.Gateway,
		PaymentMethod:    method,
		Amount:           req.Amount,
		Currency:         currency,
		CustomerName:     strings.TrimSpace(req.Name),
		CustomerEmail:    strings.TrimSpace(req.Email),
		Status:           status,
		GatewayOrderID:   req.OrderID,
		GatewayPaymentID: req.PaymentID,
		GatewayResponse:  payload,
		CompletedAt:      &completedAt,
	}
}

// gatewayLabel keeps unregistered names supplied by clients out of metric labels.
func (s *Service) gatewayLabel(name string) string {
	if s.gateways.Has(name) {
		return name
	}
	return "unknown"
}

func (s *Service) countInitiated(gateway, outcome string) {
	if s.metrics != nil {
		s.metrics.Initiated.WithLabelValues(gateway, outcome).Inc()
	}
}

func (s *Service) countVerified(gateway string, status transactions.Status) {
	if s.metrics != nil {
		s.metrics.Verified.WithLabelValues(gateway, string(status)).Inc()
	}
}

func (s *Service) countRecordFailure(gateway, path string) {
	if s.metrics != nil {
		s.metrics.RecordFailures.WithLabelValues(gateway, path).Inc()
	}
}
