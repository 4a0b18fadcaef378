package payments

import "context"

// PaymentGateway defines a common interface for all payment providers
type PaymentGateway interface {
	// CreatePayment creates the provider-side order/intent the payer completes out-of-band.
	CreatePayment(ctx context.Context, req PaymentRequest) (GatewayOrder, error)
	// VerifyPayment confirms the outcome of a completed payment. A payment that did
	// not succeed is a VerificationResult with Success=false, not an error.
	VerifyPayment(ctx context.Context, req VerifyRequest) (VerificationResult, error)
}
