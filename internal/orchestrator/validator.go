package orchestrator

import (
	"errors"
	"strings"

	"paygate/internal/payments"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInitiate checks req against the registered gateways and returns a
// normalized copy (lower-case gateway and method, upper-case currency).
func validateInitiate(gateways Gateways, req InitiateRequest) (InitiateRequest, error) {
	req.Gateway = strings.ToLower(strings.TrimSpace(req.Gateway))
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if req.PaymentMethod == "" {
		req.PaymentMethod = payments.MethodCard
	}

	if req.Gateway == "" {
		return req, invalid("gateway", "gateway is required")
	}
	if !gateways.Has(req.Gateway) {
		return req, invalid("gateway", "unsupported gateway %q, use one of: %s", req.Gateway, strings.Join(gateways.Names(), ", "))
	}

	if !req.Amount.IsPositive() {
		return req, invalid("amount", "amount must be greater than 0")
	}

	if err := validate.Struct(req); err != nil {
		return req, fieldError(err)
	}

	currency, err := payments.NormalizeCurrency(req.Currency)
	if err != nil {
		return req, invalid("currency", "currency must be a 3-letter ISO 4217 code")
	}
	req.Currency = currency

	minor, err := payments.ToMinorUnits(req.Amount, currency)
	if err != nil {
		return req, invalid("amount", "amount is too large for currency %s", currency)
	}
	if minor <= 0 {
		return req, invalid("amount", "amount is too small for currency %s", currency)
	}

	if !gateways.MethodAllowed(req.Gateway, req.PaymentMethod) {
		return req, invalid("paymentMethod", "payment method %q is not supported by %s, use one of: %s",
			req.PaymentMethod, req.Gateway, strings.Join(gateways.Methods(req.Gateway), ", "))
	}

	return req, nil
}

func fieldError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", "invalid request: %v", err)
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field, "%s is required", field)
	case "email":
		return invalid(field, "%s must be a valid email address", field)
	default:
		return invalid(field, "%s is invalid", field)
	}
}
