package payments

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindRequestRejected         ErrorKind = "request_rejected"
	KindVerificationUnavailable ErrorKind = "verification_unavailable"
)

var ErrGatewayNotRegistered = errors.New("gateway not registered")

// GatewayError reports that an adapter could not complete a gateway operation.
type GatewayError struct {
	Gateway string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Gateway, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Gateway, e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func rejected(gateway, msg string, err error) *GatewayError {
	return &GatewayError{Gateway: gateway, Kind: KindRequestRejected, Message: msg, Err: err}
}

func unavailable(gateway, msg string, err error) *GatewayError {
	return &GatewayError{Gateway: gateway, Kind: KindVerificationUnavailable, Message: msg, Err: err}
}

// IsKind reports whether err is a GatewayError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Kind == kind
}
