package main

import (
	"errors"
	"net/http"

	"paygate/internal/orchestrator"
	"paygate/internal/payments"
)

func (app *application) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload orchestrator.InitiateRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.payments.Initiate(r.Context(), payload)
	if err != nil {
		app.paymentErrorResponse(w, r, err, "")
		return
	}

	if err := writeJSON(w, http.StatusOK, res); err != nil {
		app.internalServerError(w, r, err)
	}
}

// verifyPaymentHandler answers 200 whenever the outcome was recorded, including
// a payment the gateway reports as failed; the record's status carries the outcome.
func (app *application) verifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload orchestrator.VerifyRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.payments.Verify(r.Context(), payload)
	if err != nil {
		transactionID := ""
		if res != nil {
			transactionID = res.TransactionID
		}
		app.paymentErrorResponse(w, r, err, transactionID)
		return
	}

	if err := writeJSON(w, http.StatusOK, res); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) paymentErrorResponse(w http.ResponseWriter, r *http.Request, err error, transactionID string) {
	var (
		verr *orchestrator.ValidationError
		gerr *payments.GatewayError
		perr *orchestrator.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		app.badRequestResponse(w, r, verr)
	case errors.As(err, &gerr):
		app.badGatewayResponse(w, r, gerr, transactionID)
	case errors.As(err, &perr):
		app.persistenceErrorResponse(w, r, perr)
	default:
		app.internalServerError(w, r, err)
	}
}
