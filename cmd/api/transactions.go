package main

import (
	"errors"
	"net/http"
	"strings"

	"paygate/internal/domain/transactions"
	"paygate/internal/params"

	"github.com/go-chi/chi/v5"
)

type transactionPage struct {
	Transactions []*transactions.Transaction `json:"transactions"`
	Pagination   params.Pagination           `json:"pagination"`
}

// listTransactionsHandler serves GET /v1/transactions?status=&gateway=&page=&limit=
func (app *application) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f transactions.Filter
	if s := strings.TrimSpace(q.Get("status")); s != "" {
		st, err := transactions.ParseStatus(s)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		f.Status = st
	}
	f.Gateway = strings.TrimSpace(q.Get("gateway"))

	list, pg, err := app.transactions.List(r.Context(), f, params.ParsePagination(q))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, transactionPage{Transactions: list, Pagination: pg}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionID")

	tx, err := app.transactions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transactions.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, tx); err != nil {
		app.internalServerError(w, r, err)
	}
}

type updateStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func (app *application) updateTransactionStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionID")

	var payload updateStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	tx, err := app.transactions.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, transactions.ErrInvalidStatus):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, transactions.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.logger.Infow("transaction status overridden", "transaction_id", tx.ID, "status", tx.Status, "operator", getOperatorFromContext(r))

	if err := app.jsonResponse(w, http.StatusOK, tx); err != nil {
		app.internalServerError(w, r, err)
	}
}
