package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bookhaven/bookhaven-backend/api/responses"
	"github.com/bookhaven/bookhaven-backend/api/validators"
	replenishmentsvc "github.com/bookhaven/bookhaven-backend/internal/replenishment"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/bookhaven/bookhaven-backend/pkg/logger"
)

type createPurchaseOrderRequest struct {
	ISBN        string `json:"isbn" validate:"required"`
	PublisherID int64  `json:"publisher_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

// ReplenishmentCreate raises a pending purchase order. Stock is untouched
// until the delivery is confirmed.
func ReplenishmentCreate(svc replenishmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "replenishment service unavailable"))
			return
		}

		var body createPurchaseOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), replenishmentsvc.CreateInput{
			ISBN:        body.ISBN,
			PublisherID: body.PublisherID,
			Quantity:    body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ReplenishmentConfirm records a delivery and credits stock exactly once.
func ReplenishmentConfirm(svc replenishmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "replenishment service unavailable"))
			return
		}

		poID, err := strconv.ParseInt(chi.URLParam(r, "poId"), 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase order id"))
			return
		}

		view, err := svc.Confirm(r.Context(), poID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ReplenishmentList returns purchase orders filtered by status.
func ReplenishmentList(svc replenishmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "replenishment service unavailable"))
			return
		}

		status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
		switch status {
		case "", "pending":
			views, err := svc.ListPending(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, views)
		case "confirmed":
			views, err := svc.ListConfirmed(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, views)
		default:
			err := pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter").
				WithDetails(map[string]any{"status": status})
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}
