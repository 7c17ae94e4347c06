package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bookhaven/bookhaven-backend/api/responses"
	"github.com/bookhaven/bookhaven-backend/api/validators"
	checkoutsvc "github.com/bookhaven/bookhaven-backend/internal/checkout"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/bookhaven/bookhaven-backend/pkg/logger"
)

type checkoutRequest struct {
	CardNumber  string `json:"card_number" validate:"required,credit_card"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=2000"`
	Cardholder  string `json:"cardholder" validate:"required"`
}

// paymentRef keeps only the last four digits. Full card numbers are never
// stored or logged.
func (r checkoutRequest) paymentRef() string {
	digits := r.CardNumber
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return fmt.Sprintf("card-%s", digits)
}

func (r checkoutRequest) expired(now time.Time) bool {
	endOfMonth := time.Date(r.ExpiryYear, time.Month(r.ExpiryMonth), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, 0)
	return !now.Before(endOfMonth)
}

// CheckoutExecute converts the caller's staged cart into a placed order.
func CheckoutExecute(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.expired(time.Now().UTC()) {
			err := pkgerrors.New(pkgerrors.CodeValidation, "card expired").
				WithDetails(map[string]any{"expiry_month": body.ExpiryMonth, "expiry_year": body.ExpiryYear})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref := body.paymentRef()
		result, err := svc.Execute(r.Context(), userID, checkoutsvc.Input{PaymentRef: &ref})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
