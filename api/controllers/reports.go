package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/bookhaven/bookhaven-backend/api/responses"
	"github.com/bookhaven/bookhaven-backend/api/validators"
	reportssvc "github.com/bookhaven/bookhaven-backend/internal/reports"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/bookhaven/bookhaven-backend/pkg/logger"
)

const reportDateLayout = "2006-01-02"

func monthParams(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year, err := validators.ParseQueryInt(r, "year", now.Year(), 2000, 2200)
	if err != nil {
		return 0, 0, err
	}
	month, err := validators.ParseQueryInt(r, "month", int(now.Month()), 1, 12)
	if err != nil {
		return 0, 0, err
	}
	return year, time.Month(month), nil
}

// ReportMonthlySales aggregates order counts and revenue for one month.
func ReportMonthlySales(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		year, month, err := monthParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.MonthlySales(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// ReportDailySales aggregates order counts and revenue for one calendar day.
func ReportDailySales(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("date"))
		day := time.Now().UTC()
		if raw != "" {
			parsed, err := time.Parse(reportDateLayout, raw)
			if err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be YYYY-MM-DD").
					WithDetails(map[string]any{"field": "date"})
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
			day = parsed
		}

		report, err := svc.DailySales(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// ReportTopCustomers ranks customers by spend over the trailing three months.
func ReportTopCustomers(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ranks, err := svc.TopCustomers(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ranks)
	}
}

// ReportTopBooks ranks titles by units sold over the trailing three months.
func ReportTopBooks(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ranks, err := svc.TopBooks(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ranks)
	}
}

// ReportReplenishment counts the purchase orders raised for one title.
func ReportReplenishment(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		isbn := strings.TrimSpace(r.URL.Query().Get("isbn"))
		summary, err := svc.ReplenishmentCount(r.Context(), isbn)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
