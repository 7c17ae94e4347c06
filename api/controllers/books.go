package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bookhaven/bookhaven-backend/api/responses"
	"github.com/bookhaven/bookhaven-backend/api/validators"
	bookssvc "github.com/bookhaven/bookhaven-backend/internal/books"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/bookhaven/bookhaven-backend/pkg/logger"
)

type addBookRequest struct {
	ISBN            string   `json:"isbn" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	Authors         []string `json:"authors" validate:"required,min=1,dive,required"`
	PublisherID     *int64   `json:"publisher_id"`
	PublicationYear *int     `json:"publication_year"`
	PriceCents      int      `json:"price_cents" validate:"required,gt=0"`
	Category        string   `json:"category" validate:"required"`
	Stock           int      `json:"stock" validate:"min=0"`
	Threshold       *int     `json:"threshold" validate:"omitempty,min=0"`
}

type updateBookRequest struct {
	Title           *string   `json:"title"`
	Authors         *[]string `json:"authors"`
	PublisherID     *int64    `json:"publisher_id"`
	PublicationYear *int      `json:"publication_year"`
	PriceCents      *int      `json:"price_cents" validate:"omitempty,gt=0"`
	Category        *string   `json:"category"`
	Threshold       *int      `json:"threshold" validate:"omitempty,min=0"`
}

// BookSearch filters the catalog by title, author, and category.
func BookSearch(svc bookssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		query := r.URL.Query()
		filters := bookssvc.SearchFilters{
			Title:    strings.TrimSpace(query.Get("title")),
			Author:   strings.TrimSpace(query.Get("author")),
			Category: strings.TrimSpace(query.Get("category")),
		}

		results, err := svc.Search(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, results)
	}
}

// BookDetails returns the full catalog view for one ISBN.
func BookDetails(svc bookssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		isbn := strings.TrimSpace(chi.URLParam(r, "isbn"))
		if isbn == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "isbn required"))
			return
		}

		details, err := svc.GetDetails(r.Context(), isbn)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, details)
	}
}

// AdminBookAdd creates a catalog entry.
func AdminBookAdd(svc bookssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		var body addBookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		details, err := svc.AddBook(r.Context(), bookssvc.AddBookInput{
			ISBN:            body.ISBN,
			Title:           body.Title,
			AuthorNames:     body.Authors,
			PublisherID:     body.PublisherID,
			PublicationYear: body.PublicationYear,
			PriceCents:      body.PriceCents,
			Category:        body.Category,
			Stock:           body.Stock,
			Threshold:       body.Threshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, details)
	}
}

// AdminBookUpdate applies a partial mutation to a catalog entry.
func AdminBookUpdate(svc bookssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		isbn := strings.TrimSpace(chi.URLParam(r, "isbn"))
		if isbn == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "isbn required"))
			return
		}

		var body updateBookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		details, err := svc.UpdateBook(r.Context(), isbn, bookssvc.UpdateBookInput{
			Title:           body.Title,
			AuthorNames:     body.Authors,
			PublisherID:     body.PublisherID,
			PublicationYear: body.PublicationYear,
			PriceCents:      body.PriceCents,
			Category:        body.Category,
			Threshold:       body.Threshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, details)
	}
}

// AdminLowStock lists titles that fell below their reorder thresholds.
func AdminLowStock(svc bookssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}

		rows, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
