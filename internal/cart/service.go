package cart

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes cart staging operations. Stock checks here are advisory:
// the checkout transaction is the only authority on final availability.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, isbn string, qty int) (*CartView, error)
	Update(ctx context.Context, userID uuid.UUID, isbn string, qty int) (*CartView, error)
	Remove(ctx context.Context, userID uuid.UUID, isbn string) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

// CartLine is one cart entry priced at the current catalog price.
type CartLine struct {
	ISBN           string `json:"isbn"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	LineTotalCents int    `json:"line_total_cents"`
}

// CartView is the full cart with its running total.
type CartView struct {
	Lines      []CartLine `json:"lines"`
	TotalCents int        `json:"total_cents"`
}

type bookReader interface {
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
}

type service struct {
	repo  *Repository
	books bookReader
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, books bookReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if books == nil {
		return nil, fmt.Errorf("book reader required")
	}
	return &service{repo: repo, books: books}, nil
}

// Add merges qty into the user's cart entry for the ISBN.
func (s *service) Add(ctx context.Context, userID uuid.UUID, isbn string, qty int) (*CartView, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	book, err := s.loadBook(ctx, isbn)
	if err != nil {
		return nil, err
	}

	desired := qty
	existing, err := s.repo.FindEntry(ctx, userID, isbn)
	if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart entry")
	}
	if existing != nil {
		desired += existing.Quantity
	}

	if desired > book.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"isbn": isbn, "requested": desired, "available": book.Stock})
	}

	entry := &models.CartItem{UserID: userID, ISBN: isbn, Quantity: desired}
	if existing != nil {
		entry.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart entry")
	}
	return s.List(ctx, userID)
}

// Update sets the entry quantity outright. A quantity of zero or less removes it.
func (s *service) Update(ctx context.Context, userID uuid.UUID, isbn string, qty int) (*CartView, error) {
	if qty <= 0 {
		return s.Remove(ctx, userID, isbn)
	}

	book, err := s.loadBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if qty > book.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"isbn": isbn, "requested": qty, "available": book.Stock})
	}

	entry := &models.CartItem{UserID: userID, ISBN: isbn, Quantity: qty}
	existing, err := s.repo.FindEntry(ctx, userID, isbn)
	if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart entry")
	}
	if existing != nil {
		entry.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart entry")
	}
	return s.List(ctx, userID)
}

// Remove drops the entry. Removing an absent entry succeeds.
func (s *service) Remove(ctx context.Context, userID uuid.UUID, isbn string) (*CartView, error) {
	if err := s.repo.Remove(ctx, userID, isbn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart entry")
	}
	return s.List(ctx, userID)
}

// Clear empties the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// List prices the cart at current catalog prices.
func (s *service) List(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	rows, err := s.repo.ListDetailed(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart")
	}

	view := &CartView{Lines: make([]CartLine, 0, len(rows))}
	for _, row := range rows {
		line := CartLine{
			ISBN:           row.ISBN,
			Title:          row.Title,
			Quantity:       row.Quantity,
			UnitPriceCents: row.UnitPriceCents,
			LineTotalCents: row.Quantity * row.UnitPriceCents,
		}
		view.Lines = append(view.Lines, line)
		view.TotalCents += line.LineTotalCents
	}
	return view, nil
}

func (s *service) loadBook(ctx context.Context, isbn string) (*models.Book, error) {
	if isbn == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}
	book, err := s.books.FindByISBN(ctx, isbn)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownBook, "unknown isbn").
				WithDetails(map[string]any{"isbn": isbn})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return book, nil
}
