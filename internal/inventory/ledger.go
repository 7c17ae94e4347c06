package inventory

import (
	"context"
	stdErrors "errors"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"gorm.io/gorm"
)

// Ledger applies stock movements with conditional updates so the
// stock column can never go negative, regardless of interleaving.
type Ledger struct{}

// NewLedger constructs a stock ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Decrement removes qty units of stock for the given ISBN. The update only
// succeeds when the row still holds at least qty units; a zero-row result is
// resolved to UnknownBook or InsufficientStock by re-reading the row.
func (l *Ledger) Decrement(ctx context.Context, tx *gorm.DB, isbn string, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if isbn == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE isbn = ? AND stock >= ?
	`, qty, isbn, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var book models.Book
	err := tx.WithContext(ctx).Select("isbn", "stock").Where("isbn = ?", isbn).First(&book).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeUnknownBook, "unknown isbn").
			WithDetails(map[string]any{"isbn": isbn})
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book for stock check")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{"isbn": isbn, "requested": qty, "available": book.Stock})
}

// Increment adds qty units of stock for the given ISBN.
func (l *Ledger) Increment(ctx context.Context, tx *gorm.DB, isbn string, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if isbn == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE isbn = ?
	`, qty, isbn)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeUnknownBook, "unknown isbn").
			WithDetails(map[string]any{"isbn": isbn})
	}
	return nil
}
