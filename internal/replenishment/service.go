package replenishment

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockIncrementer adds received stock inside the confirmation transaction.
type StockIncrementer interface {
	Increment(ctx context.Context, tx *gorm.DB, isbn string, qty int) error
}

type catalogReader interface {
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	FindPublisher(ctx context.Context, id int64) (*models.Publisher, error)
}

// CreateInput holds the payload to raise a purchase order.
type CreateInput struct {
	ISBN        string
	PublisherID int64
	Quantity    int
}

// POView is the purchase order as returned to admins.
type POView struct {
	ID          int64                     `json:"po_id"`
	ISBN        string                    `json:"isbn"`
	PublisherID int64                     `json:"publisher_id"`
	Quantity    int                       `json:"quantity"`
	Status      enums.PurchaseOrderStatus `json:"status"`
	OrderedAt   time.Time                 `json:"ordered_at"`
	ConfirmedAt *time.Time                `json:"confirmed_at,omitempty"`
}

// Service exposes the replenishment lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*POView, error)
	Confirm(ctx context.Context, poID int64) (*POView, error)
	ListPending(ctx context.Context) ([]POView, error)
	ListConfirmed(ctx context.Context) ([]POView, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	stock   StockIncrementer
	catalog catalogReader
}

// NewService builds a replenishment service with the required dependencies.
func NewService(repo *Repository, tx txRunner, stock StockIncrementer, catalog catalogReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("replenishment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock incrementer required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	return &service{repo: repo, tx: tx, stock: stock, catalog: catalog}, nil
}

// Create raises a Pending purchase order against a known book and publisher.
func (s *service) Create(ctx context.Context, input CreateInput) (*POView, error) {
	if input.ISBN == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	if _, err := s.catalog.FindByISBN(ctx, input.ISBN); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownBook, "unknown isbn")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if _, err := s.catalog.FindPublisher(ctx, input.PublisherID); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "publisher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load publisher")
	}

	po := &models.PurchaseOrder{
		ISBN:        input.ISBN,
		PublisherID: input.PublisherID,
		Quantity:    input.Quantity,
	}
	if _, err := s.repo.Create(ctx, po); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
	}
	view := buildView(*po)
	return &view, nil
}

// Confirm flips the purchase order to Confirmed and receives its stock, once.
// The state transition and the stock increment commit together or not at all.
func (s *service) Confirm(ctx context.Context, poID int64) (*POView, error) {
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		po, err := txRepo.FindByID(ctx, poID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
		}

		affected, err := txRepo.ConfirmPending(ctx, poID, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm purchase order")
		}
		if affected == 0 {
			// Already confirmed, or raced with another confirm.
			return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not pending")
		}

		return s.stock.Increment(ctx, tx, po.ISBN, po.Quantity)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm")
	}

	po, err := s.repo.FindByID(ctx, poID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase order")
	}
	view := buildView(*po)
	return &view, nil
}

// ListPending returns purchase orders awaiting confirmation.
func (s *service) ListPending(ctx context.Context) ([]POView, error) {
	return s.listByStatus(ctx, enums.PurchaseOrderStatusPending)
}

// ListConfirmed returns purchase orders already received.
func (s *service) ListConfirmed(ctx context.Context) ([]POView, error) {
	return s.listByStatus(ctx, enums.PurchaseOrderStatusConfirmed)
}

func (s *service) listByStatus(ctx context.Context, status enums.PurchaseOrderStatus) ([]POView, error) {
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	out := make([]POView, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildView(row))
	}
	return out, nil
}

func buildView(po models.PurchaseOrder) POView {
	return POView{
		ID:          po.ID,
		ISBN:        po.ISBN,
		PublisherID: po.PublisherID,
		Quantity:    po.Quantity,
		Status:      po.Status,
		OrderedAt:   po.OrderedAt,
		ConfirmedAt: po.ConfirmedAt,
	}
}
