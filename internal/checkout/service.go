package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven-backend/internal/cart"
	"github.com/bookhaven/bookhaven-backend/internal/orders"
	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/bookhaven/bookhaven-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockDecrementer removes stock inside the checkout transaction.
type StockDecrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, isbn string, qty int) error
}

// Input carries the optional payment reference stored on the order.
type Input struct {
	PaymentRef *string
}

// LineResult is one purchased line with its price snapshot.
type LineResult struct {
	ISBN           string `json:"isbn"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	LineTotalCents int    `json:"line_total_cents"`
}

// Result is the committed outcome of a checkout.
type Result struct {
	OrderID    int64        `json:"order_id"`
	PlacedAt   time.Time    `json:"placed_at"`
	TotalCents int          `json:"total_cents"`
	Lines      []LineResult `json:"lines"`
}

// Service converts a cart into an order atomically.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
}

type service struct {
	tx         txRunner
	cartRepo   *cart.Repository
	ordersRepo *orders.Repository
	stock      StockDecrementer
	metrics    *metrics.CheckoutMetrics
}

// NewService builds a checkout service with the required dependencies.
// Metrics may be nil.
func NewService(tx txRunner, cartRepo *cart.Repository, ordersRepo *orders.Repository, stock StockDecrementer, m *metrics.CheckoutMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock decrementer required")
	}
	return &service{
		tx:         tx,
		cartRepo:   cartRepo,
		ordersRepo: ordersRepo,
		stock:      stock,
		metrics:    m,
	}, nil
}

// Execute runs the checkout transaction: re-verify and decrement stock for
// every cart line, price the order from the catalog, persist the order with
// its lines, and clear the cart. Any failure rolls the whole thing back.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	start := time.Now()

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCart := s.cartRepo.WithTx(tx)
		txOrders := s.ordersRepo.WithTx(tx)

		entries, err := txCart.ListEntries(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(entries) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		detailed, err := txCart.ListDetailed(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart")
		}
		priced := make(map[string]cart.DetailedRow, len(detailed))
		for _, row := range detailed {
			priced[row.ISBN] = row
		}

		var total int
		lines := make([]models.OrderLine, 0, len(entries))
		lineResults := make([]LineResult, 0, len(entries))
		for _, entry := range entries {
			row, ok := priced[entry.ISBN]
			if !ok {
				// Book vanished from the catalog after it was staged.
				return pkgerrors.New(pkgerrors.CodeUnknownBook, "unknown isbn").
					WithDetails(map[string]any{"isbn": entry.ISBN})
			}

			if err := s.stock.Decrement(ctx, tx, entry.ISBN, entry.Quantity); err != nil {
				return err
			}

			lines = append(lines, models.OrderLine{
				ISBN:           entry.ISBN,
				Quantity:       entry.Quantity,
				UnitPriceCents: row.UnitPriceCents,
			})
			lineResults = append(lineResults, LineResult{
				ISBN:           entry.ISBN,
				Title:          row.Title,
				Quantity:       entry.Quantity,
				UnitPriceCents: row.UnitPriceCents,
				LineTotalCents: entry.Quantity * row.UnitPriceCents,
			})
			total += entry.Quantity * row.UnitPriceCents
		}

		order := &models.Order{
			UserID:     userID,
			TotalCents: total,
			PaymentRef: input.PaymentRef,
			Lines:      lines,
		}
		if _, err := txOrders.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		if err := txCart.Clear(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		result = &Result{
			OrderID:    order.ID,
			PlacedAt:   order.PlacedAt,
			TotalCents: total,
			Lines:      lineResults,
		}
		return nil
	})
	if err != nil {
		code := pkgerrors.CodeDependency
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(string(code))
		s.metrics.ObserveDuration("failure", time.Since(start))
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}

	s.metrics.IncSuccess()
	s.metrics.ObserveDuration("success", time.Since(start))
	return result, nil
}
