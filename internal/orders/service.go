package orders

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes read access to the order archive.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderView, error)
	Get(ctx context.Context, orderID int64, userID uuid.UUID) (*OrderView, error)
}

// LineView is one archived order line. The unit price is the snapshot
// taken at checkout, not the current catalog price.
type LineView struct {
	ISBN           string `json:"isbn"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	LineTotalCents int    `json:"line_total_cents"`
}

// OrderView is the archived order as returned to its owner.
type OrderView struct {
	OrderID    int64             `json:"order_id"`
	PlacedAt   time.Time         `json:"placed_at"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int               `json:"total_cents"`
	PaymentRef *string           `json:"payment_ref,omitempty"`
	Lines      []LineView        `json:"lines"`
}

type service struct {
	repo *Repository
}

// NewService constructs an orders service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// ListForUser returns the user's order history newest first.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	titles, err := s.titlesFor(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildView(row, titles))
	}
	return out, nil
}

// Get loads one order. Orders of other users are indistinguishable from
// missing ones.
func (s *service) Get(ctx context.Context, orderID int64, userID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	titles, err := s.titlesFor(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	view := buildView(*order, titles)
	return &view, nil
}

func (s *service) titlesFor(ctx context.Context, rows []models.Order) (map[string]string, error) {
	seen := make(map[string]struct{})
	isbns := make([]string, 0)
	for _, row := range rows {
		for _, line := range row.Lines {
			if _, ok := seen[line.ISBN]; ok {
				continue
			}
			seen[line.ISBN] = struct{}{}
			isbns = append(isbns, line.ISBN)
		}
	}

	titles, err := s.repo.TitlesForISBNs(ctx, isbns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve titles")
	}
	return titles, nil
}

func buildView(order models.Order, titles map[string]string) OrderView {
	view := OrderView{
		OrderID:    order.ID,
		PlacedAt:   order.PlacedAt,
		Status:     order.Status,
		TotalCents: order.TotalCents,
		PaymentRef: order.PaymentRef,
		Lines:      make([]LineView, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, LineView{
			ISBN:           line.ISBN,
			Title:          titles[line.ISBN],
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.Quantity * line.UnitPriceCents,
		})
	}
	return view
}
