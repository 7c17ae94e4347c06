package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultRankLimit = 10
	rankWindowMonths = 3
)

// SalesReport aggregates order volume and revenue over a window.
type SalesReport struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// CustomerRank is one row of the top-customers report.
type CustomerRank struct {
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	OrderCount int64           `json:"order_count"`
	Spent      decimal.Decimal `json:"spent"`
}

// BookRank is one row of the top-books report.
type BookRank struct {
	ISBN      string          `json:"isbn"`
	Title     string          `json:"title"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ReplenishmentSummary counts the purchase orders raised for one title by state.
type ReplenishmentSummary struct {
	ISBN      string `json:"isbn"`
	Pending   int64  `json:"pending"`
	Confirmed int64  `json:"confirmed"`
}

// Service exposes the admin reporting surface.
type Service interface {
	MonthlySales(ctx context.Context, year int, month time.Month) (*SalesReport, error)
	DailySales(ctx context.Context, day time.Time) (*SalesReport, error)
	TopCustomers(ctx context.Context, limit int) ([]CustomerRank, error)
	TopBooks(ctx context.Context, limit int) ([]BookRank, error)
	ReplenishmentCount(ctx context.Context, isbn string) (*ReplenishmentSummary, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a reports service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

// MonthlySales aggregates orders placed in the given calendar month.
func (s *service) MonthlySales(ctx context.Context, year int, month time.Month) (*SalesReport, error) {
	from, to, err := monthWindow(year, month)
	if err != nil {
		return nil, err
	}
	return s.sales(ctx, from, to)
}

// DailySales aggregates orders placed on the given calendar day (UTC).
func (s *service) DailySales(ctx context.Context, day time.Time) (*SalesReport, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	return s.sales(ctx, from, to)
}

// TopCustomers ranks buyers by spend over the trailing three months.
func (s *service) TopCustomers(ctx context.Context, limit int) ([]CustomerRank, error) {
	if limit <= 0 {
		limit = defaultRankLimit
	}

	rows, err := s.repo.topCustomersSince(ctx, rankWindowStart(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top customers")
	}

	out := make([]CustomerRank, 0, len(rows))
	for _, row := range rows {
		out = append(out, CustomerRank{
			UserID:     row.UserID,
			Username:   row.Username,
			OrderCount: row.OrderCount,
			Spent:      centsToDecimal(row.SpentCents),
		})
	}
	return out, nil
}

// TopBooks ranks titles by units sold over the trailing three months.
func (s *service) TopBooks(ctx context.Context, limit int) ([]BookRank, error) {
	if limit <= 0 {
		limit = defaultRankLimit
	}

	rows, err := s.repo.topBooksSince(ctx, rankWindowStart(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top books")
	}

	out := make([]BookRank, 0, len(rows))
	for _, row := range rows {
		out = append(out, BookRank{
			ISBN:      row.ISBN,
			Title:     row.Title,
			UnitsSold: row.UnitsSold,
			Revenue:   centsToDecimal(row.RevenueCents),
		})
	}
	return out, nil
}

// ReplenishmentCount summarizes the purchase orders raised for one title.
func (s *service) ReplenishmentCount(ctx context.Context, isbn string) (*ReplenishmentSummary, error) {
	if isbn == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}

	pending, err := s.repo.replenishmentCountForISBN(ctx, isbn, enums.PurchaseOrderStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending purchase orders")
	}
	confirmed, err := s.repo.replenishmentCountForISBN(ctx, isbn, enums.PurchaseOrderStatusConfirmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count confirmed purchase orders")
	}

	return &ReplenishmentSummary{ISBN: isbn, Pending: pending, Confirmed: confirmed}, nil
}

func (s *service) sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	agg, err := s.repo.salesBetween(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sales")
	}
	return &SalesReport{
		From:       from,
		To:         to,
		OrderCount: agg.OrderCount,
		Revenue:    centsToDecimal(agg.TotalCents),
	}, nil
}

func monthWindow(year int, month time.Month) (time.Time, time.Time, error) {
	if year < 1 || month < time.January || month > time.December {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid year or month")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

func rankWindowStart() time.Time {
	return time.Now().UTC().AddDate(0, -rankWindowMonths, 0)
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
