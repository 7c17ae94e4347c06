package reports

import (
	"context"
	"time"

	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	"gorm.io/gorm"
)

type salesAggregate struct {
	OrderCount int64
	TotalCents int64
}

type customerAggregate struct {
	UserID     string
	Username   string
	OrderCount int64
	SpentCents int64
}

type bookAggregate struct {
	ISBN         string
	Title        string
	UnitsSold    int64
	RevenueCents int64
}

// Repository runs the aggregate queries behind the admin reports.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) salesBetween(ctx context.Context, from, to time.Time) (*salesAggregate, error) {
	var agg salesAggregate
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_cents), 0) AS total_cents").
		Where("placed_at >= ? AND placed_at < ?", from, to).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *Repository) topCustomersSince(ctx context.Context, since time.Time, limit int) ([]customerAggregate, error) {
	var rows []customerAggregate
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.user_id AS user_id, users.username AS username, COUNT(*) AS order_count, SUM(orders.total_cents) AS spent_cents").
		Joins("JOIN users ON users.user_id = orders.user_id").
		Where("orders.placed_at >= ?", since).
		Group("orders.user_id, users.username").
		Order("spent_cents DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) topBooksSince(ctx context.Context, since time.Time, limit int) ([]bookAggregate, error) {
	var rows []bookAggregate
	err := r.db.WithContext(ctx).
		Table("order_lines").
		Select("order_lines.isbn AS isbn, books.title AS title, SUM(order_lines.quantity) AS units_sold, SUM(order_lines.quantity * order_lines.unit_price_cents) AS revenue_cents").
		Joins("JOIN orders ON orders.order_id = order_lines.order_id").
		Joins("JOIN books ON books.isbn = order_lines.isbn").
		Where("orders.placed_at >= ?", since).
		Group("order_lines.isbn, books.title").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) replenishmentCountForISBN(ctx context.Context, isbn string, status enums.PurchaseOrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("purchase_orders").
		Where("isbn = ? AND status = ?", isbn, status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
