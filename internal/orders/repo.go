package orders

import (
	"context"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for the order archive.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateOrder inserts the order header and its lines in one write.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser returns the user's orders newest first, lines preloaded.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("placed_at DESC, order_id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByIDForUser loads one order restricted to its owner.
func (r *Repository) FindByIDForUser(ctx context.Context, orderID int64, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TitlesForISBNs resolves current catalog titles for the given ISBNs.
func (r *Repository) TitlesForISBNs(ctx context.Context, isbns []string) (map[string]string, error) {
	titles := make(map[string]string, len(isbns))
	if len(isbns) == 0 {
		return titles, nil
	}

	var rows []models.Book
	err := r.db.WithContext(ctx).
		Select("isbn", "title").
		Where("isbn IN ?", isbns).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		titles[row.ISBN] = row.Title
	}
	return titles, nil
}
