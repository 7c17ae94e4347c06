package cart

import (
	"context"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DetailedRow is a cart entry joined with its catalog row.
type DetailedRow struct {
	ISBN           string
	Title          string
	Quantity       int
	UnitPriceCents int
	Stock          int
}

// Repository exposes persistence operations for per-user carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
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

// FindEntry loads a single cart entry, gorm.ErrRecordNotFound when absent.
func (r *Repository) FindEntry(ctx context.Context, userID uuid.UUID, isbn string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND isbn = ?", userID, isbn).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert inserts the entry or replaces the quantity of an existing one.
func (r *Repository) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Remove deletes one entry. Removing an absent entry is not an error.
func (r *Repository) Remove(ctx context.Context, userID uuid.UUID, isbn string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND isbn = ?", userID, isbn).
		Delete(&models.CartItem{}).Error
}

// Clear deletes every entry for the user.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// ListEntries returns the raw cart rows for the user, oldest first.
func (r *Repository) ListEntries(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDetailed returns the user's cart joined with book title and current price.
func (r *Repository) ListDetailed(ctx context.Context, userID uuid.UUID) ([]DetailedRow, error) {
	var rows []DetailedRow
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.isbn, books.title, cart_items.quantity, books.price_cents AS unit_price_cents, books.stock").
		Joins("JOIN books ON books.isbn = cart_items.isbn").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
