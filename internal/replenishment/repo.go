package replenishment

import (
	"context"
	"time"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for purchase orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a replenishment repository bound to the provided DB.
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

// Create inserts a new purchase order.
func (r *Repository) Create(ctx context.Context, po *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if po.Status == "" {
		po.Status = enums.PurchaseOrderStatusPending
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return nil, err
	}
	return po, nil
}

// FindByID loads one purchase order.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).Where("po_id = ?", id).First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// ListByStatus returns purchase orders in the given state, oldest first.
func (r *Repository) ListByStatus(ctx context.Context, status enums.PurchaseOrderStatus) ([]models.PurchaseOrder, error) {
	var rows []models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("ordered_at ASC, po_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ConfirmPending flips a Pending purchase order to Confirmed. The conditional
// WHERE makes the transition single-shot: a second confirm affects zero rows.
func (r *Repository) ConfirmPending(ctx context.Context, id int64, confirmedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE purchase_orders
		SET status = ?, confirmed_at = ?
		WHERE po_id = ? AND status = ?
	`, enums.PurchaseOrderStatusConfirmed, confirmedAt, id, enums.PurchaseOrderStatusPending)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
