package models

import (
	"time"

	"github.com/bookhaven/bookhaven-backend/pkg/enums"
)

// PurchaseOrder is a pending replenishment request against a publisher.
// Confirming it increments the book's stock exactly once.
type PurchaseOrder struct {
	ID          int64                     `gorm:"column:po_id;primaryKey;autoIncrement"`
	ISBN        string                    `gorm:"column:isbn;not null;index"`
	PublisherID int64                     `gorm:"column:publisher_id;not null"`
	Quantity    int                       `gorm:"column:quantity;not null"`
	Status      enums.PurchaseOrderStatus `gorm:"column:status;not null;default:'Pending'"`
	OrderedAt   time.Time                 `gorm:"column:ordered_at;autoCreateTime"`
	ConfirmedAt *time.Time                `gorm:"column:confirmed_at"`
}
