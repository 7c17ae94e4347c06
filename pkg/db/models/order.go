package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookhaven-backend/pkg/enums"
)

// Order is immutable once created. TotalCents is computed server-side at
// checkout; it is never taken from the caller.
type Order struct {
	ID         int64             `gorm:"column:order_id;primaryKey;autoIncrement"`
	UserID     uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	PlacedAt   time.Time         `gorm:"column:placed_at;autoCreateTime"`
	TotalCents int               `gorm:"column:total_cents;not null"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:'Pending'"`
	PaymentRef *string           `gorm:"column:payment_ref"`
	Lines      []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}
