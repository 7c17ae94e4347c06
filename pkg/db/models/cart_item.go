package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem stages a desired purchase before checkout. Quantity expresses
// intent only; it is never a stock hold.
type CartItem struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	ISBN      string    `gorm:"column:isbn;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
