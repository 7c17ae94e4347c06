package models

import "time"

// Publisher is the supplier replenishment orders are placed against.
type Publisher struct {
	ID        int64     `gorm:"column:publisher_id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Address   string    `gorm:"column:address"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
