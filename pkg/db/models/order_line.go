package models

// OrderLine snapshots one cart entry at checkout time. UnitPriceCents is the
// price paid; it is never re-read from the catalog after the order commits.
type OrderLine struct {
	ID             int64  `gorm:"column:line_id;primaryKey;autoIncrement"`
	OrderID        int64  `gorm:"column:order_id;not null;index"`
	ISBN           string `gorm:"column:isbn;not null"`
	Quantity       int    `gorm:"column:quantity;not null"`
	UnitPriceCents int    `gorm:"column:unit_price_cents;not null"`
}
