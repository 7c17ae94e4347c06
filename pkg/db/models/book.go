package models

import "time"

// Book is the catalog record. Stock is the authoritative availability
// counter; it is mutated only through the inventory ledger.
type Book struct {
	ISBN            string    `gorm:"column:isbn;primaryKey"`
	Title           string    `gorm:"column:title;not null"`
	PublisherID     *int64    `gorm:"column:publisher_id"`
	PublicationYear *int      `gorm:"column:publication_year"`
	PriceCents      int       `gorm:"column:price_cents;not null"`
	Category        string    `gorm:"column:category;not null"`
	Stock           int       `gorm:"column:stock;not null;default:0"`
	Threshold       int       `gorm:"column:threshold;not null;default:10"`
	Authors         []Author  `gorm:"many2many:book_authors;foreignKey:ISBN;joinForeignKey:ISBN;references:ID;joinReferences:AuthorID"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
