package models

// Author is display metadata attached to books via the book_authors join.
type Author struct {
	ID   int64  `gorm:"column:author_id;primaryKey;autoIncrement"`
	Name string `gorm:"column:author_name;not null;uniqueIndex"`
}
