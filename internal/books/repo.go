package books

import (
	"context"
	"strings"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	"gorm.io/gorm"
)

// SearchFilters narrows catalog searches. Empty fields are ignored.
type SearchFilters struct {
	Title    string
	Author   string
	Category string
}

// Repository exposes persistence operations for the book catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
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

// CreateBook inserts a new catalog row.
func (r *Repository) CreateBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Omit("Authors").Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook saves the provided book row.
func (r *Repository) UpdateBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Omit("Authors").Save(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// FindByISBN loads a book with its authors.
func (r *Repository) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Authors").
		Where("isbn = ?", isbn).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindOrCreateAuthors resolves author names to rows, creating missing ones.
func (r *Repository) FindOrCreateAuthors(ctx context.Context, names []string) ([]models.Author, error) {
	authors := make([]models.Author, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var author models.Author
		err := r.db.WithContext(ctx).
			Where("author_name = ?", name).
			FirstOrCreate(&author, models.Author{Name: name}).Error
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

// ReplaceAuthors overwrites the author set attached to a book.
func (r *Repository) ReplaceAuthors(ctx context.Context, book *models.Book, authors []models.Author) error {
	return r.db.WithContext(ctx).Model(book).Association("Authors").Replace(authors)
}

// FindPublisher loads a publisher row by ID.
func (r *Repository) FindPublisher(ctx context.Context, id int64) (*models.Publisher, error) {
	var publisher models.Publisher
	err := r.db.WithContext(ctx).Where("publisher_id = ?", id).First(&publisher).Error
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}

// CreatePublisher inserts a new publisher row.
func (r *Repository) CreatePublisher(ctx context.Context, publisher *models.Publisher) (*models.Publisher, error) {
	if err := r.db.WithContext(ctx).Create(publisher).Error; err != nil {
		return nil, err
	}
	return publisher, nil
}

// ListPublishers returns all publisher rows ordered by name.
func (r *Repository) ListPublishers(ctx context.Context) ([]models.Publisher, error) {
	var rows []models.Publisher
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search returns catalog rows matching the filters, authors preloaded.
func (r *Repository) Search(ctx context.Context, filters SearchFilters) ([]models.Book, error) {
	q := r.db.WithContext(ctx).Model(&models.Book{}).Preload("Authors")

	if filters.Title != "" {
		q = q.Where("books.title LIKE ?", "%"+filters.Title+"%")
	}
	if filters.Category != "" {
		q = q.Where("books.category LIKE ?", "%"+filters.Category+"%")
	}
	if filters.Author != "" {
		q = q.
			Joins("JOIN book_authors ON book_authors.isbn = books.isbn").
			Joins("JOIN authors ON authors.author_id = book_authors.author_id").
			Where("authors.author_name LIKE ?", "%"+filters.Author+"%").
			Distinct("books.*")
	}

	var rows []models.Book
	if err := q.Order("books.title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLowStock returns books whose stock fell below their reorder threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Book, error) {
	var rows []models.Book
	err := r.db.WithContext(ctx).
		Preload("Authors").
		Where("stock < threshold").
		Order("stock ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
