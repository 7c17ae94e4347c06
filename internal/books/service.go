package books

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/bookhaven/bookhaven-backend/pkg/db"
	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes catalog management and browsing operations.
type Service interface {
	AddBook(ctx context.Context, input AddBookInput) (*BookDetails, error)
	UpdateBook(ctx context.Context, isbn string, input UpdateBookInput) (*BookDetails, error)
	Search(ctx context.Context, filters SearchFilters) ([]BookSummary, error)
	GetDetails(ctx context.Context, isbn string) (*BookDetails, error)
	LowStock(ctx context.Context) ([]LowStockRow, error)
	AddPublisher(ctx context.Context, input AddPublisherInput) (*PublisherDetails, error)
	ListPublishers(ctx context.Context) ([]PublisherDetails, error)
}

// AddBookInput holds the validated payload to create a catalog entry.
type AddBookInput struct {
	ISBN            string
	Title           string
	AuthorNames     []string
	PublisherID     *int64
	PublicationYear *int
	PriceCents      int
	Category        string
	Stock           int
	Threshold       *int
}

// UpdateBookInput holds optional mutation values for a catalog entry.
type UpdateBookInput struct {
	Title           *string
	AuthorNames     *[]string
	PublisherID     *int64
	PublicationYear *int
	PriceCents      *int
	Category        *string
	Threshold       *int
}

// BookSummary is the listing shape returned from searches.
type BookSummary struct {
	ISBN       string   `json:"isbn"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	PriceCents int      `json:"price_cents"`
	Category   string   `json:"category"`
	Stock      int      `json:"stock"`
}

// BookDetails is the full catalog view of a single title.
type BookDetails struct {
	ISBN            string         `json:"isbn"`
	Title           string         `json:"title"`
	Authors         []string       `json:"authors"`
	Publisher       *PublisherInfo `json:"publisher,omitempty"`
	PublicationYear *int           `json:"publication_year,omitempty"`
	PriceCents      int            `json:"price_cents"`
	Category        string         `json:"category"`
	Stock           int            `json:"stock"`
	Threshold       int            `json:"threshold"`
}

// PublisherInfo is the embedded publisher view on book details.
type PublisherInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AddPublisherInput holds the validated payload to register a publisher.
type AddPublisherInput struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

// PublisherDetails is the full view of a registered publisher.
type PublisherDetails struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// LowStockRow flags a title that fell below its reorder threshold.
type LowStockRow struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// AddBook creates the catalog entry together with its author rows.
func (s *service) AddBook(ctx context.Context, input AddBookInput) (*BookDetails, error) {
	if err := validateAddBook(input); err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		book := &models.Book{
			ISBN:            strings.TrimSpace(input.ISBN),
			Title:           strings.TrimSpace(input.Title),
			PublisherID:     input.PublisherID,
			PublicationYear: input.PublicationYear,
			PriceCents:      input.PriceCents,
			Category:        strings.TrimSpace(input.Category),
			Stock:           input.Stock,
		}
		if input.Threshold != nil {
			book.Threshold = *input.Threshold
		}

		if input.PublisherID != nil {
			if _, err := txRepo.FindPublisher(ctx, *input.PublisherID); err != nil {
				if stdErrors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "publisher not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load publisher")
			}
		}

		if _, err := txRepo.CreateBook(ctx, book); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "isbn already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert book")
		}

		authors, err := txRepo.FindOrCreateAuthors(ctx, input.AuthorNames)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve authors")
		}
		if err := txRepo.ReplaceAuthors(ctx, book, authors); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: attach authors")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add book")
	}

	return s.GetDetails(ctx, input.ISBN)
}

// UpdateBook applies the provided mutations to an existing catalog entry.
func (s *service) UpdateBook(ctx context.Context, isbn string, input UpdateBookInput) (*BookDetails, error) {
	if isbn == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}
	if input.PriceCents != nil && *input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Threshold != nil && *input.Threshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold cannot be negative")
	}

	book, err := s.repo.FindByISBN(ctx, isbn)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownBook, "unknown isbn")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applyUpdateToBook(book, input)
		if input.PublisherID != nil {
			if _, err := txRepo.FindPublisher(ctx, *input.PublisherID); err != nil {
				if stdErrors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "publisher not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load publisher")
			}
		}
		if _, err := txRepo.UpdateBook(ctx, book); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update book")
		}

		if input.AuthorNames != nil {
			authors, err := txRepo.FindOrCreateAuthors(ctx, *input.AuthorNames)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve authors")
			}
			if err := txRepo.ReplaceAuthors(ctx, book, authors); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace authors")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
	}

	return s.GetDetails(ctx, isbn)
}

// Search lists catalog entries matching the provided filters.
func (s *service) Search(ctx context.Context, filters SearchFilters) ([]BookSummary, error) {
	rows, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search books")
	}

	out := make([]BookSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, BookSummary{
			ISBN:       row.ISBN,
			Title:      row.Title,
			Authors:    authorNames(row.Authors),
			PriceCents: row.PriceCents,
			Category:   row.Category,
			Stock:      row.Stock,
		})
	}
	return out, nil
}

// GetDetails returns the full catalog view of one title.
func (s *service) GetDetails(ctx context.Context, isbn string) (*BookDetails, error) {
	book, err := s.repo.FindByISBN(ctx, isbn)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownBook, "unknown isbn")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	details := &BookDetails{
		ISBN:            book.ISBN,
		Title:           book.Title,
		Authors:         authorNames(book.Authors),
		PublicationYear: book.PublicationYear,
		PriceCents:      book.PriceCents,
		Category:        book.Category,
		Stock:           book.Stock,
		Threshold:       book.Threshold,
	}
	if book.PublisherID != nil {
		publisher, err := s.repo.FindPublisher(ctx, *book.PublisherID)
		if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load publisher")
		}
		if publisher != nil {
			details.Publisher = &PublisherInfo{ID: publisher.ID, Name: publisher.Name}
		}
	}
	return details, nil
}

// LowStock lists every title whose stock fell below its threshold.
func (s *service) LowStock(ctx context.Context) ([]LowStockRow, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}

	out := make([]LowStockRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, LowStockRow{
			ISBN:      row.ISBN,
			Title:     row.Title,
			Stock:     row.Stock,
			Threshold: row.Threshold,
		})
	}
	return out, nil
}

// AddPublisher registers a new supplier for replenishment orders.
func (s *service) AddPublisher(ctx context.Context, input AddPublisherInput) (*PublisherDetails, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "publisher name is required")
	}

	publisher := &models.Publisher{
		Name:    strings.TrimSpace(input.Name),
		Address: strings.TrimSpace(input.Address),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
	}
	if _, err := s.repo.CreatePublisher(ctx, publisher); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "publisher name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert publisher")
	}

	return publisherDetails(publisher), nil
}

// ListPublishers returns every registered publisher.
func (s *service) ListPublishers(ctx context.Context) ([]PublisherDetails, error) {
	rows, err := s.repo.ListPublishers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list publishers")
	}

	out := make([]PublisherDetails, 0, len(rows))
	for i := range rows {
		out = append(out, *publisherDetails(&rows[i]))
	}
	return out, nil
}

func publisherDetails(publisher *models.Publisher) *PublisherDetails {
	return &PublisherDetails{
		ID:      publisher.ID,
		Name:    publisher.Name,
		Address: publisher.Address,
		Email:   publisher.Email,
		Phone:   publisher.Phone,
	}
}

func validateAddBook(input AddBookInput) error {
	if strings.TrimSpace(input.ISBN) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.PriceCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.Threshold != nil && *input.Threshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "threshold cannot be negative")
	}
	return nil
}

func applyUpdateToBook(book *models.Book, input UpdateBookInput) {
	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.PublisherID != nil {
		book.PublisherID = input.PublisherID
	}
	if input.PublicationYear != nil {
		book.PublicationYear = input.PublicationYear
	}
	if input.PriceCents != nil {
		book.PriceCents = *input.PriceCents
	}
	if input.Category != nil {
		book.Category = strings.TrimSpace(*input.Category)
	}
	if input.Threshold != nil {
		book.Threshold = *input.Threshold
	}
}

func authorNames(authors []models.Author) []string {
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		names = append(names, author.Name)
	}
	return names
}
