package books

import (
	"context"
	"testing"

	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAddBookCreatesAuthorsAndPublisherLink(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	publisher := models.Publisher{Name: "Acme Press"}
	if err := db.Create(&publisher).Error; err != nil {
		t.Fatalf("seed publisher: %v", err)
	}

	year := 2015
	details, err := svc.AddBook(ctx, AddBookInput{
		ISBN:            "978-0134190440",
		Title:           "The Go Programming Language",
		AuthorNames:     []string{"Alan Donovan", "Brian Kernighan"},
		PublisherID:     &publisher.ID,
		PublicationYear: &year,
		PriceCents:      3999,
		Category:        "Programming",
		Stock:           10,
	})
	if err != nil {
		t.Fatalf("add book: %v", err)
	}

	if details.Title != "The Go Programming Language" {
		t.Fatalf("unexpected title %q", details.Title)
	}
	if len(details.Authors) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(details.Authors))
	}
	if details.Publisher == nil || details.Publisher.Name != "Acme Press" {
		t.Fatalf("unexpected publisher %+v", details.Publisher)
	}
	if details.Threshold != 10 {
		t.Fatalf("expected default threshold 10, got %d", details.Threshold)
	}
}

func TestAddBookDuplicateISBNConflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	input := AddBookInput{
		ISBN:       "978-0134190440",
		Title:      "First",
		PriceCents: 1000,
		Category:   "Programming",
	}
	if _, err := svc.AddBook(ctx, input); err != nil {
		t.Fatalf("first add: %v", err)
	}

	input.Title = "Second"
	_, err := svc.AddBook(ctx, input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddBookUnknownPublisher(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	missing := int64(999)
	_, err := svc.AddBook(ctx, AddBookInput{
		ISBN:        "978-0134190440",
		Title:       "Orphan",
		PublisherID: &missing,
		PriceCents:  1000,
		Category:    "Programming",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateBookChangesPriceAndAuthors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBook(ctx, AddBookInput{
		ISBN:        "978-0134190440",
		Title:       "Original",
		AuthorNames: []string{"First Author"},
		PriceCents:  1000,
		Category:    "Programming",
	}); err != nil {
		t.Fatalf("seed book: %v", err)
	}

	newPrice := 2500
	newAuthors := []string{"Second Author"}
	details, err := svc.UpdateBook(ctx, "978-0134190440", UpdateBookInput{
		PriceCents:  &newPrice,
		AuthorNames: &newAuthors,
	})
	if err != nil {
		t.Fatalf("update book: %v", err)
	}
	if details.PriceCents != 2500 {
		t.Fatalf("expected price 2500, got %d", details.PriceCents)
	}
	if len(details.Authors) != 1 || details.Authors[0] != "Second Author" {
		t.Fatalf("unexpected authors %v", details.Authors)
	}
}

func TestUpdateBookUnknownISBN(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	price := 100
	_, err := svc.UpdateBook(ctx, "978-0000000000", UpdateBookInput{PriceCents: &price})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnknownBook) {
		t.Fatalf("expected unknown book, got %v", err)
	}
}

func TestAddBookRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, price := range []int{0, -500} {
		_, err := svc.AddBook(ctx, AddBookInput{
			ISBN:        "978-0134190440",
			Title:       "Free Book",
			AuthorNames: []string{"Nobody"},
			PriceCents:  price,
			Category:    "Programming",
		})
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("price %d: expected validation error, got %v", price, err)
		}
	}
}

func TestUpdateBookRejectsZeroPrice(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBook(ctx, AddBookInput{
		ISBN:        "978-0134190440",
		Title:       "Original",
		AuthorNames: []string{"First Author"},
		PriceCents:  1000,
		Category:    "Programming",
	}); err != nil {
		t.Fatalf("seed book: %v", err)
	}

	zero := 0
	_, err := svc.UpdateBook(ctx, "978-0134190440", UpdateBookInput{PriceCents: &zero})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	details, err := svc.GetDetails(ctx, "978-0134190440")
	if err != nil {
		t.Fatalf("get details: %v", err)
	}
	if details.PriceCents != 1000 {
		t.Fatalf("price should stay 1000, got %d", details.PriceCents)
	}
}

func TestSearchFilters(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []AddBookInput{
		{ISBN: "978-1", Title: "Go in Action", AuthorNames: []string{"William Kennedy"}, PriceCents: 100, Category: "Programming"},
		{ISBN: "978-2", Title: "The Pragmatic Programmer", AuthorNames: []string{"Andy Hunt"}, PriceCents: 100, Category: "Programming"},
		{ISBN: "978-3", Title: "Dune", AuthorNames: []string{"Frank Herbert"}, PriceCents: 100, Category: "Fiction"},
	}
	for _, input := range seed {
		if _, err := svc.AddBook(ctx, input); err != nil {
			t.Fatalf("seed %s: %v", input.ISBN, err)
		}
	}

	byTitle, err := svc.Search(ctx, SearchFilters{Title: "Go"})
	if err != nil {
		t.Fatalf("search by title: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].ISBN != "978-1" {
		t.Fatalf("unexpected title results %+v", byTitle)
	}

	byAuthor, err := svc.Search(ctx, SearchFilters{Author: "Herbert"})
	if err != nil {
		t.Fatalf("search by author: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].ISBN != "978-3" {
		t.Fatalf("unexpected author results %+v", byAuthor)
	}

	byCategory, err := svc.Search(ctx, SearchFilters{Category: "Programming"})
	if err != nil {
		t.Fatalf("search by category: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("expected 2 programming books, got %d", len(byCategory))
	}

	all, err := svc.Search(ctx, SearchFilters{})
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 books, got %d", len(all))
	}
}

func TestLowStockUsesPerBookThreshold(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	low := 3
	high := 50
	seed := []AddBookInput{
		{ISBN: "978-1", Title: "Plenty", PriceCents: 100, Category: "A", Stock: 5, Threshold: &low},
		{ISBN: "978-2", Title: "Scarce", PriceCents: 100, Category: "A", Stock: 5, Threshold: &high},
	}
	for _, input := range seed {
		if _, err := svc.AddBook(ctx, input); err != nil {
			t.Fatalf("seed %s: %v", input.ISBN, err)
		}
	}

	rows, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(rows) != 1 || rows[0].ISBN != "978-2" {
		t.Fatalf("unexpected low stock rows %+v", rows)
	}

	// Boundary: stock equal to threshold is not low.
	if err := db.Model(&models.Book{}).Where("isbn = ?", "978-2").Update("stock", high).Error; err != nil {
		t.Fatalf("update stock: %v", err)
	}
	rows, err = svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no low stock rows, got %+v", rows)
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func TestAddPublisher(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	details, err := svc.AddPublisher(ctx, AddPublisherInput{
		Name:    "  Acme Press  ",
		Address: "1 Print Lane",
		Email:   "orders@acmepress.example",
	})
	if err != nil {
		t.Fatalf("add publisher: %v", err)
	}
	if details.ID == 0 {
		t.Fatal("expected assigned publisher id")
	}
	if details.Name != "Acme Press" {
		t.Fatalf("expected trimmed name, got %q", details.Name)
	}

	publishers, err := svc.ListPublishers(ctx)
	if err != nil {
		t.Fatalf("list publishers: %v", err)
	}
	if len(publishers) != 1 || publishers[0].Name != "Acme Press" {
		t.Fatalf("unexpected publishers %+v", publishers)
	}
}

func TestAddPublisherRequiresName(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.AddPublisher(context.Background(), AddPublisherInput{Name: "   "})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddPublisherDuplicateNameConflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddPublisher(ctx, AddPublisherInput{Name: "Acme Press"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.AddPublisher(ctx, AddPublisherInput{Name: "Acme Press"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:books_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Publisher{}, &models.Author{}, &models.Book{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}
