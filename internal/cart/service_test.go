package cart

import (
	"context"
	"testing"

	"github.com/bookhaven/bookhaven-backend/internal/books"
	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAddMergesQuantities(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedBook(t, db, "978-1", "Go in Action", 2500, 10)

	if _, err := svc.Add(ctx, userID, "978-1", 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	view, err := svc.Add(ctx, userID, "978-1", 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(view.Lines) != 1 {
		t.Fatalf("expected single line, got %d", len(view.Lines))
	}
	line := view.Lines[0]
	if line.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", line.Quantity)
	}
	if line.LineTotalCents != 12500 || view.TotalCents != 12500 {
		t.Fatalf("unexpected totals line=%d cart=%d", line.LineTotalCents, view.TotalCents)
	}
}

func TestAddUnknownBook(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, uuid.New(), "978-0000000000", 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnknownBook) {
		t.Fatalf("expected unknown book, got %v", err)
	}
}

func TestAddAdvisoryStockCheckCountsExistingEntry(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedBook(t, db, "978-1", "Scarce", 1000, 3)

	if _, err := svc.Add(ctx, userID, "978-1", 2); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// 2 already staged + 2 more would exceed the 3 in stock.
	_, err := svc.Add(ctx, userID, "978-1", 2)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	view, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].Quantity != 2 {
		t.Fatalf("cart must be unchanged, got %+v", view.Lines)
	}
}

func TestUpdateSetsQuantityAndZeroRemoves(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedBook(t, db, "978-1", "Book", 1000, 10)

	if _, err := svc.Add(ctx, userID, "978-1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	view, err := svc.Update(ctx, userID, "978-1", 7)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Lines[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", view.Lines[0].Quantity)
	}

	view, err = svc.Update(ctx, userID, "978-1", 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", view.Lines)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedBook(t, db, "978-1", "Book", 1000, 10)

	if _, err := svc.Remove(ctx, userID, "978-1"); err != nil {
		t.Fatalf("remove absent entry: %v", err)
	}

	if _, err := svc.Add(ctx, userID, "978-1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Remove(ctx, userID, "978-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Remove(ctx, userID, "978-1"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestClearEmptiesOnlyThatUsersCart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()
	seedBook(t, db, "978-1", "Book", 1000, 10)

	if _, err := svc.Add(ctx, alice, "978-1", 1); err != nil {
		t.Fatalf("alice add: %v", err)
	}
	if _, err := svc.Add(ctx, bob, "978-1", 2); err != nil {
		t.Fatalf("bob add: %v", err)
	}

	if err := svc.Clear(ctx, alice); err != nil {
		t.Fatalf("clear: %v", err)
	}

	aliceView, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("alice list: %v", err)
	}
	if len(aliceView.Lines) != 0 {
		t.Fatalf("alice cart should be empty, got %+v", aliceView.Lines)
	}

	bobView, err := svc.List(ctx, bob)
	if err != nil {
		t.Fatalf("bob list: %v", err)
	}
	if len(bobView.Lines) != 1 || bobView.Lines[0].Quantity != 2 {
		t.Fatalf("bob cart must be untouched, got %+v", bobView.Lines)
	}
}

func TestListPricesAtCurrentCatalogPrice(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	seedBook(t, db, "978-1", "Book", 1000, 10)

	if _, err := svc.Add(ctx, userID, "978-1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Reprice after the item is staged: the cart reflects the new price.
	if err := db.Model(&models.Book{}).Where("isbn = ?", "978-1").Update("price_cents", 1500).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}

	view, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if view.Lines[0].UnitPriceCents != 1500 || view.TotalCents != 3000 {
		t.Fatalf("expected repriced cart, got %+v", view)
	}
}

func seedBook(t *testing.T, db *gorm.DB, isbn, title string, priceCents, stock int) {
	t.Helper()
	book := models.Book{
		ISBN:       isbn,
		Title:      title,
		PriceCents: priceCents,
		Category:   "Testing",
		Stock:      stock,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Book{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(db), books.NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}
