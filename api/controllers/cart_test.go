package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookhaven/bookhaven-backend/api/middleware"
	cartsvc "github.com/bookhaven/bookhaven-backend/internal/cart"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
)

type stubCart struct {
	view *cartsvc.CartView
	err  error

	gotISBN string
	gotQty  int
}

func (s *stubCart) Add(ctx context.Context, userID uuid.UUID, isbn string, qty int) (*cartsvc.CartView, error) {
	s.gotISBN = isbn
	s.gotQty = qty
	return s.view, s.err
}

func (s *stubCart) Update(ctx context.Context, userID uuid.UUID, isbn string, qty int) (*cartsvc.CartView, error) {
	s.gotISBN = isbn
	s.gotQty = qty
	return s.view, s.err
}

func (s *stubCart) Remove(ctx context.Context, userID uuid.UUID, isbn string) (*cartsvc.CartView, error) {
	s.gotISBN = isbn
	return s.view, s.err
}

func (s *stubCart) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.err
}

func (s *stubCart) List(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error) {
	return s.view, s.err
}

func TestCartAddSuccess(t *testing.T) {
	stub := &stubCart{view: &cartsvc.CartView{
		Lines: []cartsvc.CartLine{{
			ISBN:           "978-0134190440",
			Title:          "The Go Programming Language",
			Quantity:       2,
			UnitPriceCents: 2500,
			LineTotalCents: 5000,
		}},
		TotalCents: 5000,
	}}
	handler := CartAdd(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"isbn":"978-0134190440","quantity":2}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if stub.gotISBN != "978-0134190440" || stub.gotQty != 2 {
		t.Fatalf("unexpected service call isbn=%s qty=%d", stub.gotISBN, stub.gotQty)
	}

	var envelope struct {
		Data cartsvc.CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalCents != 5000 {
		t.Fatalf("unexpected total %d", envelope.Data.TotalCents)
	}
}

func TestCartAddRejectsZeroQuantity(t *testing.T) {
	handler := CartAdd(&stubCart{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"isbn":"978-0134190440","quantity":0}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddMapsInsufficientStock(t *testing.T) {
	stub := &stubCart{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{"isbn": "978-0134190440", "available": 1})}
	handler := CartAdd(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"isbn":"978-0134190440","quantity":5}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCartListRequiresUserContext(t *testing.T) {
	handler := CartList(&stubCart{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartUpdateItemReadsPathParam(t *testing.T) {
	stub := &stubCart{view: &cartsvc.CartView{}}
	router := chi.NewRouter()
	router.Put("/api/v1/cart/items/{isbn}", CartUpdateItem(stub, nil))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/978-1", strings.NewReader(`{"quantity":3}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if stub.gotISBN != "978-1" || stub.gotQty != 3 {
		t.Fatalf("unexpected service call isbn=%s qty=%d", stub.gotISBN, stub.gotQty)
	}
}
