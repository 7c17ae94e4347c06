package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	replenishmentsvc "github.com/bookhaven/bookhaven-backend/internal/replenishment"
	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
)

type stubReplenishment struct {
	view  *replenishmentsvc.POView
	views []replenishmentsvc.POView
	err   error

	gotInput replenishmentsvc.CreateInput
	gotPOID  int64
}

func (s *stubReplenishment) Create(ctx context.Context, input replenishmentsvc.CreateInput) (*replenishmentsvc.POView, error) {
	s.gotInput = input
	return s.view, s.err
}

func (s *stubReplenishment) Confirm(ctx context.Context, poID int64) (*replenishmentsvc.POView, error) {
	s.gotPOID = poID
	return s.view, s.err
}

func (s *stubReplenishment) ListPending(ctx context.Context) ([]replenishmentsvc.POView, error) {
	return s.views, s.err
}

func (s *stubReplenishment) ListConfirmed(ctx context.Context) ([]replenishmentsvc.POView, error) {
	return s.views, s.err
}

func TestReplenishmentCreateSuccess(t *testing.T) {
	stub := &stubReplenishment{view: &replenishmentsvc.POView{
		ID:     7,
		ISBN:   "978-1",
		Status: enums.PurchaseOrderStatusPending,
	}}
	handler := ReplenishmentCreate(stub, nil)

	body := `{"isbn":"978-1","publisher_id":3,"quantity":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/replenishment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}
	if stub.gotInput.ISBN != "978-1" || stub.gotInput.PublisherID != 3 || stub.gotInput.Quantity != 20 {
		t.Fatalf("unexpected input %+v", stub.gotInput)
	}
}

func TestReplenishmentCreateRejectsZeroQuantity(t *testing.T) {
	handler := ReplenishmentCreate(&stubReplenishment{}, nil)

	body := `{"isbn":"978-1","publisher_id":3,"quantity":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/replenishment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestReplenishmentConfirmParsesID(t *testing.T) {
	stub := &stubReplenishment{view: &replenishmentsvc.POView{ID: 7, Status: enums.PurchaseOrderStatusConfirmed}}
	router := chi.NewRouter()
	router.Post("/api/v1/admin/replenishment/{poId}/confirm", ReplenishmentConfirm(stub, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/replenishment/7/confirm", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if stub.gotPOID != 7 {
		t.Fatalf("unexpected po id %d", stub.gotPOID)
	}
}

func TestReplenishmentConfirmAlreadyConfirmed(t *testing.T) {
	stub := &stubReplenishment{err: pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not pending")}
	router := chi.NewRouter()
	router.Post("/api/v1/admin/replenishment/{poId}/confirm", ReplenishmentConfirm(stub, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/replenishment/7/confirm", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestReplenishmentListRejectsUnknownStatus(t *testing.T) {
	handler := ReplenishmentList(&stubReplenishment{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/replenishment?status=shipped", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
}
