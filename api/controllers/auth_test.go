package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bookhaven/bookhaven-backend/api/middleware"
	authsvc "github.com/bookhaven/bookhaven-backend/internal/auth"
	"github.com/bookhaven/bookhaven-backend/internal/users"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
)

type stubAuth struct {
	user  *users.UserDTO
	login *authsvc.LoginResponse
	err   error

	gotRegister authsvc.RegisterRequest
	gotUserID   uuid.UUID
}

func (s *stubAuth) Register(ctx context.Context, req authsvc.RegisterRequest) (*users.UserDTO, error) {
	s.gotRegister = req
	return s.user, s.err
}

func (s *stubAuth) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuth) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.gotUserID = userID
	return s.user, s.err
}

func TestAuthRegisterSuccess(t *testing.T) {
	stub := &stubAuth{user: &users.UserDTO{ID: uuid.New(), Username: "alice"}}
	handler := AuthRegister(stub, nil)

	body := `{"username":"alice","email":"a@b.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}
	if stub.gotRegister.Username != "alice" {
		t.Fatalf("unexpected input %+v", stub.gotRegister)
	}
}

func TestAuthRegisterRejectsShortPassword(t *testing.T) {
	handler := AuthRegister(&stubAuth{}, nil)

	body := `{"username":"alice","email":"a@b.com","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthMeReturnsProfile(t *testing.T) {
	userID := uuid.New()
	stub := &stubAuth{user: &users.UserDTO{ID: userID, Username: "alice", Email: "a@b.com"}}
	handler := AuthMe(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if stub.gotUserID != userID {
		t.Fatalf("unexpected user id %s", stub.gotUserID)
	}

	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Username != "alice" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestAuthMeRequiresUserContext(t *testing.T) {
	handler := AuthMe(&stubAuth{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	stub := &stubAuth{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(stub, nil)

	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
