package auth

import (
	"context"
	"testing"

	"github.com/bookhaven/bookhaven-backend/internal/users"
	pkgAuth "github.com/bookhaven/bookhaven-backend/pkg/auth"
	"github.com/bookhaven/bookhaven-backend/pkg/config"
	"github.com/bookhaven/bookhaven-backend/pkg/db/models"
	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwtCfg := config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "bookhaven-test",
		ExpirationMinutes: 15,
	}
	// Cheap argon params keep the suite fast.
	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
	}
	return jwtCfg, passwordCfg
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", dto.Role)
	}
	if dto.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %s", dto.Email)
	}

	resp, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}

	jwtCfg, _ := testConfigs()
	claims, err := pkgAuth.ParseAccessToken(jwtCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != dto.ID || claims.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []RegisterRequest{
		{Username: "", Email: "a@b.com", Password: "long-enough"},
		{Username: "a", Email: "", Password: "long-enough"},
		{Username: "a", Email: "a@b.com", Password: "short"},
	}
	for _, req := range cases {
		if _, err := svc.Register(ctx, req); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("req %+v: expected validation error, got %v", req, err)
		}
	}
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "long-enough"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@b.com", Password: "long-enough"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "long-enough"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, RegisterRequest{Username: "bob", Email: "A@B.com", Password: "long-enough"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestProfileReturnsAuthenticatedUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.Profile(ctx, dto.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Username != "alice" || profile.Email != "a@b.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestProfileUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	if _, err := svc.Profile(context.Background(), uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Profile(context.Background(), uuid.Nil); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for nil id, got %v", err)
	}
}

func TestLoginRejectsBadPasswordAndUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"}); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Username: "nobody", Password: "whatever"}); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	jwtCfg, passwordCfg := testConfigs()
	svc, err := NewService(users.NewRepository(db), jwtCfg, passwordCfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}
