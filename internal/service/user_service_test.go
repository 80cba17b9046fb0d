package service

import (
	"context"
	"testing"

	"autoshop/internal/middleware"
	"autoshop/internal/model"
	"autoshop/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

func TestUserService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.userRepo)

	registered, err := svc.Register(ctx, RegisterRequest{
		Name:     "Ivan",
		Surname:  "Petrov",
		Email:    "ivan@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.User.Role != model.RoleClient {
		t.Errorf("role = %q, self-registration must yield CLIENT", registered.User.Role)
	}

	// The issued token must verify against the middleware secret and carry
	// the sub/role claims the auth layer reads.
	token, err := jwt.Parse(registered.Token, func(*jwt.Token) (interface{}, error) {
		return middleware.GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["role"] != model.RoleClient || claims["sub"] != registered.User.ID.String() {
		t.Errorf("claims = %v", claims)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Name: "Twin", Email: "ivan@example.com", Password: "secret123"})
		if apperror.KindOf(err) != apperror.KindBadRequest {
			t.Errorf("err = %v, want bad request", err)
		}
	})

	t.Run("login with right password", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginRequest{Email: "ivan@example.com", Password: "secret123"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if res.User.Email != "ivan@example.com" {
			t.Errorf("user = %+v", res.User)
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		if _, err := svc.Login(ctx, LoginRequest{Email: "ivan@example.com", Password: "wrong"}); err == nil {
			t.Error("wrong password accepted")
		}
	})
}

func TestUserService_AdminCreateAssignsRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.userRepo)

	worker, err := svc.CreateUser(ctx, CreateUserRequest{
		Name:     "Workshop",
		Email:    "worker@example.com",
		Password: "secret123",
		Role:     model.RoleWorker,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if worker.Role != model.RoleWorker {
		t.Errorf("role = %q, want WORKER", worker.Role)
	}
}
