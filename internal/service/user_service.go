package service

import (
	"context"
	"errors"
	"os"

	"autoshop/internal/model"
	"autoshop/internal/repository"
	"autoshop/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for request validation
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=ADMIN WORKER CLIENT"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse returns a user without exposing sensitive data
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int, role string) ([]UserResponse, int64, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func mapUserToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Surname:   user.Surname,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: formatTime(user.CreatedAt),
	}
}

// Register creates a CLIENT account. Staff accounts only come from CreateUser.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	user, err := s.createUser(ctx, req.Name, req.Surname, req.Email, req.Phone, req.Password, model.RoleClient)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// CreateUser is the admin path: any role may be assigned.
func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	user, err := s.createUser(ctx, req.Name, req.Surname, req.Email, req.Phone, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	return mapUserToResponse(user), nil
}

func (s *userService) createUser(ctx context.Context, name, surname, email, phone, password, role string) (*model.User, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.BadRequest("email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("Failed to check email uniqueness", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &model.User{
		Name:     name,
		Surname:  surname,
		Email:    email,
		Phone:    phone,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to create user", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.BadRequest("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.BadRequest("invalid email or password")
	}

	return s.issueToken(user)
}

func (s *userService) issueToken(user *model.User) (*TokenResponse, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
	})

	// Same fallback strategy as the middleware
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, apperror.Internal("failed to generate token", err)
	}

	return &TokenResponse{Token: tokenString, User: *mapUserToResponse(user)}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.NotFound("user not found")
	}
	return mapUserToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int, role string) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit, role)
	if err != nil {
		return nil, 0, apperror.Internal("Failed to list users", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserToResponse(&users[i]))
	}
	return responses, total, nil
}
