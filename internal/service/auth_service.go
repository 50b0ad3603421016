package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vroomgo/internal/apperrors"
	"vroomgo/internal/db"
	"vroomgo/internal/entities"
	"vroomgo/internal/repository"
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
}

func NewAuthService(users repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: []byte(jwtSecret)}
}

func (s *AuthService) Register(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || email == "" {
		return nil, apperrors.Validation("name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if existing != nil {
		return nil, apperrors.Validation("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Validation("could not hash password")
	}

	now := time.Now().UTC()
	user := &db.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Store(err)
	}

	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if user == nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	return s.authResponse(user)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]entities.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	responses := make([]entities.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toUserResponse(u))
	}
	return responses, nil
}

func (s *AuthService) authResponse(user *db.User) (*entities.AuthResponse, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.Unauthorized("could not sign token")
	}
	return &entities.AuthResponse{Token: signed, User: toUserResponse(*user)}, nil
}

func toUserResponse(u db.User) entities.UserResponse {
	return entities.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
