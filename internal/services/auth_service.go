package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"nebula-chat/config"
	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/repository"
	nebula_errors "nebula-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	IsAI   bool   `json:"isAI"`
	Status string `json:"status"`
}

// AccessClaims is the single authenticated-principal shape: every route
// reads the user id from here and nowhere else.
type AccessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, strings.ToLower(in.Email)); err == nil {
		return AuthResponse{}, nebula_errors.ErrAlreadyExists
	} else if !errors.Is(err, nebula_errors.ErrNotFound) {
		return AuthResponse{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	u := user.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		Status:       "offline",
		LastActive:   time.Now(),
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, &u); err != nil {
		return AuthResponse{}, err
	}

	return s.issueToken(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Email == "" || in.Password == "" {
		return AuthResponse{}, nebula_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(in.Email))
	if err != nil {
		if errors.Is(err, nebula_errors.ErrNotFound) {
			return AuthResponse{}, nebula_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}
	if err := comparePassword(u.PasswordHash, in.Password); err != nil {
		return AuthResponse{}, nebula_errors.ErrUnauthorized
	}

	return s.issueToken(u)
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, nebula_errors.ErrUnauthorized
	}

	claims := AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, nebula_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return AccessClaims{}, nebula_errors.ErrUnauthorized
	}
	if claims.UserID == "" {
		return AccessClaims{}, nebula_errors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issueToken(u user.User) (AuthResponse, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: u.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User:        toUserInfo(u),
	}, nil
}

// HTTPStatus maps service errors to response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, nebula_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, nebula_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, nebula_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, nebula_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, nebula_errors.ErrAlreadyExists), errors.Is(err, nebula_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, nebula_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type ctxKey string

const userIDKey ctxKey = "auth_user_id"

func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nebula_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return nebula_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func toUserInfo(u user.User) UserInfo {
	return UserInfo{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		IsAI:   u.IsAI,
		Status: u.Status,
	}
}
