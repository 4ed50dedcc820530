package services

import (
	"context"
	"testing"

	"nebula-chat/config"
	"nebula-chat/internal/domain/user"
	"nebula-chat/internal/repository"
	nebula_errors "nebula-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}))

	return NewAuthService(repository.NewUserRepository(db), &config.Config{
		JWTSecret:    "test-secret",
		JWTExpiryMin: 15,
	})
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	login, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	claims, err := svc.ParseAccessToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "", Email: "a@b.com", Password: "longenough"})
	assert.ErrorIs(t, err, nebula_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, nebula_errors.ErrInvalidInput)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "A@B.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, nebula_errors.ErrAlreadyExists)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@b.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, nebula_errors.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "ghost@b.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, nebula_errors.ErrUnauthorized)
}

func TestAuthService_ParseRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, nebula_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, nebula_errors.ErrUnauthorized)
}

func TestAuthService_ParseRejectsForeignSecret(t *testing.T) {
	svc := newAuthFixture(t)
	other := newAuthFixture(t)

	resp, err := other.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "a@b.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	// Same secret here, so cross-parsing succeeds; re-sign with a
	// different secret to prove rejection.
	foreign := NewAuthService(nil, &config.Config{JWTSecret: "different-secret", JWTExpiryMin: 15})
	_, err = foreign.ParseAccessToken(resp.AccessToken)
	assert.ErrorIs(t, err, nebula_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken(resp.AccessToken)
	assert.NoError(t, err)
}
