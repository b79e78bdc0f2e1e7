package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontocare/odontocare/internal/auth/domain"
	authrepository "github.com/odontocare/odontocare/internal/auth/repository"
	"github.com/odontocare/odontocare/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The shared in-memory database outlives a single test, so every fixture gets
// its own email address.
func setup(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock, snowflake.ID, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  authrepository.Provide(),
	})

	hash, err := HashPassword("segredo123")
	require.NoError(t, err)

	clinicID := node.Generate()
	userID := node.Generate()
	email := "recepcao+" + userID.String() + "@clinica.test"
	user := domain.User{
		ID:           userID,
		ClinicID:     clinicID,
		Name:         "Recepção",
		Email:        email,
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(&user).Error)

	return svc, db, fakeClock, clinicID, email
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, _, clinicID, email := setup(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, domain.LoginRequest{
		Email:    email,
		Password: "segredo123",
	})
	require.NoError(t, err)
	assert.Equal(t, clinicID, session.ClinicID)
	assert.NotEmpty(t, session.ID)

	resolved, err := svc.Authenticate(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, resolved.UserID)
	assert.Equal(t, clinicID, resolved.ClinicID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _, _, email := setup(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    email,
		Password: "errada",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _, _, _, email := setup(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ninguem+" + email,
		Password: "segredo123",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateExpiredSessionIsDeleted(t *testing.T) {
	svc, db, fakeClock, _, email := setup(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, domain.LoginRequest{
		Email:    email,
		Password: "segredo123",
	})
	require.NoError(t, err)

	fakeClock.Advance(13 * time.Hour)

	_, err = svc.Authenticate(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	var count int64
	require.NoError(t, db.Model(&domain.Session{}).Where("id = ?", session.ID).Count(&count).Error)
	assert.Zero(t, count, "expired session must be removed")
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _, _, _, email := setup(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, domain.LoginRequest{
		Email:    email,
		Password: "segredo123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.ID))

	_, err = svc.Authenticate(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}
