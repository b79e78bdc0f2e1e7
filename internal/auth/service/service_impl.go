package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/odontocare/odontocare/internal/auth/domain"
	"github.com/odontocare/odontocare/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionTTL = 12 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Session{}, err
	}
	if user == nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ClinicID:  user.ClinicID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return domain.Session{}, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return session, nil
}

func (s *Service) Authenticate(ctx context.Context, sessionID string) (domain.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Session{}, domain.ErrInvalidSession
	}

	session, err := s.repo.FindSession(ctx, s.db, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, domain.ErrInvalidSession
	}
	if s.clock.Now().After(session.ExpiresAt) {
		_ = s.repo.DeleteSession(ctx, s.db, sessionID)
		return domain.Session{}, domain.ErrSessionExpired
	}
	return *session, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, s.db, sessionID)
}

// HashPassword is used by seeding and user management.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
