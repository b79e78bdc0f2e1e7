// Package domain contains login identities and sessions.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// User is a login identity bound to one clinic.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ClinicID     snowflake.ID `gorm:"not null;index" json:"clinic_id"`
	Name         string       `gorm:"not null" json:"name"`
	Email        string       `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session is an opaque-token server-side session.
type Session struct {
	ID        string       `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	ClinicID  snowflake.ID `gorm:"not null" json:"clinic_id"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

type LoginRequest struct {
	Email    string
	Password string
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (Session, error)
	Authenticate(ctx context.Context, sessionID string) (Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type Repository interface {
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSession(ctx context.Context, db *gorm.DB, id string) (*Session, error)
	DeleteSession(ctx context.Context, db *gorm.DB, id string) error
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
)
