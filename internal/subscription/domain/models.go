// Package domain contains the clinic's subscription with the external billing provider.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Status mirrors the lifecycle reported by the third-party subscription provider.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// ClinicSubscription links a clinic to its record at the billing provider. The
// provider charges the clinic; this service only reads the resulting state.
type ClinicSubscription struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClinicID snowflake.ID `gorm:"not null;uniqueIndex" json:"clinic_id"`
	Provider string       `gorm:"not null" json:"provider"`

	ProviderCustomerID     string `gorm:"not null" json:"provider_customer_id"`
	ProviderSubscriptionID string `json:"provider_subscription_id,omitempty"`

	Status           Status     `gorm:"type:text;not null" json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ClinicSubscription) TableName() string { return "clinic_subscriptions" }

// Blocked reports whether the subscription state should block mutations.
func (s *ClinicSubscription) Blocked() bool {
	return s.Status == StatusCanceled
}

type SyncRequest struct {
	Provider               string
	ProviderCustomerID     string
	ProviderSubscriptionID string
	Status                 Status
	CurrentPeriodEnd       *time.Time
}

type Service interface {
	Get(ctx context.Context) (ClinicSubscription, error)
	// Sync upserts the provider-reported state for the clinic. Webhook plumbing
	// is out of scope; an admin or a backoffice job calls this.
	Sync(ctx context.Context, req SyncRequest) (ClinicSubscription, error)
}

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, subscription *ClinicSubscription) error
	FindByClinic(ctx context.Context, db *gorm.DB, clinicID snowflake.ID) (*ClinicSubscription, error)
}

var (
	ErrInvalidClinic   = errors.New("não autorizado")
	ErrInvalidStatus   = errors.New("situação de assinatura inválida")
	ErrInvalidProvider = errors.New("provedor de assinatura inválido")
	ErrNotFound        = errors.New("assinatura não encontrada")
	// ErrSubscriptionBlocked maps to HTTP 402.
	ErrSubscriptionBlocked = errors.New("assinatura da clínica cancelada")
)
