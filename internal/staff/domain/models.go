// Package domain contains persistence models for clinic staff.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Role string

const (
	RoleDentist      Role = "dentist"
	RoleAssistant    Role = "assistant"
	RoleReceptionist Role = "receptionist"
	RoleAdmin        Role = "admin"
)

// StaffMember is a clinic employee: dentists carry their CRO registry number.
type StaffMember struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClinicID snowflake.ID `gorm:"not null;index" json:"clinic_id"`
	Name     string       `gorm:"not null" json:"name"`
	Role     Role         `gorm:"type:text;not null" json:"role"`
	CRO      string       `gorm:"column:cro" json:"cro,omitempty"`
	Phone    string       `json:"phone,omitempty"`
	Email    string       `json:"email,omitempty"`
	Active   bool         `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (StaffMember) TableName() string { return "staff" }

type UpsertStaffRequest struct {
	ID    string
	Name  string
	Role  Role
	CRO   string
	Phone string
	Email string
}

type Service interface {
	Upsert(ctx context.Context, req UpsertStaffRequest) (StaffMember, error)
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (StaffMember, error)
	List(ctx context.Context, onlyActive bool) ([]StaffMember, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *StaffMember) error
	Update(ctx context.Context, db *gorm.DB, member *StaffMember) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*StaffMember, error)
	List(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, onlyActive bool) ([]*StaffMember, error)
}

var (
	ErrInvalidClinic = errors.New("não autorizado")
	ErrInvalidID     = errors.New("identificador inválido")
	ErrInvalidName   = errors.New("nome do funcionário é obrigatório")
	ErrInvalidRole   = errors.New("função inválida")
	ErrCRORequired   = errors.New("CRO é obrigatório para dentistas")
	ErrNotFound      = errors.New("funcionário não encontrado")
)

// IsValidationError reports whether err is one of this package's validation errors.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrCRORequired):
		return true
	}
	return false
}
