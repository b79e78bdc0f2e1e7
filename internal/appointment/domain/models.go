// Package domain contains persistence models for appointment scheduling.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Appointment is a booked slot between a dentist and a patient.
type Appointment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ClinicID  snowflake.ID `gorm:"not null;index" json:"clinic_id"`
	PatientID snowflake.ID `gorm:"not null;index" json:"patient_id"`
	StaffID   snowflake.ID `gorm:"not null;index" json:"staff_id"`
	StartsAt  time.Time    `gorm:"not null;index" json:"starts_at"`
	EndsAt    time.Time    `gorm:"not null" json:"ends_at"`
	Status    Status       `gorm:"type:text;not null;default:scheduled" json:"status"`
	Procedure string       `json:"procedure,omitempty"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Appointment) TableName() string { return "appointments" }

type BookRequest struct {
	PatientID string
	StaffID   string
	StartsAt  time.Time
	EndsAt    time.Time
	Procedure string
	Notes     string
}

type RescheduleRequest struct {
	ID       string
	StartsAt time.Time
	EndsAt   time.Time
}

type ListDayRequest struct {
	Day     time.Time
	StaffID string
}

type Service interface {
	Book(ctx context.Context, req BookRequest) (Appointment, error)
	Reschedule(ctx context.Context, req RescheduleRequest) (Appointment, error)
	SetStatus(ctx context.Context, id string, status Status) error
	ListDay(ctx context.Context, req ListDayRequest) ([]Appointment, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, appointment *Appointment) error
	Update(ctx context.Context, db *gorm.DB, appointment *Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*Appointment, error)
	ListDay(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, dayStart, dayEnd time.Time, staffID snowflake.ID) ([]*Appointment, error)
	// HasOverlap reports whether the dentist already has a live appointment
	// intersecting [startsAt, endsAt), excluding the given appointment id.
	HasOverlap(ctx context.Context, db *gorm.DB, clinicID, staffID snowflake.ID, startsAt, endsAt time.Time, excludeID snowflake.ID) (bool, error)
}

var (
	ErrInvalidClinic  = errors.New("não autorizado")
	ErrInvalidID      = errors.New("identificador inválido")
	ErrInvalidPatient = errors.New("paciente inválido")
	ErrInvalidStaff   = errors.New("profissional inválido")
	ErrInvalidPeriod  = errors.New("horário inválido")
	ErrInvalidStatus  = errors.New("situação de agendamento inválida")
	ErrOverlap        = errors.New("o profissional já possui agendamento neste horário")
	ErrNotFound       = errors.New("agendamento não encontrado")
)

// IsValidationError reports whether err is one of this package's validation errors.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidPatient),
		errors.Is(err, ErrInvalidStaff),
		errors.Is(err, ErrInvalidPeriod),
		errors.Is(err, ErrInvalidStatus):
		return true
	}
	return false
}
