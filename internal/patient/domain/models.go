// Package domain contains persistence models for patient records and charting.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// FinancialStatus is derived from the patient ledger and never set directly
// by user action.
type FinancialStatus string

const (
	// Adimplente: in good standing.
	Adimplente FinancialStatus = "adimplente"
	// Inadimplente: delinquent.
	Inadimplente FinancialStatus = "inadimplente"
)

// Patient is a per-clinic patient record.
type Patient struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	ClinicID        snowflake.ID    `gorm:"not null;index" json:"clinic_id"`
	Name            string          `gorm:"not null" json:"name"`
	Phone           string          `json:"phone,omitempty"`
	Email           string          `json:"email,omitempty"`
	BirthDate       *time.Time      `json:"birth_date,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	FinancialStatus FinancialStatus `gorm:"type:text;not null;default:adimplente" json:"financial_status"`
	// Anamnesis stores the intake questionnaire answers keyed by question id.
	Anamnesis datatypes.JSONMap `gorm:"type:jsonb" json:"anamnesis,omitempty"`
	// Odontogram stores per-tooth chart state keyed by FDI tooth number.
	Odontogram datatypes.JSONMap `gorm:"type:jsonb" json:"odontogram,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Patient) TableName() string { return "patients" }

// ToothRecord is one odontogram annotation for a single tooth face.
type ToothRecord struct {
	Condition string `json:"condition"`
	Face      string `json:"face,omitempty"`
	Note      string `json:"note,omitempty"`
}
