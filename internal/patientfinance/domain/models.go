// Package domain contains persistence models for the per-patient ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// EntryType distinguishes money owed from money received.
type EntryType string

const (
	// EntryTypeCharge is an obligation to pay, carrying a due date and status.
	EntryTypeCharge EntryType = "charge"
	// EntryTypePayment is an immutable fact of money received. Payments never
	// transition state.
	EntryTypePayment EntryType = "payment"
)

// ChargeStatus is only meaningful for EntryTypeCharge rows.
type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "pending"
	ChargeStatusPaid    ChargeStatus = "paid"
	ChargeStatusOverdue ChargeStatus = "overdue"
)

// PatientLedgerEntry records a charge owed by or a payment received from a patient.
type PatientLedgerEntry struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ClinicID      snowflake.ID `gorm:"not null;index" json:"clinic_id"`
	PatientID     snowflake.ID `gorm:"not null;index" json:"patient_id"`
	Type          EntryType    `gorm:"type:text;not null" json:"type"`
	Description   string       `gorm:"not null" json:"description"`
	AmountInCents int64        `gorm:"not null" json:"amount_in_cents"`
	// DueDate is date-only and set for charges.
	DueDate *time.Time   `json:"due_date,omitempty"`
	Status  ChargeStatus `gorm:"type:text" json:"status,omitempty"`
	// RelatedClinicFinanceID points at the clinic ledger entry that settled the
	// charge, or that originated the payment for credit/advance entries.
	RelatedClinicFinanceID *snowflake.ID `gorm:"index" json:"related_clinic_finance_id,omitempty"`
	CreatedAt              time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PatientLedgerEntry) TableName() string { return "patient_ledger_entries" }

// Unpaid reports whether the entry is a charge still awaiting settlement.
func (e *PatientLedgerEntry) Unpaid() bool {
	return e.Type == EntryTypeCharge &&
		(e.Status == ChargeStatusPending || e.Status == ChargeStatusOverdue)
}
