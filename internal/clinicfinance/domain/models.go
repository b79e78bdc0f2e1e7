// Package domain contains the clinic-wide ledger model and its state machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Operation separates money coming into the clinic from money going out.
type Operation string

const (
	OperationInput  Operation = "input"
	OperationOutput Operation = "output"
)

// Status is the lifecycle state of a clinic ledger entry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusRefunded Status = "refunded"
)

// Input types with dedicated handling. The full catalogs live in finance config.
const (
	// TypeInputTreatment settles specific patient charges and requires the
	// patient plus the linked charge ids.
	TypeInputTreatment = "Pagamento Tratamento"
	// TypeInputPatientCredit is money received in advance; when paid it mirrors
	// a payment row into the patient ledger.
	TypeInputPatientCredit = "Crédito/Adiantamento Paciente"
)

// TypeOutputEmployee requires the employee reference.
const TypeOutputEmployee = "Pagamento Funcionário"

// ClinicLedgerEntry records clinic-wide income or expense.
//
// Invariants:
//   - status=paid ⇒ payment_date and payment_method set
//   - operation=input ⇒ type_output null, employee_id null
//   - operation=output ⇒ type_input null, patient_id null, linked charges null
type ClinicLedgerEntry struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ClinicID  snowflake.ID `gorm:"not null;index" json:"clinic_id"`
	Operation Operation    `gorm:"type:text;not null" json:"operation"`
	// TypeInput and TypeOutput are mutually exclusive by operation.
	TypeInput     *string `gorm:"type:text" json:"type_input,omitempty"`
	TypeOutput    *string `gorm:"type:text" json:"type_output,omitempty"`
	Description   string  `gorm:"not null" json:"description"`
	AmountInCents int64   `gorm:"not null" json:"amount_in_cents"`
	// PaymentDate carries full timestamp precision; DueDate is date-only.
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Status        Status     `gorm:"type:text;not null;default:pending" json:"status"`
	PaymentMethod *string    `gorm:"type:text" json:"payment_method,omitempty"`

	PatientID  *snowflake.ID `gorm:"index" json:"patient_id,omitempty"`
	EmployeeID *snowflake.ID `gorm:"index" json:"employee_id,omitempty"`
	// LinkedPatientChargeIDs references the patient charges this input settles.
	LinkedPatientChargeIDs datatypes.JSONSlice[int64] `gorm:"type:jsonb" json:"linked_patient_charge_ids,omitempty"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ClinicLedgerEntry) TableName() string { return "clinic_ledger_entries" }

// IsPatientCredit reports whether the entry is a patient credit/advance input.
func (e *ClinicLedgerEntry) IsPatientCredit() bool {
	return e.Operation == OperationInput &&
		e.TypeInput != nil && *e.TypeInput == TypeInputPatientCredit
}

// SettlesCharges reports whether a paid entry should settle linked patient charges.
func (e *ClinicLedgerEntry) SettlesCharges() bool {
	return e.Operation == OperationInput &&
		e.Status == StatusPaid &&
		len(e.LinkedPatientChargeIDs) > 0
}
