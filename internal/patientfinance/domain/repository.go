package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *PatientLedgerEntry) error
	Update(ctx context.Context, db *gorm.DB, entry *PatientLedgerEntry) error
	Delete(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*PatientLedgerEntry, error)
	ListByPatient(ctx context.Context, db *gorm.DB, clinicID, patientID snowflake.ID) ([]*PatientLedgerEntry, error)

	// ListLinkable returns the patient's charges still open for settlement.
	ListLinkable(ctx context.Context, db *gorm.DB, clinicID, patientID snowflake.ID) ([]*PatientLedgerEntry, error)
	// FindCharges loads specific charge rows by id, clinic-scoped.
	FindCharges(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, ids []snowflake.ID) ([]*PatientLedgerEntry, error)
	// FindPaymentByRelated locates the payment row originated by a clinic
	// credit/advance entry.
	FindPaymentByRelated(ctx context.Context, db *gorm.DB, clinicID, clinicFinanceID snowflake.ID) (*PatientLedgerEntry, error)
	// DeletePaymentByRelated removes that payment row, if present.
	DeletePaymentByRelated(ctx context.Context, db *gorm.DB, clinicID, clinicFinanceID snowflake.ID) error

	// DistinctPatientsWithDueCharges lists patients holding pending charges past due.
	DistinctPatientsWithDueCharges(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, before time.Time) ([]snowflake.ID, error)
	// PromoteOverdue flips pending charges past due to overdue and returns the row count.
	PromoteOverdue(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, before time.Time) (int64, error)
}
