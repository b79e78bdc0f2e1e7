package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	From      *time.Time
	To        *time.Time
	Status    Status
	Operation Operation
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ClinicLedgerEntry) error
	Update(ctx context.Context, db *gorm.DB, entry *ClinicLedgerEntry) error
	Delete(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*ClinicLedgerEntry, error)
	List(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, filter ListFilter) ([]*TransactionView, error)
	Summary(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, from, to *time.Time) (Summary, error)
	// PromoteOverdue flips pending entries past due to overdue and returns the row count.
	PromoteOverdue(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, before time.Time) (int64, error)
}
