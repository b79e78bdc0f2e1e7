package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/clinicfinance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ClinicLedgerEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.ClinicLedgerEntry) error {
	return db.WithContext(ctx).
		Model(&domain.ClinicLedgerEntry{}).
		Where("clinic_id = ? AND id = ?", entry.ClinicID, entry.ID).
		Updates(map[string]any{
			"operation":                 entry.Operation,
			"type_input":                entry.TypeInput,
			"type_output":               entry.TypeOutput,
			"description":               entry.Description,
			"amount_in_cents":           entry.AmountInCents,
			"payment_date":              entry.PaymentDate,
			"due_date":                  entry.DueDate,
			"status":                    entry.Status,
			"payment_method":            entry.PaymentMethod,
			"patient_id":                entry.PatientID,
			"employee_id":               entry.EmployeeID,
			"linked_patient_charge_ids": entry.LinkedPatientChargeIDs,
			"updated_at":                entry.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&domain.ClinicLedgerEntry{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*domain.ClinicLedgerEntry, error) {
	var entry domain.ClinicLedgerEntry
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, filter domain.ListFilter) ([]*domain.TransactionView, error) {
	stmt := db.WithContext(ctx).
		Table("clinic_ledger_entries AS e").
		Select(`e.*,
			patients.name AS patient_name,
			staff.name AS employee_name,
			users.name AS created_by_name`).
		Joins("LEFT JOIN patients ON patients.id = e.patient_id").
		Joins("LEFT JOIN staff ON staff.id = e.employee_id").
		Joins("LEFT JOIN users ON users.id = e.created_by").
		Where("e.clinic_id = ?", clinicID)
	if filter.From != nil {
		stmt = stmt.Where("e.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("e.created_at <= ?", *filter.To)
	}
	if filter.Status != "" {
		stmt = stmt.Where("e.status = ?", filter.Status)
	}
	if filter.Operation != "" {
		stmt = stmt.Where("e.operation = ?", filter.Operation)
	}

	var views []*domain.TransactionView
	err := stmt.
		Order("e.created_at desc, e.id desc").
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *repo) Summary(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, from, to *time.Time) (domain.Summary, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.ClinicLedgerEntry{}).
		Select(`
			COALESCE(SUM(CASE WHEN operation = 'output' AND status = 'paid' THEN amount_in_cents ELSE 0 END), 0) AS spent_in_cents,
			COALESCE(SUM(CASE WHEN operation = 'input' AND status = 'paid' THEN amount_in_cents ELSE 0 END), 0) AS received_in_cents,
			COALESCE(SUM(CASE WHEN status IN ('pending', 'overdue') THEN amount_in_cents ELSE 0 END), 0) AS pending_in_cents`).
		Where("clinic_id = ?", clinicID)
	if from != nil {
		stmt = stmt.Where("created_at >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("created_at <= ?", *to)
	}

	var summary domain.Summary
	if err := stmt.Scan(&summary).Error; err != nil {
		return domain.Summary{}, err
	}
	summary.BalanceInCents = summary.ReceivedInCents - summary.SpentInCents
	return summary, nil
}

func (r *repo) PromoteOverdue(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, before time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.ClinicLedgerEntry{}).
		Where("clinic_id = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?",
			clinicID, domain.StatusPending, before).
		Updates(map[string]any{"status": domain.StatusOverdue, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}
