package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/patientfinance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.PatientLedgerEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.PatientLedgerEntry) error {
	return db.WithContext(ctx).
		Model(&domain.PatientLedgerEntry{}).
		Where("clinic_id = ? AND id = ?", entry.ClinicID, entry.ID).
		Updates(map[string]any{
			"description":               entry.Description,
			"amount_in_cents":           entry.AmountInCents,
			"due_date":                  entry.DueDate,
			"status":                    entry.Status,
			"related_clinic_finance_id": entry.RelatedClinicFinanceID,
			"updated_at":                entry.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&domain.PatientLedgerEntry{}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*domain.PatientLedgerEntry, error) {
	var entry domain.PatientLedgerEntry
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

func (r *repo) ListByPatient(ctx context.Context, db *gorm.DB, clinicID, patientID snowflake.ID) ([]*domain.PatientLedgerEntry, error) {
	var entries []*domain.PatientLedgerEntry
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND patient_id = ?", clinicID, patientID).
		Order("created_at desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) ListLinkable(ctx context.Context, db *gorm.DB, clinicID, patientID snowflake.ID) ([]*domain.PatientLedgerEntry, error) {
	var entries []*domain.PatientLedgerEntry
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND patient_id = ? AND type = ? AND status IN ?",
			clinicID, patientID, domain.EntryTypeCharge,
			[]domain.ChargeStatus{domain.ChargeStatusPending, domain.ChargeStatusOverdue}).
		Order("due_date asc, id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) FindCharges(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, ids []snowflake.ID) ([]*domain.PatientLedgerEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var entries []*domain.PatientLedgerEntry
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND type = ? AND id IN ?", clinicID, domain.EntryTypeCharge, ids).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) FindPaymentByRelated(ctx context.Context, db *gorm.DB, clinicID, clinicFinanceID snowflake.ID) (*domain.PatientLedgerEntry, error) {
	var entry domain.PatientLedgerEntry
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND type = ? AND related_clinic_finance_id = ?",
			clinicID, domain.EntryTypePayment, clinicFinanceID).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) DeletePaymentByRelated(ctx context.Context, db *gorm.DB, clinicID, clinicFinanceID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("clinic_id = ? AND type = ? AND related_clinic_finance_id = ?",
			clinicID, domain.EntryTypePayment, clinicFinanceID).
		Delete(&domain.PatientLedgerEntry{}).Error
}

func (r *repo) DistinctPatientsWithDueCharges(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, before time.Time) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.PatientLedgerEntry{}).
		Distinct("patient_id").
		Where("clinic_id = ? AND type = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?",
			clinicID, domain.EntryTypeCharge, domain.ChargeStatusPending, before).
		Pluck("patient_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) PromoteOverdue(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, before time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.PatientLedgerEntry{}).
		Where("clinic_id = ? AND type = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?",
			clinicID, domain.EntryTypeCharge, domain.ChargeStatusPending, before).
		Updates(map[string]any{"status": domain.ChargeStatusOverdue, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}
