package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/patient/domain"
	"github.com/odontocare/odontocare/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, patient *domain.Patient) error {
	return db.WithContext(ctx).Create(patient).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, patient *domain.Patient) error {
	return db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("clinic_id = ? AND id = ?", patient.ClinicID, patient.ID).
		Updates(map[string]any{
			"name":       patient.Name,
			"phone":      patient.Phone,
			"email":      patient.Email,
			"birth_date": patient.BirthDate,
			"notes":      patient.Notes,
			"anamnesis":  patient.Anamnesis,
			"odontogram": patient.Odontogram,
			"updated_at": patient.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*domain.Patient, error) {
	var patient domain.Patient
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		First(&patient).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, filter domain.ListPatientFilter, page pagination.Pagination) ([]*domain.Patient, error) {
	var patients []*domain.Patient
	stmt := db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("clinic_id = ?", clinicID)
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("financial_status = ?", filter.Status)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			if createdAt, tErr := time.Parse(time.RFC3339, cursor.CreatedAt); tErr == nil {
				stmt = stmt.Where("created_at < ?", createdAt)
			}
		}
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *repo) UpdateFinancialStatus(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID, status domain.FinancialStatus) error {
	return db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Updates(map[string]any{
			"financial_status": status,
			"updated_at":       time.Now().UTC(),
		}).Error
}
