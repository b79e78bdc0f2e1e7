package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/appointment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, appointment *domain.Appointment) error {
	return db.WithContext(ctx).Create(appointment).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, appointment *domain.Appointment) error {
	return db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("clinic_id = ? AND id = ?", appointment.ClinicID, appointment.ID).
		Updates(map[string]any{
			"starts_at":  appointment.StartsAt,
			"ends_at":    appointment.EndsAt,
			"status":     appointment.Status,
			"procedure":  appointment.Procedure,
			"notes":      appointment.Notes,
			"updated_at": appointment.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*domain.Appointment, error) {
	var appointment domain.Appointment
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		First(&appointment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *repo) ListDay(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, dayStart, dayEnd time.Time, staffID snowflake.ID) ([]*domain.Appointment, error) {
	stmt := db.WithContext(ctx).
		Where("clinic_id = ? AND starts_at >= ? AND starts_at < ?", clinicID, dayStart, dayEnd)
	if staffID != 0 {
		stmt = stmt.Where("staff_id = ?", staffID)
	}
	var appointments []*domain.Appointment
	err := stmt.Order("starts_at asc").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *repo) HasOverlap(ctx context.Context, db *gorm.DB, clinicID, staffID snowflake.ID, startsAt, endsAt time.Time, excludeID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("clinic_id = ? AND staff_id = ?", clinicID, staffID).
		Where("status IN ?", []domain.Status{domain.StatusScheduled, domain.StatusConfirmed}).
		Where("starts_at < ? AND ends_at > ?", endsAt, startsAt).
		Where("id <> ?", excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
