package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, subscription *domain.ClinicSubscription) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "clinic_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider",
				"provider_customer_id",
				"provider_subscription_id",
				"status",
				"current_period_end",
				"updated_at",
			}),
		}).
		Create(subscription).Error
}

func (r *repo) FindByClinic(ctx context.Context, db *gorm.DB, clinicID snowflake.ID) (*domain.ClinicSubscription, error) {
	var subscription domain.ClinicSubscription
	err := db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		First(&subscription).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}
