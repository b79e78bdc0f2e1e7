package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/staff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.StaffMember) error {
	return db.WithContext(ctx).Create(member).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, member *domain.StaffMember) error {
	return db.WithContext(ctx).
		Model(&domain.StaffMember{}).
		Where("clinic_id = ? AND id = ?", member.ClinicID, member.ID).
		Updates(map[string]any{
			"name":       member.Name,
			"role":       member.Role,
			"cro":        member.CRO,
			"phone":      member.Phone,
			"email":      member.Email,
			"active":     member.Active,
			"updated_at": member.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, clinicID, id snowflake.ID) (*domain.StaffMember, error) {
	var member domain.StaffMember
	err := db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, onlyActive bool) ([]*domain.StaffMember, error) {
	stmt := db.WithContext(ctx).
		Where("clinic_id = ?", clinicID)
	if onlyActive {
		stmt = stmt.Where("active = ?", true)
	}
	var members []*domain.StaffMember
	err := stmt.Order("name asc").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
