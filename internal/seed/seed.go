// Package seed bootstraps the default clinic and admin login so a fresh
// install is usable without manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/odontocare/odontocare/internal/auth/domain"
	authservice "github.com/odontocare/odontocare/internal/auth/service"
	clinicdomain "github.com/odontocare/odontocare/internal/clinic/domain"
	pkgdb "github.com/odontocare/odontocare/pkg/db"
	"gorm.io/gorm"
)

const (
	defaultClinicName    = "Clínica Principal"
	defaultAdminEmail    = "admin@odontocare.local"
	defaultAdminPassword = "admin"
	defaultAdminName     = "Administrador"
)

// EnsureDefaultClinicAndAdmin seeds the default clinic and admin user. When
// clinicID is nonzero the clinic keeps that id so existing data stays attached.
func EnsureDefaultClinicAndAdmin(db *gorm.DB, clinicID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clinic, err := ensureClinicTx(ctx, tx, node, clinicID)
		if err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, clinic.ID)
	})
}

func ensureClinicTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clinicID int64) (clinicdomain.Clinic, error) {
	var clinic clinicdomain.Clinic

	query := tx.WithContext(ctx)
	if clinicID != 0 {
		query = query.Where("id = ?", clinicID)
	} else {
		query = query.Where("name = ?", defaultClinicName)
	}

	err := query.First(&clinic).Error
	if err == nil {
		return clinic, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return clinic, err
	}

	id := node.Generate()
	if clinicID != 0 {
		id = snowflake.ID(clinicID)
	}
	now := time.Now().UTC()
	clinic = clinicdomain.Clinic{
		ID:        id,
		Name:      defaultClinicName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&clinic).Error; err != nil {
		return clinic, err
	}
	return clinic, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clinicID snowflake.ID) error {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", defaultAdminEmail).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := authservice.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user = authdomain.User{
		ID:           node.Generate(),
		ClinicID:     clinicID,
		Name:         defaultAdminName,
		Email:        defaultAdminEmail,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		// Another replica seeding concurrently already inserted the admin.
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil
		}
		return err
	}
	return nil
}
