package migration

import (
	appointmentdomain "github.com/odontocare/odontocare/internal/appointment/domain"
	authdomain "github.com/odontocare/odontocare/internal/auth/domain"
	clinicdomain "github.com/odontocare/odontocare/internal/clinic/domain"
	clinicfinancedomain "github.com/odontocare/odontocare/internal/clinicfinance/domain"
	"github.com/odontocare/odontocare/internal/config"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	patientfinancedomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
	"github.com/odontocare/odontocare/internal/seed"
	staffdomain "github.com/odontocare/odontocare/internal/staff/domain"
	subscriptiondomain "github.com/odontocare/odontocare/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are development conveniences; AutoMigrate
			// keeps them in sync without dialect-specific SQL.
			if err := conn.AutoMigrate(
				&clinicdomain.Clinic{},
				&authdomain.User{},
				&authdomain.Session{},
				&patientdomain.Patient{},
				&staffdomain.StaffMember{},
				&appointmentdomain.Appointment{},
				&patientfinancedomain.PatientLedgerEntry{},
				&clinicfinancedomain.ClinicLedgerEntry{},
				&subscriptiondomain.ClinicSubscription{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultClinicAndAdmin(conn, cfg.DefaultClinicID)
	}),
)
