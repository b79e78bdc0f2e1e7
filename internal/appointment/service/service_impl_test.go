package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontocare/odontocare/internal/appointment/domain"
	apptrepository "github.com/odontocare/odontocare/internal/appointment/repository"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/clock"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	patientrepository "github.com/odontocare/odontocare/internal/patient/repository"
	staffdomain "github.com/odontocare/odontocare/internal/staff/domain"
	staffrepository "github.com/odontocare/odontocare/internal/staff/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	node      *snowflake.Node
	clinicID  snowflake.ID
	patientID snowflake.ID
	staffID   snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&patientdomain.Patient{},
		&staffdomain.StaffMember{},
		&domain.Appointment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)),
		Repo:        apptrepository.Provide(),
		PatientRepo: patientrepository.Provide(),
		StaffRepo:   staffrepository.Provide(),
	})

	f := &fixture{
		svc:      svc,
		db:       db,
		node:     node,
		clinicID: node.Generate(),
	}

	patient := patientdomain.Patient{
		ID:              node.Generate(),
		ClinicID:        f.clinicID,
		Name:            "Ana Lima",
		FinancialStatus: patientdomain.Adimplente,
	}
	require.NoError(t, db.Create(&patient).Error)
	f.patientID = patient.ID

	dentist := staffdomain.StaffMember{
		ID:       node.Generate(),
		ClinicID: f.clinicID,
		Name:     "Dr. Carlos",
		Role:     staffdomain.RoleDentist,
		CRO:      "SP-12345",
		Active:   true,
	}
	require.NoError(t, db.Create(&dentist).Error)
	f.staffID = dentist.ID

	return f
}

func (f *fixture) ctx() context.Context {
	ctx := clinicctx.WithClinicID(context.Background(), f.clinicID)
	return clinicctx.WithUserID(ctx, f.node.Generate())
}

func TestBookRejectsOverlappingSlot(t *testing.T) {
	f := setup(t)

	start := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)
	_, err := f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start,
		EndsAt:    start.Add(time.Hour),
		Procedure: "Limpeza",
	})
	require.NoError(t, err)

	// Partially intersecting slot for the same dentist.
	_, err = f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start.Add(30 * time.Minute),
		EndsAt:    start.Add(90 * time.Minute),
		Procedure: "Restauração",
	})
	assert.ErrorIs(t, err, domain.ErrOverlap)
}

func TestBookAllowsAdjacentSlots(t *testing.T) {
	f := setup(t)

	start := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	_, err := f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start,
		EndsAt:    start.Add(time.Hour),
	})
	require.NoError(t, err)

	// Back to back is fine: [9,10) then [10,11).
	_, err = f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start.Add(time.Hour),
		EndsAt:    start.Add(2 * time.Hour),
	})
	assert.NoError(t, err)
}

func TestBookIgnoresCancelledAppointments(t *testing.T) {
	f := setup(t)

	start := time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)
	booked, err := f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start,
		EndsAt:    start.Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetStatus(f.ctx(), booked.ID.String(), domain.StatusCancelled))

	_, err = f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start,
		EndsAt:    start.Add(time.Hour),
	})
	assert.NoError(t, err)
}

func TestBookRejectsInvalidPeriod(t *testing.T) {
	f := setup(t)

	start := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	_, err := f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start,
		EndsAt:    start,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestRescheduleChecksOverlapExcludingSelf(t *testing.T) {
	f := setup(t)

	start := time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)
	booked, err := f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start,
		EndsAt:    start.Add(time.Hour),
	})
	require.NoError(t, err)

	// Shifting inside its own window is allowed.
	moved, err := f.svc.Reschedule(f.ctx(), domain.RescheduleRequest{
		ID:       booked.ID.String(),
		StartsAt: start.Add(15 * time.Minute),
		EndsAt:   start.Add(75 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, start.Add(15*time.Minute), moved.StartsAt)

	other, err := f.svc.Book(f.ctx(), domain.BookRequest{
		PatientID: f.patientID.String(),
		StaffID:   f.staffID.String(),
		StartsAt:  start.Add(2 * time.Hour),
		EndsAt:    start.Add(3 * time.Hour),
	})
	require.NoError(t, err)

	_, err = f.svc.Reschedule(f.ctx(), domain.RescheduleRequest{
		ID:       other.ID.String(),
		StartsAt: start.Add(30 * time.Minute),
		EndsAt:   start.Add(90 * time.Minute),
	})
	assert.ErrorIs(t, err, domain.ErrOverlap)
}
