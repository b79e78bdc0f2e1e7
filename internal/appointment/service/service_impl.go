package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/appointment/domain"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/clock"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	staffdomain "github.com/odontocare/odontocare/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	PatientRepo patientdomain.Repository
	StaffRepo   staffdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	patientRepo patientdomain.Repository
	staffRepo   staffdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("appointment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		patientRepo: p.PatientRepo,
		staffRepo:   p.StaffRepo,
	}
}

func (s *Service) Book(ctx context.Context, req domain.BookRequest) (domain.Appointment, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Appointment{}, domain.ErrInvalidClinic
	}

	patientID, err := parseID(req.PatientID)
	if err != nil {
		return domain.Appointment{}, domain.ErrInvalidPatient
	}
	staffID, err := parseID(req.StaffID)
	if err != nil {
		return domain.Appointment{}, domain.ErrInvalidStaff
	}
	if !req.EndsAt.After(req.StartsAt) {
		return domain.Appointment{}, domain.ErrInvalidPeriod
	}

	now := s.clock.Now()
	appointment := domain.Appointment{
		ID:        s.genID.Generate(),
		ClinicID:  clinicID,
		PatientID: patientID,
		StaffID:   staffID,
		StartsAt:  req.StartsAt.UTC(),
		EndsAt:    req.EndsAt.UTC(),
		Status:    domain.StatusScheduled,
		Procedure: strings.TrimSpace(req.Procedure),
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		patient, err := s.patientRepo.FindByID(ctx, tx, clinicID, patientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return domain.ErrInvalidPatient
		}
		member, err := s.staffRepo.FindByID(ctx, tx, clinicID, staffID)
		if err != nil {
			return err
		}
		if member == nil || !member.Active {
			return domain.ErrInvalidStaff
		}

		overlap, err := s.repo.HasOverlap(ctx, tx, clinicID, staffID, appointment.StartsAt, appointment.EndsAt, 0)
		if err != nil {
			return err
		}
		if overlap {
			return domain.ErrOverlap
		}
		return s.repo.Insert(ctx, tx, &appointment)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return appointment, nil
}

func (s *Service) Reschedule(ctx context.Context, req domain.RescheduleRequest) (domain.Appointment, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Appointment{}, domain.ErrInvalidClinic
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return domain.Appointment{}, domain.ErrInvalidPeriod
	}

	var appointment *domain.Appointment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		appointment, err = s.repo.FindByID(ctx, tx, clinicID, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return domain.ErrNotFound
		}
		if appointment.Status != domain.StatusScheduled && appointment.Status != domain.StatusConfirmed {
			return domain.ErrInvalidStatus
		}

		overlap, err := s.repo.HasOverlap(ctx, tx, clinicID, appointment.StaffID, req.StartsAt.UTC(), req.EndsAt.UTC(), id)
		if err != nil {
			return err
		}
		if overlap {
			return domain.ErrOverlap
		}

		appointment.StartsAt = req.StartsAt.UTC()
		appointment.EndsAt = req.EndsAt.UTC()
		appointment.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, appointment)
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return *appointment, nil
}

func (s *Service) SetStatus(ctx context.Context, rawID string, status domain.Status) error {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ErrInvalidClinic
	}

	switch status {
	case domain.StatusConfirmed, domain.StatusCompleted, domain.StatusCancelled, domain.StatusNoShow:
	default:
		return domain.ErrInvalidStatus
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	appointment, err := s.repo.FindByID(ctx, s.db, clinicID, id)
	if err != nil {
		return err
	}
	if appointment == nil {
		return domain.ErrNotFound
	}

	appointment.Status = status
	appointment.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, s.db, appointment)
}

func (s *Service) ListDay(ctx context.Context, req domain.ListDayRequest) ([]domain.Appointment, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return nil, domain.ErrInvalidClinic
	}

	var staffID snowflake.ID
	if req.StaffID != "" {
		parsed, err := parseID(req.StaffID)
		if err != nil {
			return nil, domain.ErrInvalidStaff
		}
		staffID = parsed
	}

	day := req.Day.UTC()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	items, err := s.repo.ListDay(ctx, s.db, clinicID, dayStart, dayEnd, staffID)
	if err != nil {
		return nil, err
	}

	appointments := make([]domain.Appointment, 0, len(items))
	for _, item := range items {
		appointments = append(appointments, *item)
	}
	return appointments, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
