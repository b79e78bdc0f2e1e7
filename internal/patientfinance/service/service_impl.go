package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/clock"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	"github.com/odontocare/odontocare/internal/patientfinance/domain"
	"github.com/odontocare/odontocare/internal/patientstatus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	PatientRepo  patientdomain.Repository
	Recalculator *patientstatus.Recalculator
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	patientRepo  patientdomain.Repository
	recalculator *patientstatus.Recalculator
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("patientfinance.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		patientRepo:  p.PatientRepo,
		recalculator: p.Recalculator,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertEntryRequest) (domain.PatientLedgerEntry, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.PatientLedgerEntry{}, domain.ErrInvalidClinic
	}

	patientID, err := domain.ParseID(req.PatientID)
	if err != nil {
		return domain.PatientLedgerEntry{}, domain.ErrInvalidPatient
	}

	entry, err := s.buildEntry(clinicID, patientID, req)
	if err != nil {
		return domain.PatientLedgerEntry{}, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		patient, err := s.patientRepo.FindByID(ctx, tx, clinicID, patientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return patientdomain.ErrNotFound
		}

		if req.ID == "" {
			if err := s.repo.Insert(ctx, tx, &entry); err != nil {
				return err
			}
		} else {
			current, err := s.repo.FindByID(ctx, tx, clinicID, entry.ID)
			if err != nil {
				return err
			}
			if current == nil || current.PatientID != patientID {
				return domain.ErrNotFound
			}
			if current.Type != entry.Type {
				return domain.ErrInvalidType
			}
			if current.Type == domain.EntryTypePayment && req.Status != "" {
				return domain.ErrPaymentImmutable
			}
			entry.CreatedAt = current.CreatedAt
			entry.RelatedClinicFinanceID = current.RelatedClinicFinanceID
			if err := s.repo.Update(ctx, tx, &entry); err != nil {
				return err
			}
		}

		_, err = s.recalculator.Recalculate(ctx, tx, clinicID, patientID)
		return err
	})
	if err != nil {
		return domain.PatientLedgerEntry{}, err
	}

	s.recalculator.InvalidateViews(ctx, clinicID, patientID)
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteEntryRequest) error {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ErrInvalidClinic
	}

	id, err := domain.ParseID(req.ID)
	if err != nil {
		return err
	}
	patientID, err := domain.ParseID(req.PatientID)
	if err != nil {
		return domain.ErrInvalidPatient
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.FindByID(ctx, tx, clinicID, id)
		if err != nil {
			return err
		}
		if entry == nil || entry.PatientID != patientID {
			return domain.ErrNotFound
		}
		if err := s.repo.Delete(ctx, tx, clinicID, id); err != nil {
			return err
		}
		_, err = s.recalculator.Recalculate(ctx, tx, clinicID, patientID)
		return err
	})
	if err != nil {
		return err
	}

	s.recalculator.InvalidateViews(ctx, clinicID, patientID)
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListEntriesRequest) ([]domain.PatientLedgerEntry, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return nil, domain.ErrInvalidClinic
	}

	patientID, err := domain.ParseID(req.PatientID)
	if err != nil {
		return nil, domain.ErrInvalidPatient
	}

	items, err := s.repo.ListByPatient(ctx, s.db, clinicID, patientID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.PatientLedgerEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, *item)
	}
	return entries, nil
}

func (s *Service) buildEntry(clinicID, patientID snowflake.ID, req domain.UpsertEntryRequest) (domain.PatientLedgerEntry, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.PatientLedgerEntry{}, domain.ErrInvalidDescription
	}
	if req.AmountInCents < 1 {
		return domain.PatientLedgerEntry{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now().UTC()
	entry := domain.PatientLedgerEntry{
		ClinicID:      clinicID,
		PatientID:     patientID,
		Type:          req.Type,
		Description:   description,
		AmountInCents: req.AmountInCents,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.ID != "" {
		id, err := domain.ParseID(req.ID)
		if err != nil {
			return domain.PatientLedgerEntry{}, err
		}
		entry.ID = id
	} else {
		entry.ID = s.genID.Generate()
	}

	switch req.Type {
	case domain.EntryTypeCharge:
		if req.DueDate != nil {
			// The sweeper compares due dates at day granularity.
			due := dateOnly(*req.DueDate)
			entry.DueDate = &due
		}
		entry.Status = req.Status
		if entry.Status == "" {
			entry.Status = domain.ChargeStatusPending
		}
		switch entry.Status {
		case domain.ChargeStatusPending, domain.ChargeStatusPaid, domain.ChargeStatusOverdue:
		default:
			return domain.PatientLedgerEntry{}, domain.ErrInvalidStatus
		}
	case domain.EntryTypePayment:
		// Payments carry no due-date-driven status.
		entry.DueDate = nil
		entry.Status = ""
	default:
		return domain.PatientLedgerEntry{}, domain.ErrInvalidType
	}

	return entry, nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
