package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/clinicfinance/domain"
	"github.com/odontocare/odontocare/internal/clock"
	"github.com/odontocare/odontocare/internal/config"
	"github.com/odontocare/odontocare/internal/observability/metrics"
	pfdomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
	"github.com/odontocare/odontocare/internal/patientstatus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Rules        *config.FinanceConfigHolder
	Repo         domain.Repository
	LedgerRepo   pfdomain.Repository
	Recalculator *patientstatus.Recalculator
	Metrics      *metrics.FinanceMetrics
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	rules        *config.FinanceConfigHolder
	repo         domain.Repository
	ledgerRepo   pfdomain.Repository
	recalculator *patientstatus.Recalculator
	metrics      *metrics.FinanceMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("clinicfinance.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		rules:        p.Rules,
		repo:         p.Repo,
		ledgerRepo:   p.LedgerRepo,
		recalculator: p.Recalculator,
		metrics:      p.Metrics,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertEntryRequest) (domain.ClinicLedgerEntry, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ClinicLedgerEntry{}, domain.ErrInvalidClinic
	}
	userID, ok := clinicctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ClinicLedgerEntry{}, domain.ErrInvalidClinic
	}

	entry, err := s.buildEntry(clinicID, userID, req)
	if err != nil {
		return domain.ClinicLedgerEntry{}, err
	}

	var previousPatient *snowflake.ID
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.ID == "" {
			if err := s.repo.Insert(ctx, tx, &entry); err != nil {
				return err
			}
		} else {
			current, err := s.repo.FindByID(ctx, tx, clinicID, entry.ID)
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrNotFound
			}
			if current.Status == domain.StatusRefunded {
				return domain.ErrEditRefunded
			}
			action := domain.ActionEdit
			if entry.Status == domain.StatusPaid && current.Status != domain.StatusPaid {
				action = domain.ActionPay
			}
			if _, allowed := domain.Transition(current.Status, action); !allowed {
				return domain.ErrEditRefunded
			}
			entry.CreatedBy = current.CreatedBy
			entry.CreatedAt = current.CreatedAt
			previousPatient = current.PatientID
			if err := s.repo.Update(ctx, tx, &entry); err != nil {
				return err
			}
		}

		if entry.SettlesCharges() {
			if err := s.settleLinkedCharges(ctx, tx, &entry); err != nil {
				return err
			}
		}
		if entry.IsPatientCredit() && entry.Status == domain.StatusPaid {
			if err := s.ensureCreditPayment(ctx, tx, &entry); err != nil {
				return err
			}
		}

		if entry.PatientID != nil {
			if _, err := s.recalculator.Recalculate(ctx, tx, clinicID, *entry.PatientID); err != nil {
				return err
			}
		}
		if previousPatient != nil && (entry.PatientID == nil || *previousPatient != *entry.PatientID) {
			if _, err := s.recalculator.Recalculate(ctx, tx, clinicID, *previousPatient); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.ClinicLedgerEntry{}, err
	}

	s.metrics.Mutations.WithLabelValues("clinic", "upsert").Inc()
	s.invalidate(ctx, clinicID, entry.PatientID)
	if previousPatient != nil {
		s.invalidate(ctx, clinicID, previousPatient)
	}
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ErrInvalidClinic
	}
	entryID, err := domain.ParseID(id)
	if err != nil {
		return err
	}

	var affectedPatient *snowflake.ID
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.FindByID(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		if !domain.Can(entry.Status, domain.ActionDelete) {
			return domain.ErrDeleteSettled
		}

		if err := s.repo.Delete(ctx, tx, clinicID, entryID); err != nil {
			return err
		}
		if entry.IsPatientCredit() {
			// Idempotent: the payment row only exists when the credit was paid.
			if err := s.ledgerRepo.DeletePaymentByRelated(ctx, tx, clinicID, entryID); err != nil {
				return err
			}
		}

		affectedPatient = entry.PatientID
		if affectedPatient != nil {
			if _, err := s.recalculator.Recalculate(ctx, tx, clinicID, *affectedPatient); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.Mutations.WithLabelValues("clinic", "delete").Inc()
	s.invalidate(ctx, clinicID, affectedPatient)
	return nil
}

func (s *Service) Refund(ctx context.Context, id string) error {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ErrInvalidClinic
	}
	entryID, err := domain.ParseID(id)
	if err != nil {
		return err
	}

	today := dateOnly(s.clock.Now())
	var affectedPatient *snowflake.ID
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.FindByID(ctx, tx, clinicID, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		next, allowed := domain.Transition(entry.Status, domain.ActionRefund)
		if !allowed {
			return domain.ErrRefundNotPaid
		}

		entry.Status = next
		entry.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, entry); err != nil {
			return err
		}

		switch {
		case len(entry.LinkedPatientChargeIDs) > 0:
			if err := s.revertLinkedCharges(ctx, tx, entry, today); err != nil {
				return err
			}
		case entry.IsPatientCredit():
			if err := s.ledgerRepo.DeletePaymentByRelated(ctx, tx, clinicID, entryID); err != nil {
				return err
			}
		}

		affectedPatient = entry.PatientID
		if affectedPatient != nil {
			if _, err := s.recalculator.Recalculate(ctx, tx, clinicID, *affectedPatient); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.Mutations.WithLabelValues("clinic", "refund").Inc()
	s.invalidate(ctx, clinicID, affectedPatient)
	return nil
}

func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (domain.Summary, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Summary{}, domain.ErrInvalidClinic
	}
	return s.repo.Summary(ctx, s.db, clinicID, req.From, req.To)
}

func (s *Service) ListTransactions(ctx context.Context, req domain.ListTransactionsRequest) ([]domain.TransactionView, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return nil, domain.ErrInvalidClinic
	}

	items, err := s.repo.List(ctx, s.db, clinicID, domain.ListFilter{
		From:      req.From,
		To:        req.To,
		Status:    req.Status,
		Operation: req.Operation,
	})
	if err != nil {
		return nil, err
	}

	views := make([]domain.TransactionView, 0, len(items))
	for _, item := range items {
		views = append(views, *item)
	}
	return views, nil
}

func (s *Service) ListLinkableCharges(ctx context.Context, patientID string) ([]pfdomain.PatientLedgerEntry, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return nil, domain.ErrInvalidClinic
	}
	pid, err := domain.ParseID(patientID)
	if err != nil {
		return nil, err
	}

	items, err := s.ledgerRepo.ListLinkable(ctx, s.db, clinicID, pid)
	if err != nil {
		return nil, err
	}

	charges := make([]pfdomain.PatientLedgerEntry, 0, len(items))
	for _, item := range items {
		charges = append(charges, *item)
	}
	return charges, nil
}

// settleLinkedCharges marks each linked charge paid and stamps the clinic entry
// that settled it.
func (s *Service) settleLinkedCharges(ctx context.Context, tx *gorm.DB, entry *domain.ClinicLedgerEntry) error {
	ids := make([]snowflake.ID, 0, len(entry.LinkedPatientChargeIDs))
	for _, raw := range entry.LinkedPatientChargeIDs {
		ids = append(ids, snowflake.ID(raw))
	}

	charges, err := s.ledgerRepo.FindCharges(ctx, tx, entry.ClinicID, ids)
	if err != nil {
		return err
	}
	if len(charges) != len(ids) {
		return domain.ErrChargeNotLinkable
	}

	now := s.clock.Now()
	for _, charge := range charges {
		if entry.PatientID == nil || charge.PatientID != *entry.PatientID {
			return domain.ErrChargeNotLinkable
		}
		if charge.Status == pfdomain.ChargeStatusPaid {
			// Already settled by this entry: re-running the upsert is a no-op.
			if charge.RelatedClinicFinanceID != nil && *charge.RelatedClinicFinanceID == entry.ID {
				continue
			}
			return domain.ErrChargeNotLinkable
		}
		if !charge.Unpaid() {
			return domain.ErrChargeNotLinkable
		}

		charge.Status = pfdomain.ChargeStatusPaid
		related := entry.ID
		charge.RelatedClinicFinanceID = &related
		charge.UpdatedAt = now
		if err := s.ledgerRepo.Update(ctx, tx, charge); err != nil {
			return err
		}
	}
	return nil
}

// ensureCreditPayment mirrors a paid credit/advance into the patient ledger,
// exactly once per clinic entry.
func (s *Service) ensureCreditPayment(ctx context.Context, tx *gorm.DB, entry *domain.ClinicLedgerEntry) error {
	existing, err := s.ledgerRepo.FindPaymentByRelated(ctx, tx, entry.ClinicID, entry.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := s.clock.Now()
	related := entry.ID
	payment := pfdomain.PatientLedgerEntry{
		ID:                     s.genID.Generate(),
		ClinicID:               entry.ClinicID,
		PatientID:              *entry.PatientID,
		Type:                   pfdomain.EntryTypePayment,
		Description:            entry.Description,
		AmountInCents:          entry.AmountInCents,
		RelatedClinicFinanceID: &related,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	return s.ledgerRepo.Insert(ctx, tx, &payment)
}

// revertLinkedCharges undoes a settlement: each charge goes back to overdue when
// already past due, pending otherwise, and loses its settlement reference.
func (s *Service) revertLinkedCharges(ctx context.Context, tx *gorm.DB, entry *domain.ClinicLedgerEntry, today time.Time) error {
	ids := make([]snowflake.ID, 0, len(entry.LinkedPatientChargeIDs))
	for _, raw := range entry.LinkedPatientChargeIDs {
		ids = append(ids, snowflake.ID(raw))
	}

	charges, err := s.ledgerRepo.FindCharges(ctx, tx, entry.ClinicID, ids)
	if err != nil {
		return err
	}

	for _, charge := range charges {
		if charge.RelatedClinicFinanceID == nil || *charge.RelatedClinicFinanceID != entry.ID {
			continue
		}
		if charge.DueDate != nil && charge.DueDate.Before(today) {
			charge.Status = pfdomain.ChargeStatusOverdue
		} else {
			charge.Status = pfdomain.ChargeStatusPending
		}
		charge.RelatedClinicFinanceID = nil
		charge.UpdatedAt = s.clock.Now()
		if err := s.ledgerRepo.Update(ctx, tx, charge); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) buildEntry(clinicID, userID snowflake.ID, req domain.UpsertEntryRequest) (domain.ClinicLedgerEntry, error) {
	rules := s.rules.Get()

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.ClinicLedgerEntry{}, domain.ErrInvalidDescription
	}
	if req.AmountInCents < 1 {
		return domain.ClinicLedgerEntry{}, domain.ErrInvalidAmount
	}

	status := req.Status
	if status == "" {
		status = domain.StatusPending
	}
	switch status {
	case domain.StatusPending, domain.StatusPaid:
	case domain.StatusOverdue, domain.StatusRefunded:
		// Only the sweeper and the refund action set these.
		return domain.ClinicLedgerEntry{}, domain.ErrStatusNotAllowed
	default:
		return domain.ClinicLedgerEntry{}, domain.ErrStatusNotAllowed
	}

	now := s.clock.Now()
	entry := domain.ClinicLedgerEntry{
		ClinicID:      clinicID,
		Operation:     req.Operation,
		Description:   description,
		AmountInCents: req.AmountInCents,
		Status:        status,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.ID != "" {
		id, err := domain.ParseID(req.ID)
		if err != nil {
			return domain.ClinicLedgerEntry{}, err
		}
		entry.ID = id
	} else {
		entry.ID = s.genID.Generate()
	}

	if req.DueDate != nil {
		due := dateOnly(*req.DueDate)
		entry.DueDate = &due
	}

	if status == domain.StatusPaid {
		method := strings.TrimSpace(req.PaymentMethod)
		if req.PaymentDate == nil || method == "" {
			return domain.ClinicLedgerEntry{}, domain.ErrPaymentInfoRequired
		}
		if !contains(rules.PaymentMethods, method) {
			return domain.ClinicLedgerEntry{}, domain.ErrInvalidPaymentMethod
		}
		entry.PaymentDate = req.PaymentDate
		entry.PaymentMethod = &method
	}

	switch req.Operation {
	case domain.OperationInput:
		typeInput := strings.TrimSpace(req.TypeInput)
		if typeInput == "" {
			return domain.ClinicLedgerEntry{}, domain.ErrTypeInputRequired
		}
		if !contains(rules.InputTypes, typeInput) {
			return domain.ClinicLedgerEntry{}, domain.ErrUnknownType
		}
		entry.TypeInput = &typeInput

		if req.PatientID != "" {
			pid, err := domain.ParseID(req.PatientID)
			if err != nil {
				return domain.ClinicLedgerEntry{}, err
			}
			entry.PatientID = &pid
		}

		linked, err := parseLinkedIDs(req.LinkedPatientChargeIDs)
		if err != nil {
			return domain.ClinicLedgerEntry{}, err
		}

		switch typeInput {
		case domain.TypeInputTreatment:
			if entry.PatientID == nil {
				return domain.ClinicLedgerEntry{}, domain.ErrPatientRequired
			}
			if len(linked) == 0 {
				return domain.ClinicLedgerEntry{}, domain.ErrChargesRequired
			}
			entry.LinkedPatientChargeIDs = linked
		case domain.TypeInputPatientCredit:
			if entry.PatientID == nil {
				return domain.ClinicLedgerEntry{}, domain.ErrPatientRequired
			}
			// Credits never settle specific charges.
			entry.LinkedPatientChargeIDs = nil
		default:
			if len(linked) > 0 {
				if entry.PatientID == nil {
					return domain.ClinicLedgerEntry{}, domain.ErrPatientRequired
				}
				entry.LinkedPatientChargeIDs = linked
			}
		}

	case domain.OperationOutput:
		typeOutput := strings.TrimSpace(req.TypeOutput)
		if typeOutput == "" {
			return domain.ClinicLedgerEntry{}, domain.ErrTypeOutputRequired
		}
		if !contains(rules.OutputTypes, typeOutput) {
			return domain.ClinicLedgerEntry{}, domain.ErrUnknownType
		}
		entry.TypeOutput = &typeOutput

		if typeOutput == domain.TypeOutputEmployee {
			if req.EmployeeID == "" {
				return domain.ClinicLedgerEntry{}, domain.ErrEmployeeRequired
			}
			eid, err := domain.ParseID(req.EmployeeID)
			if err != nil {
				return domain.ClinicLedgerEntry{}, err
			}
			entry.EmployeeID = &eid
		}

	default:
		return domain.ClinicLedgerEntry{}, domain.ErrInvalidOperation
	}

	return entry, nil
}

func (s *Service) invalidate(ctx context.Context, clinicID snowflake.ID, patientID *snowflake.ID) {
	if patientID != nil {
		s.recalculator.InvalidateViews(ctx, clinicID, *patientID)
		return
	}
	s.recalculator.InvalidateViews(ctx, clinicID, 0)
}

func parseLinkedIDs(values []string) (datatypes.JSONSlice[int64], error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make(datatypes.JSONSlice[int64], 0, len(values))
	for _, value := range values {
		id, err := domain.ParseID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, int64(id))
	}
	return ids, nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
