package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/clinicfinance/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MarkOverdueTransactions promotes pending entries past their due date to
// overdue in both ledgers and recalculates every patient it touched. It runs
// only when a user asks for it. Two users running it concurrently may both
// report rows, but the promotion itself is idempotent.
func (s *Service) MarkOverdueTransactions(ctx context.Context) (domain.SweepResult, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.SweepResult{}, domain.ErrInvalidClinic
	}

	today := dateOnly(s.clock.Now())
	var result domain.SweepResult
	var affected []snowflake.ID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		clinicRows, err := s.repo.PromoteOverdue(ctx, tx, clinicID, today)
		if err != nil {
			return err
		}

		// Capture the patient set before mutating their charges; afterwards the
		// rows no longer match the pending filter.
		affected, err = s.ledgerRepo.DistinctPatientsWithDueCharges(ctx, tx, clinicID, today)
		if err != nil {
			return err
		}

		patientRows, err := s.ledgerRepo.PromoteOverdue(ctx, tx, clinicID, today)
		if err != nil {
			return err
		}

		for _, patientID := range affected {
			if _, err := s.recalculator.Recalculate(ctx, tx, clinicID, patientID); err != nil {
				return err
			}
		}

		result = domain.SweepResult{
			ClinicUpdated:   clinicRows,
			PatientsUpdated: patientRows,
		}
		return nil
	})
	if err != nil {
		return domain.SweepResult{}, err
	}

	s.metrics.SweeperRuns.Inc()
	s.metrics.SweeperClinicRows.Add(float64(result.ClinicUpdated))
	s.metrics.SweeperPatientRows.Add(float64(result.PatientsUpdated))

	for _, patientID := range affected {
		s.recalculator.InvalidateViews(ctx, clinicID, patientID)
	}
	s.recalculator.InvalidateViews(ctx, clinicID, 0)

	s.log.Info("overdue sweep finished",
		zap.String("clinic_id", clinicID.String()),
		zap.Int64("clinic_rows", result.ClinicUpdated),
		zap.Int64("patient_rows", result.PatientsUpdated),
		zap.Int("patients_recalculated", len(affected)),
	)
	return result, nil
}
