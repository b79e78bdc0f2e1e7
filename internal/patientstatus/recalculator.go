// Package patientstatus recomputes Patient.financialStatus.
//
// Historically two divergent recalculation rules lived in the clinic-finance
// and patient-finance modules, so a patient's status depended on which code
// path last wrote to their ledger. Every mutation site now goes through this
// one service; the rule is picked once, from finance config.
package patientstatus

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/config"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	pfdomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
	"github.com/odontocare/odontocare/internal/viewcache"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the recalculator.
var Module = fx.Provide(New)

type Params struct {
	fx.In

	Log         *zap.Logger
	Rules       *config.FinanceConfigHolder
	LedgerRepo  pfdomain.Repository
	PatientRepo patientdomain.Repository
	Cache       viewcache.Cache
}

type Recalculator struct {
	log         *zap.Logger
	rules       *config.FinanceConfigHolder
	ledgerRepo  pfdomain.Repository
	patientRepo patientdomain.Repository
	cache       viewcache.Cache
}

func New(p Params) *Recalculator {
	return &Recalculator{
		log:         p.Log.Named("patientstatus"),
		rules:       p.Rules,
		ledgerRepo:  p.LedgerRepo,
		patientRepo: p.PatientRepo,
		cache:       p.Cache,
	}
}

// Recalculate derives the patient's status from their current ledger and
// persists it. Call it inside the same transaction as the ledger mutation so a
// failure rolls both back together.
func (r *Recalculator) Recalculate(ctx context.Context, tx *gorm.DB, clinicID, patientID snowflake.ID) (patientdomain.FinancialStatus, error) {
	entries, err := r.ledgerRepo.ListByPatient(ctx, tx, clinicID, patientID)
	if err != nil {
		return "", err
	}

	status := Derive(r.rules.Get().StatusRule, entries)
	if err := r.patientRepo.UpdateFinancialStatus(ctx, tx, clinicID, patientID, status); err != nil {
		return "", err
	}

	r.log.Debug("financial status recalculated",
		zap.String("patient_id", patientID.String()),
		zap.String("status", string(status)),
	)
	return status, nil
}

// InvalidateViews drops the cached views affected by a ledger mutation. Call it
// after the transaction commits.
func (r *Recalculator) InvalidateViews(ctx context.Context, clinicID, patientID snowflake.ID) {
	if patientID != 0 {
		r.cache.InvalidatePatient(ctx, clinicID, patientID)
	}
	r.cache.InvalidateClinicFinance(ctx, clinicID)
}
