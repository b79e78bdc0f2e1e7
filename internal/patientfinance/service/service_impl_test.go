package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/clock"
	"github.com/odontocare/odontocare/internal/config"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	patientrepository "github.com/odontocare/odontocare/internal/patient/repository"
	"github.com/odontocare/odontocare/internal/patientfinance/domain"
	pfrepository "github.com/odontocare/odontocare/internal/patientfinance/repository"
	"github.com/odontocare/odontocare/internal/patientstatus"
	"github.com/odontocare/odontocare/internal/viewcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	clinicID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&patientdomain.Patient{},
		&domain.PatientLedgerEntry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zap.NewNop()
	ledgerRepo := pfrepository.Provide()
	patientRepo := patientrepository.Provide()

	recalc := patientstatus.New(patientstatus.Params{
		Log:         logger,
		Rules:       config.NewStaticFinanceConfigHolder(config.DefaultFinanceConfig()),
		LedgerRepo:  ledgerRepo,
		PatientRepo: patientRepo,
		Cache:       viewcache.New(config.Config{}, logger),
	})

	fakeClock := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:           db,
		Log:          logger,
		GenID:        node,
		Clock:        fakeClock,
		Repo:         ledgerRepo,
		PatientRepo:  patientRepo,
		Recalculator: recalc,
	})

	return &fixture{
		svc:      svc,
		db:       db,
		node:     node,
		clock:    fakeClock,
		clinicID: node.Generate(),
	}
}

func (f *fixture) ctx() context.Context {
	ctx := clinicctx.WithClinicID(context.Background(), f.clinicID)
	return clinicctx.WithUserID(ctx, f.node.Generate())
}

func (f *fixture) createPatient(t *testing.T) snowflake.ID {
	t.Helper()
	patient := patientdomain.Patient{
		ID:              f.node.Generate(),
		ClinicID:        f.clinicID,
		Name:            "João Pereira",
		FinancialStatus: patientdomain.Adimplente,
	}
	require.NoError(t, f.db.Create(&patient).Error)
	return patient.ID
}

func (f *fixture) patientStatus(t *testing.T, patientID snowflake.ID) patientdomain.FinancialStatus {
	t.Helper()
	var patient patientdomain.Patient
	require.NoError(t, f.db.Where("id = ?", patientID).First(&patient).Error)
	return patient.FinancialStatus
}

func TestUpsertChargeMarksPatientDelinquent(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	entry, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypeCharge,
		Description:   "Restauração",
		AmountInCents: 45_000,
		DueDate:       &due,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ChargeStatusPending, entry.Status)
	assert.Equal(t, patientdomain.Inadimplente, f.patientStatus(t, patientID))
}

func TestUpsertRejectsUnknownPatient(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     f.node.Generate().String(),
		Type:          domain.EntryTypeCharge,
		Description:   "Restauração",
		AmountInCents: 45_000,
	})
	assert.ErrorIs(t, err, patientdomain.ErrNotFound)
}

func TestUpsertPaymentStripsChargeFields(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	entry, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypePayment,
		Description:   "Pagamento avulso",
		AmountInCents: 20_000,
		DueDate:       &due,
		Status:        domain.ChargeStatusPending,
	})
	require.NoError(t, err)
	assert.Nil(t, entry.DueDate)
	assert.Empty(t, entry.Status)
}

func TestUpsertCannotTurnPaymentIntoCharge(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	payment, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypePayment,
		Description:   "Pagamento avulso",
		AmountInCents: 20_000,
	})
	require.NoError(t, err)

	_, err = f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		ID:            payment.ID.String(),
		PatientID:     patientID.String(),
		Type:          domain.EntryTypeCharge,
		Description:   "Pagamento avulso",
		AmountInCents: 20_000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestUpsertRejectsStatusOnExistingPayment(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	payment, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypePayment,
		Description:   "Pagamento avulso",
		AmountInCents: 20_000,
	})
	require.NoError(t, err)

	_, err = f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		ID:            payment.ID.String(),
		PatientID:     patientID.String(),
		Type:          domain.EntryTypePayment,
		Description:   "Pagamento avulso",
		AmountInCents: 20_000,
		Status:        domain.ChargeStatusPaid,
	})
	assert.ErrorIs(t, err, domain.ErrPaymentImmutable)

	updated, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		ID:            payment.ID.String(),
		PatientID:     patientID.String(),
		Type:          domain.EntryTypePayment,
		Description:   "Pagamento em dinheiro",
		AmountInCents: 25_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pagamento em dinheiro", updated.Description)
}

func TestUpsertNormalizesChargeDueDate(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	due := time.Date(2025, 5, 1, 17, 45, 30, 0, time.FixedZone("BRT", -3*60*60))
	entry, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypeCharge,
		Description:   "Restauração",
		AmountInCents: 45_000,
		DueDate:       &due,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.DueDate)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), entry.DueDate.UTC())
	assert.Equal(t, f.clock.Now(), entry.CreatedAt)
}

func TestDeleteChargeRestoresGoodStanding(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	entry, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypeCharge,
		Description:   "Limpeza",
		AmountInCents: 15_000,
	})
	require.NoError(t, err)
	require.Equal(t, patientdomain.Inadimplente, f.patientStatus(t, patientID))

	require.NoError(t, f.svc.Delete(f.ctx(), domain.DeleteEntryRequest{
		ID:        entry.ID.String(),
		PatientID: patientID.String(),
	}))
	assert.Equal(t, patientdomain.Adimplente, f.patientStatus(t, patientID))
}

func TestDeleteRejectsMismatchedPatient(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)
	otherID := f.createPatient(t)

	entry, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypeCharge,
		Description:   "Limpeza",
		AmountInCents: 15_000,
	})
	require.NoError(t, err)

	err = f.svc.Delete(f.ctx(), domain.DeleteEntryRequest{
		ID:        entry.ID.String(),
		PatientID: otherID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertValidation(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	_, err := f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypeCharge,
		Description:   "  ",
		AmountInCents: 10_000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)

	_, err = f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          domain.EntryTypeCharge,
		Description:   "Limpeza",
		AmountInCents: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Upsert(f.ctx(), domain.UpsertEntryRequest{
		PatientID:     patientID.String(),
		Type:          "transfer",
		Description:   "Limpeza",
		AmountInCents: 10_000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}
