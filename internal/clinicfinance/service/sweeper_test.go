package service

import (
	"testing"

	"github.com/odontocare/odontocare/internal/clinicfinance/domain"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	pfdomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkOverduePromotesBothLedgers(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	pastDue := f.clock.Now().AddDate(0, 0, -3)
	futureDue := f.clock.Now().AddDate(0, 0, 3)

	lateCharge := f.createCharge(t, patientID, 50_000, pastDue, pfdomain.ChargeStatusPending)
	onTimeCharge := f.createCharge(t, patientID, 30_000, futureDue, pfdomain.ChargeStatusPending)

	typeOutput := "Aluguel"
	lateEntry := domain.ClinicLedgerEntry{
		ID:            f.node.Generate(),
		ClinicID:      f.clinicID,
		Operation:     domain.OperationOutput,
		TypeOutput:    &typeOutput,
		Description:   "Aluguel atrasado",
		AmountInCents: 150_000,
		Status:        domain.StatusPending,
		DueDate:       &pastDue,
		CreatedBy:     f.userID,
	}
	require.NoError(t, f.db.Create(&lateEntry).Error)

	onTimeEntry := domain.ClinicLedgerEntry{
		ID:            f.node.Generate(),
		ClinicID:      f.clinicID,
		Operation:     domain.OperationOutput,
		TypeOutput:    &typeOutput,
		Description:   "Aluguel em dia",
		AmountInCents: 150_000,
		Status:        domain.StatusPending,
		DueDate:       &futureDue,
		CreatedBy:     f.userID,
	}
	require.NoError(t, f.db.Create(&onTimeEntry).Error)

	result, err := f.svc.MarkOverdueTransactions(f.ctx())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ClinicUpdated)
	assert.Equal(t, int64(1), result.PatientsUpdated)

	var reloaded domain.ClinicLedgerEntry
	require.NoError(t, f.db.Where("id = ?", lateEntry.ID).First(&reloaded).Error)
	assert.Equal(t, domain.StatusOverdue, reloaded.Status)

	var reloadedOnTime domain.ClinicLedgerEntry
	require.NoError(t, f.db.Where("id = ?", onTimeEntry.ID).First(&reloadedOnTime).Error)
	assert.Equal(t, domain.StatusPending, reloadedOnTime.Status)

	assert.Equal(t, pfdomain.ChargeStatusOverdue, f.charge(t, lateCharge).Status)
	assert.Equal(t, pfdomain.ChargeStatusPending, f.charge(t, onTimeCharge).Status)

	// The touched patient was recalculated inside the same transaction.
	assert.Equal(t, patientdomain.Inadimplente, f.patientStatus(t, patientID))
}

func TestMarkOverdueIsIdempotent(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	pastDue := f.clock.Now().AddDate(0, 0, -1)
	f.createCharge(t, patientID, 10_000, pastDue, pfdomain.ChargeStatusPending)

	first, err := f.svc.MarkOverdueTransactions(f.ctx())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.PatientsUpdated)

	second, err := f.svc.MarkOverdueTransactions(f.ctx())
	require.NoError(t, err)
	assert.Zero(t, second.ClinicUpdated)
	assert.Zero(t, second.PatientsUpdated)
}

func TestMarkOverdueSkipsChargesDueToday(t *testing.T) {
	f := setup(t)
	patientID := f.createPatient(t)

	today := dateOnly(f.clock.Now())
	f.createCharge(t, patientID, 10_000, today, pfdomain.ChargeStatusPending)

	result, err := f.svc.MarkOverdueTransactions(f.ctx())
	require.NoError(t, err)
	assert.Zero(t, result.PatientsUpdated, "a charge due today is not overdue yet")
}
