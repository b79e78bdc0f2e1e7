package patientstatus

import (
	"testing"
	"time"

	"github.com/odontocare/odontocare/internal/config"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	pfdomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
	"github.com/stretchr/testify/assert"
)

func charge(amount int64, status pfdomain.ChargeStatus) *pfdomain.PatientLedgerEntry {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return &pfdomain.PatientLedgerEntry{
		Type:          pfdomain.EntryTypeCharge,
		AmountInCents: amount,
		DueDate:       &due,
		Status:        status,
	}
}

func payment(amount int64) *pfdomain.PatientLedgerEntry {
	return &pfdomain.PatientLedgerEntry{
		Type:          pfdomain.EntryTypePayment,
		AmountInCents: amount,
	}
}

func TestDeriveEmptyLedgerIsGoodStanding(t *testing.T) {
	assert.Equal(t, patientdomain.Adimplente, Derive(config.StatusRuleOutstanding, nil))
	assert.Equal(t, patientdomain.Adimplente, Derive(config.StatusRuleBalance, nil))
}

func TestDeriveOutstandingFlagsAnyUnpaidCharge(t *testing.T) {
	entries := []*pfdomain.PatientLedgerEntry{
		charge(10_000, pfdomain.ChargeStatusPaid),
		charge(5_000, pfdomain.ChargeStatusPending),
	}
	assert.Equal(t, patientdomain.Inadimplente, Derive(config.StatusRuleOutstanding, entries))

	entries[1].Status = pfdomain.ChargeStatusOverdue
	assert.Equal(t, patientdomain.Inadimplente, Derive(config.StatusRuleOutstanding, entries))

	entries[1].Status = pfdomain.ChargeStatusPaid
	assert.Equal(t, patientdomain.Adimplente, Derive(config.StatusRuleOutstanding, entries))
}

func TestDeriveBalanceComparesTotals(t *testing.T) {
	entries := []*pfdomain.PatientLedgerEntry{
		charge(10_000, pfdomain.ChargeStatusPending),
		payment(10_000),
	}
	assert.Equal(t, patientdomain.Adimplente, Derive(config.StatusRuleBalance, entries))

	entries = append(entries, charge(1, pfdomain.ChargeStatusPending))
	assert.Equal(t, patientdomain.Inadimplente, Derive(config.StatusRuleBalance, entries))
}

// The two rules legitimately disagree on some ledgers; the configured rule
// decides which one wins, everywhere.
func TestRulesDivergeOnSettledChargesWithoutPayments(t *testing.T) {
	// Charges settled through the clinic ledger are marked paid without a
	// matching patient payment row.
	entries := []*pfdomain.PatientLedgerEntry{
		charge(30_000, pfdomain.ChargeStatusPaid),
	}
	assert.Equal(t, patientdomain.Adimplente, Derive(config.StatusRuleOutstanding, entries))
	assert.Equal(t, patientdomain.Inadimplente, Derive(config.StatusRuleBalance, entries))
}

func TestDeriveUnknownRuleFallsBackToOutstanding(t *testing.T) {
	entries := []*pfdomain.PatientLedgerEntry{
		charge(30_000, pfdomain.ChargeStatusPaid),
	}
	assert.Equal(t, patientdomain.Adimplente, Derive(config.StatusRule("bogus"), entries))
}
