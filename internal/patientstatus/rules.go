package patientstatus

import (
	"github.com/odontocare/odontocare/internal/config"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	pfdomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
)

// Derive computes a patient's financial status from a snapshot of their ledger.
// It is a pure function of the snapshot and the configured rule, so the result
// no longer depends on which module last touched the ledger.
func Derive(rule config.StatusRule, entries []*pfdomain.PatientLedgerEntry) patientdomain.FinancialStatus {
	if rule == config.StatusRuleBalance {
		return deriveByBalance(entries)
	}
	return deriveByOutstanding(entries)
}

// deriveByOutstanding: delinquent while any unpaid charge exists. Payment rows
// are ignored.
func deriveByOutstanding(entries []*pfdomain.PatientLedgerEntry) patientdomain.FinancialStatus {
	for _, entry := range entries {
		if entry.Unpaid() {
			return patientdomain.Inadimplente
		}
	}
	return patientdomain.Adimplente
}

// deriveByBalance: in good standing while the sum of payments covers the sum of
// charges, regardless of due dates.
func deriveByBalance(entries []*pfdomain.PatientLedgerEntry) patientdomain.FinancialStatus {
	var charged, paid int64
	for _, entry := range entries {
		switch entry.Type {
		case pfdomain.EntryTypeCharge:
			charged += entry.AmountInCents
		case pfdomain.EntryTypePayment:
			paid += entry.AmountInCents
		}
	}
	if paid >= charged {
		return patientdomain.Adimplente
	}
	return patientdomain.Inadimplente
}
