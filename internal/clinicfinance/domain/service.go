package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pfdomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
)

type UpsertEntryRequest struct {
	ID                     string
	Operation              Operation
	TypeInput              string
	TypeOutput             string
	Description            string
	AmountInCents          int64
	PaymentDate            *time.Time
	DueDate                *time.Time
	Status                 Status
	PaymentMethod          string
	PatientID              string
	EmployeeID             string
	LinkedPatientChargeIDs []string
}

type SummaryRequest struct {
	From *time.Time
	To   *time.Time
}

// Summary aggregates the clinic ledger in cents.
type Summary struct {
	SpentInCents    int64 `json:"spent_in_cents"`
	ReceivedInCents int64 `json:"received_in_cents"`
	PendingInCents  int64 `json:"pending_in_cents"`
	BalanceInCents  int64 `json:"balance_in_cents"`
}

type ListTransactionsRequest struct {
	From      *time.Time
	To        *time.Time
	Status    Status
	Operation Operation
}

// TransactionView is a ledger entry joined with the related names the UI shows.
type TransactionView struct {
	ClinicLedgerEntry
	PatientName   string `json:"patient_name,omitempty"`
	EmployeeName  string `json:"employee_name,omitempty"`
	CreatedByName string `json:"created_by_name,omitempty"`
}

// SweepResult reports how many rows each ledger promoted to overdue.
type SweepResult struct {
	ClinicUpdated   int64 `json:"clinicUpdated"`
	PatientsUpdated int64 `json:"patientsUpdated"`
}

type Service interface {
	Upsert(ctx context.Context, req UpsertEntryRequest) (ClinicLedgerEntry, error)
	Delete(ctx context.Context, id string) error
	Refund(ctx context.Context, id string) error
	// MarkOverdueTransactions is the on-demand sweeper. It is never scheduled;
	// a user invokes it explicitly.
	MarkOverdueTransactions(ctx context.Context) (SweepResult, error)
	Summary(ctx context.Context, req SummaryRequest) (Summary, error)
	ListTransactions(ctx context.Context, req ListTransactionsRequest) ([]TransactionView, error)
	ListLinkableCharges(ctx context.Context, patientID string) ([]pfdomain.PatientLedgerEntry, error)
}

// Domain-rule violations carry the Portuguese message shown verbatim as a toast.
var (
	ErrInvalidClinic        = errors.New("não autorizado")
	ErrInvalidID            = errors.New("identificador inválido")
	ErrInvalidOperation     = errors.New("operação inválida")
	ErrTypeInputRequired    = errors.New("tipo de entrada é obrigatório")
	ErrTypeOutputRequired   = errors.New("tipo de saída é obrigatório")
	ErrUnknownType          = errors.New("tipo de lançamento inválido")
	ErrInvalidDescription   = errors.New("descrição é obrigatória")
	ErrInvalidAmount        = errors.New("o valor deve ser maior que zero")
	ErrStatusNotAllowed     = errors.New("situação não permitida para lançamento manual")
	ErrPaymentInfoRequired  = errors.New("data e forma de pagamento são obrigatórias para lançamentos pagos")
	ErrInvalidPaymentMethod = errors.New("forma de pagamento inválida")
	ErrEmployeeRequired     = errors.New("funcionário é obrigatório para pagamento de funcionário")
	ErrPatientRequired      = errors.New("paciente é obrigatório para este tipo de entrada")
	ErrChargesRequired      = errors.New("selecione as cobranças do paciente a serem quitadas")
	ErrChargeNotLinkable    = errors.New("cobrança selecionada não está disponível para quitação")
	ErrEditRefunded         = errors.New("lançamento reembolsado não pode ser alterado")
	ErrDeleteSettled        = errors.New("não é possível excluir um lançamento pago ou reembolsado")
	ErrRefundNotPaid        = errors.New("apenas lançamentos pagos podem ser reembolsados")
	ErrNotFound             = errors.New("lançamento não encontrado")
)

// IsValidationError reports whether err is rejected before reaching the database.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidOperation),
		errors.Is(err, ErrTypeInputRequired),
		errors.Is(err, ErrTypeOutputRequired),
		errors.Is(err, ErrUnknownType),
		errors.Is(err, ErrInvalidDescription),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrStatusNotAllowed),
		errors.Is(err, ErrPaymentInfoRequired),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrEmployeeRequired),
		errors.Is(err, ErrPatientRequired),
		errors.Is(err, ErrChargesRequired):
		return true
	}
	return false
}

// IsStateConflict reports whether err is a rejected status transition.
func IsStateConflict(err error) bool {
	switch {
	case errors.Is(err, ErrEditRefunded),
		errors.Is(err, ErrDeleteSettled),
		errors.Is(err, ErrRefundNotPaid),
		errors.Is(err, ErrChargeNotLinkable):
		return true
	}
	return false
}

// ParseID parses a snowflake ID from its string form.
func ParseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(value)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
