package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type UpsertEntryRequest struct {
	ID            string
	PatientID     string
	Type          EntryType
	Description   string
	AmountInCents int64
	DueDate       *time.Time
	Status        ChargeStatus
}

type DeleteEntryRequest struct {
	ID        string
	PatientID string
}

type ListEntriesRequest struct {
	PatientID string
}

type Service interface {
	Upsert(ctx context.Context, req UpsertEntryRequest) (PatientLedgerEntry, error)
	Delete(ctx context.Context, req DeleteEntryRequest) error
	List(ctx context.Context, req ListEntriesRequest) ([]PatientLedgerEntry, error)
}

// Domain-rule violations surface their message verbatim to the UI.
var (
	ErrInvalidClinic      = errors.New("não autorizado")
	ErrInvalidID          = errors.New("identificador inválido")
	ErrInvalidPatient     = errors.New("paciente inválido")
	ErrInvalidType        = errors.New("tipo de lançamento inválido")
	ErrInvalidAmount      = errors.New("o valor deve ser maior que zero")
	ErrInvalidDescription = errors.New("descrição é obrigatória")
	ErrInvalidStatus      = errors.New("situação inválida para o lançamento")
	ErrNotFound           = errors.New("lançamento não encontrado")
	ErrPaymentImmutable   = errors.New("pagamentos não podem ser alterados")
)

// IsValidationError reports whether err is one of this package's validation errors.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidPatient),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidDescription),
		errors.Is(err, ErrInvalidStatus):
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
