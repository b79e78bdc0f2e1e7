package domain

import (
	"context"
	"errors"
	"time"

	"github.com/odontocare/odontocare/pkg/db/pagination"
)

type CreatePatientRequest struct {
	Name      string
	Phone     string
	Email     string
	BirthDate *time.Time
	Notes     string
}

type UpdatePatientRequest struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	BirthDate *time.Time
	Notes     string
}

type GetPatientRequest struct {
	ID string
}

type ListPatientsRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Status    FinancialStatus
}

type ListPatientsResponse struct {
	pagination.PageInfo
	Patients []Patient `json:"patients"`
}

type UpdateAnamnesisRequest struct {
	ID      string
	Answers map[string]any
}

type UpdateOdontogramRequest struct {
	ID     string
	Tooth  string
	Record *ToothRecord
}

type Service interface {
	Create(ctx context.Context, req CreatePatientRequest) (Patient, error)
	Update(ctx context.Context, req UpdatePatientRequest) (Patient, error)
	GetByID(ctx context.Context, req GetPatientRequest) (Patient, error)
	List(ctx context.Context, req ListPatientsRequest) (ListPatientsResponse, error)
	UpdateAnamnesis(ctx context.Context, req UpdateAnamnesisRequest) (Patient, error)
	UpdateOdontogram(ctx context.Context, req UpdateOdontogramRequest) (Patient, error)
}

var (
	ErrInvalidClinic = errors.New("não autorizado")
	ErrInvalidID     = errors.New("identificador inválido")
	ErrInvalidName   = errors.New("nome do paciente é obrigatório")
	ErrInvalidTooth  = errors.New("número de dente inválido")
	ErrNotFound      = errors.New("paciente não encontrado")
)

// IsValidationError reports whether err is one of this package's validation errors.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidTooth):
		return true
	}
	return false
}
