package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/patient/domain"
	"github.com/odontocare/odontocare/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("patient.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePatientRequest) (domain.Patient, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Patient{}, domain.ErrInvalidClinic
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Patient{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	patient := domain.Patient{
		ID:              s.genID.Generate(),
		ClinicID:        clinicID,
		Name:            name,
		Phone:           strings.TrimSpace(req.Phone),
		Email:           strings.TrimSpace(req.Email),
		BirthDate:       req.BirthDate,
		Notes:           req.Notes,
		FinancialStatus: domain.Adimplente,
		Anamnesis:       datatypes.JSONMap{},
		Odontogram:      datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &patient); err != nil {
		return domain.Patient{}, err
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePatientRequest) (domain.Patient, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Patient{}, domain.ErrInvalidClinic
	}

	patient, err := s.load(ctx, clinicID, req.ID)
	if err != nil {
		return domain.Patient{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Patient{}, domain.ErrInvalidName
	}

	patient.Name = name
	patient.Phone = strings.TrimSpace(req.Phone)
	patient.Email = strings.TrimSpace(req.Email)
	patient.BirthDate = req.BirthDate
	patient.Notes = req.Notes
	patient.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, patient); err != nil {
		return domain.Patient{}, err
	}
	return *patient, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPatientRequest) (domain.Patient, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Patient{}, domain.ErrInvalidClinic
	}

	patient, err := s.load(ctx, clinicID, req.ID)
	if err != nil {
		return domain.Patient{}, err
	}
	return *patient, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPatientsRequest) (domain.ListPatientsResponse, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ListPatientsResponse{}, domain.ErrInvalidClinic
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, clinicID, domain.ListPatientFilter{
		Name:   strings.TrimSpace(req.Name),
		Status: req.Status,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListPatientsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(patient *domain.Patient) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        patient.ID.String(),
			CreatedAt: patient.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	patients := make([]domain.Patient, 0, len(items))
	for _, item := range items {
		patients = append(patients, *item)
	}

	resp := domain.ListPatientsResponse{Patients: patients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) UpdateAnamnesis(ctx context.Context, req domain.UpdateAnamnesisRequest) (domain.Patient, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Patient{}, domain.ErrInvalidClinic
	}

	patient, err := s.load(ctx, clinicID, req.ID)
	if err != nil {
		return domain.Patient{}, err
	}

	patient.Anamnesis = datatypes.JSONMap(req.Answers)
	patient.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, patient); err != nil {
		return domain.Patient{}, err
	}
	return *patient, nil
}

func (s *Service) UpdateOdontogram(ctx context.Context, req domain.UpdateOdontogramRequest) (domain.Patient, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.Patient{}, domain.ErrInvalidClinic
	}
	if !validToothNumber(req.Tooth) {
		return domain.Patient{}, domain.ErrInvalidTooth
	}

	patient, err := s.load(ctx, clinicID, req.ID)
	if err != nil {
		return domain.Patient{}, err
	}

	if patient.Odontogram == nil {
		patient.Odontogram = datatypes.JSONMap{}
	}
	if req.Record == nil {
		delete(patient.Odontogram, req.Tooth)
	} else {
		patient.Odontogram[req.Tooth] = map[string]any{
			"condition": req.Record.Condition,
			"face":      req.Record.Face,
			"note":      req.Record.Note,
		}
	}

	patient.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, patient); err != nil {
		return domain.Patient{}, err
	}
	return *patient, nil
}

func (s *Service) load(ctx context.Context, clinicID snowflake.ID, rawID string) (*domain.Patient, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	patient, err := s.repo.FindByID(ctx, s.db, clinicID, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, domain.ErrNotFound
	}
	return patient, nil
}

// validToothNumber accepts FDI notation: permanent teeth 11-48 and deciduous 51-85.
func validToothNumber(tooth string) bool {
	n, err := strconv.Atoi(tooth)
	if err != nil {
		return false
	}
	quadrant := n / 10
	position := n % 10
	if position < 1 {
		return false
	}
	switch {
	case quadrant >= 1 && quadrant <= 4:
		return position <= 8
	case quadrant >= 5 && quadrant <= 8:
		return position <= 5
	}
	return false
}
