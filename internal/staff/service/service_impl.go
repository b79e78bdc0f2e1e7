package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("staff.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertStaffRequest) (domain.StaffMember, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.StaffMember{}, domain.ErrInvalidClinic
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.StaffMember{}, domain.ErrInvalidName
	}
	switch req.Role {
	case domain.RoleDentist, domain.RoleAssistant, domain.RoleReceptionist, domain.RoleAdmin:
	default:
		return domain.StaffMember{}, domain.ErrInvalidRole
	}
	cro := strings.TrimSpace(req.CRO)
	if req.Role == domain.RoleDentist && cro == "" {
		return domain.StaffMember{}, domain.ErrCRORequired
	}

	now := time.Now().UTC()
	member := domain.StaffMember{
		ClinicID:  clinicID,
		Name:      name,
		Role:      req.Role,
		CRO:       cro,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.ID == "" {
		member.ID = s.genID.Generate()
		if err := s.repo.Insert(ctx, s.db, &member); err != nil {
			return domain.StaffMember{}, err
		}
		return member, nil
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.StaffMember{}, err
	}
	current, err := s.repo.FindByID(ctx, s.db, clinicID, id)
	if err != nil {
		return domain.StaffMember{}, err
	}
	if current == nil {
		return domain.StaffMember{}, domain.ErrNotFound
	}

	member.ID = id
	member.Active = current.Active
	member.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, s.db, &member); err != nil {
		return domain.StaffMember{}, err
	}
	return member, nil
}

func (s *Service) Deactivate(ctx context.Context, rawID string) error {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ErrInvalidClinic
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	member, err := s.repo.FindByID(ctx, s.db, clinicID, id)
	if err != nil {
		return err
	}
	if member == nil {
		return domain.ErrNotFound
	}

	member.Active = false
	member.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, member)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.StaffMember, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.StaffMember{}, domain.ErrInvalidClinic
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.StaffMember{}, err
	}
	member, err := s.repo.FindByID(ctx, s.db, clinicID, id)
	if err != nil {
		return domain.StaffMember{}, err
	}
	if member == nil {
		return domain.StaffMember{}, domain.ErrNotFound
	}
	return *member, nil
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]domain.StaffMember, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return nil, domain.ErrInvalidClinic
	}

	items, err := s.repo.List(ctx, s.db, clinicID, onlyActive)
	if err != nil {
		return nil, err
	}

	members := make([]domain.StaffMember, 0, len(items))
	for _, item := range items {
		members = append(members, *item)
	}
	return members, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
