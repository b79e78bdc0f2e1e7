package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/subscription/domain"
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
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Get(ctx context.Context) (domain.ClinicSubscription, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ClinicSubscription{}, domain.ErrInvalidClinic
	}

	subscription, err := s.repo.FindByClinic(ctx, s.db, clinicID)
	if err != nil {
		return domain.ClinicSubscription{}, err
	}
	if subscription == nil {
		return domain.ClinicSubscription{}, domain.ErrNotFound
	}
	return *subscription, nil
}

func (s *Service) Sync(ctx context.Context, req domain.SyncRequest) (domain.ClinicSubscription, error) {
	clinicID, ok := clinicctx.ClinicIDFromContext(ctx)
	if !ok || clinicID == 0 {
		return domain.ClinicSubscription{}, domain.ErrInvalidClinic
	}

	provider := strings.TrimSpace(req.Provider)
	customer := strings.TrimSpace(req.ProviderCustomerID)
	if provider == "" || customer == "" {
		return domain.ClinicSubscription{}, domain.ErrInvalidProvider
	}
	switch req.Status {
	case domain.StatusTrialing, domain.StatusActive, domain.StatusPastDue, domain.StatusCanceled:
	default:
		return domain.ClinicSubscription{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	subscription := domain.ClinicSubscription{
		ID:                     s.genID.Generate(),
		ClinicID:               clinicID,
		Provider:               provider,
		ProviderCustomerID:     customer,
		ProviderSubscriptionID: strings.TrimSpace(req.ProviderSubscriptionID),
		Status:                 req.Status,
		CurrentPeriodEnd:       req.CurrentPeriodEnd,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.repo.Upsert(ctx, s.db, &subscription); err != nil {
		return domain.ClinicSubscription{}, err
	}

	s.log.Info("subscription synced",
		zap.String("clinic_id", clinicID.String()),
		zap.String("status", string(req.Status)),
	)
	return subscription, nil
}
