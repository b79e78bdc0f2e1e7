package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/subscription/domain"
	subscriptionrepository "github.com/odontocare/odontocare/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ClinicSubscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  subscriptionrepository.Provide(),
	})
	return svc, node.Generate()
}

func ctxFor(clinicID snowflake.ID) context.Context {
	ctx := clinicctx.WithClinicID(context.Background(), clinicID)
	return clinicctx.WithUserID(ctx, clinicID)
}

func TestGetWithoutRecordReturnsNotFound(t *testing.T) {
	svc, clinicID := setup(t)

	_, err := svc.Get(ctxFor(clinicID))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncUpsertsSingleRowPerClinic(t *testing.T) {
	svc, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	first, err := svc.Sync(ctx, domain.SyncRequest{
		Provider:           "stripe",
		ProviderCustomerID: "cus_123",
		Status:             domain.StatusTrialing,
	})
	require.NoError(t, err)

	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Sync(ctx, domain.SyncRequest{
		Provider:               "stripe",
		ProviderCustomerID:     "cus_123",
		ProviderSubscriptionID: "sub_456",
		Status:                 domain.StatusActive,
		CurrentPeriodEnd:       &end,
	})
	require.NoError(t, err)

	current, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ClinicID, current.ClinicID)
	assert.Equal(t, domain.StatusActive, current.Status)
	assert.Equal(t, "sub_456", current.ProviderSubscriptionID)
}

func TestSyncValidation(t *testing.T) {
	svc, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	_, err := svc.Sync(ctx, domain.SyncRequest{
		Provider: " ",
		Status:   domain.StatusActive,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)

	_, err = svc.Sync(ctx, domain.SyncRequest{
		Provider:           "stripe",
		ProviderCustomerID: "cus_123",
		Status:             domain.Status("paused"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestBlockedOnlyWhenCanceled(t *testing.T) {
	for status, blocked := range map[domain.Status]bool{
		domain.StatusTrialing: false,
		domain.StatusActive:   false,
		domain.StatusPastDue:  false,
		domain.StatusCanceled: true,
	} {
		sub := domain.ClinicSubscription{Status: status}
		assert.Equal(t, blocked, sub.Blocked(), "status %s", status)
	}
}
