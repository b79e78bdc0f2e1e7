package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/staff/domain"
	staffrepository "github.com/odontocare/odontocare/internal/staff/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.StaffMember{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  staffrepository.Provide(),
	})
	return svc, node.Generate()
}

func ctxFor(clinicID snowflake.ID) context.Context {
	ctx := clinicctx.WithClinicID(context.Background(), clinicID)
	return clinicctx.WithUserID(ctx, clinicID)
}

func TestUpsertDentistRequiresCRO(t *testing.T) {
	svc, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	_, err := svc.Upsert(ctx, domain.UpsertStaffRequest{
		Name: "Dra. Helena Prado",
		Role: domain.RoleDentist,
	})
	assert.ErrorIs(t, err, domain.ErrCRORequired)

	member, err := svc.Upsert(ctx, domain.UpsertStaffRequest{
		Name: "Dra. Helena Prado",
		Role: domain.RoleDentist,
		CRO:  " SP-40231 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "SP-40231", member.CRO)
	assert.True(t, member.Active)
}

func TestUpsertRejectsUnknownRole(t *testing.T) {
	svc, clinicID := setup(t)

	_, err := svc.Upsert(ctxFor(clinicID), domain.UpsertStaffRequest{
		Name: "Carlos Lima",
		Role: domain.Role("gerente"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestUpsertUpdateKeepsActiveFlag(t *testing.T) {
	svc, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	member, err := svc.Upsert(ctx, domain.UpsertStaffRequest{
		Name: "Paula Reis",
		Role: domain.RoleReceptionist,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, member.ID.String()))

	updated, err := svc.Upsert(ctx, domain.UpsertStaffRequest{
		ID:   member.ID.String(),
		Name: "Paula Reis Santos",
		Role: domain.RoleReceptionist,
	})
	require.NoError(t, err)
	assert.Equal(t, "Paula Reis Santos", updated.Name)
	assert.False(t, updated.Active)
}

func TestDeactivateHidesFromActiveList(t *testing.T) {
	svc, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	member, err := svc.Upsert(ctx, domain.UpsertStaffRequest{
		Name: "Rafael Costa",
		Role: domain.RoleAssistant,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, member.ID.String()))

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Active)
}

func TestGetByIDScopedToClinic(t *testing.T) {
	svc, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	member, err := svc.Upsert(ctx, domain.UpsertStaffRequest{
		Name: "Bianca Rocha",
		Role: domain.RoleAdmin,
	})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	_, err = svc.GetByID(ctxFor(node.Generate()), member.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
