package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/odontocare/odontocare/internal/clinicctx"
	"github.com/odontocare/odontocare/internal/patient/domain"
	patientrepository "github.com/odontocare/odontocare/internal/patient/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Patient{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  patientrepository.Provide(),
	})
	return svc, db, node.Generate()
}

func ctxFor(clinicID snowflake.ID) context.Context {
	ctx := clinicctx.WithClinicID(context.Background(), clinicID)
	return clinicctx.WithUserID(ctx, clinicID)
}

func TestCreateAndGetPatient(t *testing.T) {
	svc, _, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	created, err := svc.Create(ctx, domain.CreatePatientRequest{
		Name:  "  Maria Souza  ",
		Phone: "11 99999-0000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", created.Name)
	assert.Equal(t, domain.Adimplente, created.FinancialStatus)

	fetched, err := svc.GetByID(ctx, domain.GetPatientRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCreateRequiresName(t *testing.T) {
	svc, _, clinicID := setup(t)

	_, err := svc.Create(ctxFor(clinicID), domain.CreatePatientRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestGetPatientScopedToClinic(t *testing.T) {
	svc, _, clinicID := setup(t)
	_, _, otherClinic := setup(t)

	created, err := svc.Create(ctxFor(clinicID), domain.CreatePatientRequest{Name: "Maria"})
	require.NoError(t, err)

	_, err = svc.GetByID(ctxFor(otherClinic), domain.GetPatientRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateOdontogramValidatesFDINumber(t *testing.T) {
	svc, _, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	created, err := svc.Create(ctx, domain.CreatePatientRequest{Name: "Maria"})
	require.NoError(t, err)

	for _, tooth := range []string{"0", "10", "49", "50", "86", "99", "abc"} {
		_, err := svc.UpdateOdontogram(ctx, domain.UpdateOdontogramRequest{
			ID:     created.ID.String(),
			Tooth:  tooth,
			Record: &domain.ToothRecord{Condition: "cárie"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTooth, "tooth %s", tooth)
	}

	for _, tooth := range []string{"11", "48", "51", "85"} {
		_, err := svc.UpdateOdontogram(ctx, domain.UpdateOdontogramRequest{
			ID:     created.ID.String(),
			Tooth:  tooth,
			Record: &domain.ToothRecord{Condition: "hígido"},
		})
		assert.NoError(t, err, "tooth %s", tooth)
	}
}

func TestUpdateOdontogramRecordRoundTrip(t *testing.T) {
	svc, _, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	created, err := svc.Create(ctx, domain.CreatePatientRequest{Name: "Maria"})
	require.NoError(t, err)

	updated, err := svc.UpdateOdontogram(ctx, domain.UpdateOdontogramRequest{
		ID:     created.ID.String(),
		Tooth:  "36",
		Record: &domain.ToothRecord{Condition: "restaurado", Face: "oclusal"},
	})
	require.NoError(t, err)
	require.Contains(t, updated.Odontogram, "36")

	// A nil record clears the annotation.
	cleared, err := svc.UpdateOdontogram(ctx, domain.UpdateOdontogramRequest{
		ID:    created.ID.String(),
		Tooth: "36",
	})
	require.NoError(t, err)
	assert.NotContains(t, cleared.Odontogram, "36")
}

func TestUpdateAnamnesisReplacesAnswers(t *testing.T) {
	svc, _, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	created, err := svc.Create(ctx, domain.CreatePatientRequest{Name: "Maria"})
	require.NoError(t, err)

	updated, err := svc.UpdateAnamnesis(ctx, domain.UpdateAnamnesisRequest{
		ID: created.ID.String(),
		Answers: map[string]any{
			"alergias":  "penicilina",
			"diabético": false,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "penicilina", updated.Anamnesis["alergias"])
}

func TestListPaginatesByCursor(t *testing.T) {
	svc, db, clinicID := setup(t)
	ctx := ctxFor(clinicID)

	// Spread creation times out so the second-resolution cursor can separate rows.
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		patient := domain.Patient{
			ID:              node.Generate(),
			ClinicID:        clinicID,
			Name:            "Paciente",
			FinancialStatus: domain.Adimplente,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&patient).Error)
	}

	first, err := svc.List(ctx, domain.ListPatientsRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, first.Patients, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	seen := map[snowflake.ID]bool{}
	for _, p := range first.Patients {
		seen[p.ID] = true
	}

	second, err := svc.List(ctx, domain.ListPatientsRequest{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.NotEmpty(t, second.Patients)
	for _, p := range second.Patients {
		assert.False(t, seen[p.ID], "pages must not overlap")
	}
}
