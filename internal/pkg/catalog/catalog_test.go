package catalog

import (
	"errors"
	"testing"

	"github.com/amparoassist/amparo/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanRepo struct {
	plans []models.Plan
	err   error
}

func (r *fakePlanRepo) ListActive() ([]models.Plan, error) { return r.plans, r.err }
func (r *fakePlanRepo) ListAll() ([]models.Plan, error)    { return r.plans, r.err }
func (r *fakePlanRepo) GetByID(id uint) (*models.Plan, error) {
	for i := range r.plans {
		if r.plans[i].ID == id {
			return &r.plans[i], nil
		}
	}
	return nil, errors.New("not found")
}
func (r *fakePlanRepo) Create(p *models.Plan) error             { return r.err }
func (r *fakePlanRepo) Update(p *models.Plan) error             { return r.err }
func (r *fakePlanRepo) Delete(id uint) error                    { return r.err }
func (r *fakePlanRepo) SetActive(id uint, active bool) error    { return r.err }

func TestListActiveFallsBackOnStoreError(t *testing.T) {
	svc := NewService(&fakePlanRepo{err: errors.New("connection refused")})

	plans := svc.ListActive()
	require.Len(t, plans, 3)
	assert.Equal(t, "Plano Essencial", plans[0].Name)
	assert.Equal(t, "Plano Familiar", plans[1].Name)
	assert.True(t, plans[1].Popular)
	assert.Equal(t, 4, plans[1].DependentCapacity)
}

func TestListActiveFallsBackOnEmptyStore(t *testing.T) {
	svc := NewService(&fakePlanRepo{})

	plans := svc.ListActive()
	assert.Len(t, plans, 3)
}

func TestListActivePrefersStoredPlans(t *testing.T) {
	stored := []models.Plan{{ID: 7, Name: "Plano Especial", Active: true}}
	svc := NewService(&fakePlanRepo{plans: stored})

	plans := svc.ListActive()
	require.Len(t, plans, 1)
	assert.Equal(t, "Plano Especial", plans[0].Name)
}

func TestDefaultPlansAreNotPurchasable(t *testing.T) {
	for _, p := range DefaultPlans() {
		assert.False(t, p.Purchasable(), "fallback plan %s must not be sold without a price ref", p.Name)
		assert.NotEmpty(t, p.Features())
	}
}
