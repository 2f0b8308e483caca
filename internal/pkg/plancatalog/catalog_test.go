package plancatalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/models"
)

type fakeRepo struct {
	plans     []models.Plan
	listCalls int
	saved     []models.Plan
	lastCtx   context.Context
}

func (r *fakeRepo) ListByPriceAsc(ctx context.Context) ([]models.Plan, error) {
	r.listCalls++
	r.lastCtx = ctx
	return r.plans, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	r.lastCtx = ctx
	for i := range r.plans {
		if r.plans[i].ID == id {
			return &r.plans[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) Save(ctx context.Context, plan *models.Plan) error {
	r.lastCtx = ctx
	r.saved = append(r.saved, *plan)
	return nil
}

// stubCache installs an in-memory cache for the duration of one test.
func stubCache(t *testing.T) map[string]string {
	t.Helper()
	store := map[string]string{}

	origGet, origSet, origDelete := cacheGet, cacheSet, cacheDelete
	t.Cleanup(func() {
		cacheGet, cacheSet, cacheDelete = origGet, origSet, origDelete
	})

	cacheGet = func(key string) (string, error) {
		val, ok := store[key]
		if !ok {
			return "", errors.New("cache miss")
		}
		return val, nil
	}
	cacheSet = func(key string, value interface{}, _ time.Duration) error {
		store[key] = value.(string)
		return nil
	}
	cacheDelete = func(key string) error {
		delete(store, key)
		return nil
	}
	return store
}

func catalogPlans() []models.Plan {
	return []models.Plan{
		{ID: 1, Name: "Basic", Price: decimal.RequireFromString("9.90"), PeriodDays: 30},
		{ID: 2, Name: "Premium", Price: decimal.RequireFromString("29.90"), PeriodDays: 30, EngagementMonths: 3},
	}
}

func TestListServesSecondCallFromCache(t *testing.T) {
	stubCache(t)
	repo := &fakeRepo{plans: catalogPlans()}
	catalog := NewCatalog(repo)

	first, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 2)

	assert.Equal(t, 1, repo.listCalls, "second listing should come from the cache")
	assert.Equal(t, "Basic", second[0].Name)
	assert.True(t, second[1].Price.Equal(decimal.RequireFromString("29.90")))
}

func TestListFallsBackOnCorruptCacheEntry(t *testing.T) {
	store := stubCache(t)
	store[CacheKeyPlans] = "{not json"
	repo := &fakeRepo{plans: catalogPlans()}
	catalog := NewCatalog(repo)

	plans, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	assert.Equal(t, 1, repo.listCalls)
}

func TestGetUnknownPlan(t *testing.T) {
	stubCache(t)
	catalog := NewCatalog(&fakeRepo{})

	_, err := catalog.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestSaveInvalidatesListCache(t *testing.T) {
	store := stubCache(t)
	repo := &fakeRepo{plans: catalogPlans()}
	catalog := NewCatalog(repo)

	_, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Contains(t, store, CacheKeyPlans)

	err = catalog.Save(context.Background(), &models.Plan{
		Name:       "Gold",
		Price:      decimal.RequireFromString("49.90"),
		PeriodDays: 30,
	})
	require.NoError(t, err)

	assert.NotContains(t, store, CacheKeyPlans)
	require.Len(t, repo.saved, 1)
}

func TestSaveRejectsInvalidPlan(t *testing.T) {
	stubCache(t)
	catalog := NewCatalog(&fakeRepo{})

	err := catalog.Save(context.Background(), &models.Plan{Name: "X", PeriodDays: 0})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	err = catalog.Save(context.Background(), &models.Plan{
		Name:       "Negative",
		Price:      decimal.RequireFromString("-1.00"),
		PeriodDays: 30,
	})
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestGetForwardsRequestContext(t *testing.T) {
	stubCache(t)
	repo := &fakeRepo{plans: catalogPlans()}
	catalog := NewCatalog(repo)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-scoped")

	_, err := catalog.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, repo.lastCtx)
	assert.Equal(t, "request-scoped", repo.lastCtx.Value(ctxKey{}))
}

func TestNamesAndPricesByID(t *testing.T) {
	stubCache(t)
	catalog := NewCatalog(&fakeRepo{plans: catalogPlans()})

	names, err := catalog.NamesByID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{1: "Basic", 2: "Premium"}, names)

	prices, err := catalog.PricesByID(context.Background())
	require.NoError(t, err)
	assert.True(t, prices[1].Equal(decimal.RequireFromString("9.90")))
}
