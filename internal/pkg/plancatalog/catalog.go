package plancatalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/models"
	"github.com/lromand/matchpoint/internal/pkg/cache"
)

const (
	CacheKeyPlans   = "plancatalog:plans:all"
	CacheExpiration = 30 * time.Minute
)

var (
	// ErrPlanNotFound means the requested plan id does not exist.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrInvalidPlan means a plan failed validation on the admin save path.
	ErrInvalidPlan = errors.New("invalid plan")
)

// Cache hooks are package vars so tests can stub them without a redis server.
var (
	cacheGet    = cache.Get
	cacheSet    = cache.Set
	cacheDelete = cache.Delete
)

// Repository provides the DB operations used by the catalog.
type Repository interface {
	ListByPriceAsc(ctx context.Context) ([]models.Plan, error)
	GetByID(ctx context.Context, id uint) (*models.Plan, error)
	Save(ctx context.Context, plan *models.Plan) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a plan repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListByPriceAsc(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) Save(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// Catalog is the read-mostly store of plan definitions. Listings are cached
// in redis; writes go through Save which invalidates the cache.
type Catalog struct {
	repo Repository
}

// NewCatalog creates a catalog from an injected repository.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// NewCatalogFromDB creates a catalog from a GORM DB handle.
func NewCatalogFromDB(db *gorm.DB) *Catalog {
	return NewCatalog(NewRepository(db))
}

// List returns all plans ordered by ascending price, serving from the cache
// when possible.
func (c *Catalog) List(ctx context.Context) ([]models.Plan, error) {
	if raw, err := cacheGet(CacheKeyPlans); err == nil && raw != "" {
		var plans []models.Plan
		if err := json.Unmarshal([]byte(raw), &plans); err == nil {
			return plans, nil
		}
		// A corrupt cache entry falls through to the database.
	}

	plans, err := c.repo.ListByPriceAsc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	if raw, err := json.Marshal(plans); err == nil {
		if err := cacheSet(CacheKeyPlans, string(raw), CacheExpiration); err != nil {
			log.Printf("Error caching plan list: %v", err)
		}
	}
	return plans, nil
}

// Get returns one plan by id.
func (c *Catalog) Get(ctx context.Context, id uint) (*models.Plan, error) {
	plan, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrPlanNotFound, id)
		}
		return nil, err
	}
	return plan, nil
}

// Save creates or updates a plan from the admin path and drops the cached
// listing. Price changes never rewrite historical transactions: the charged
// amount lives on the transaction rows.
func (c *Catalog) Save(ctx context.Context, plan *models.Plan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if plan.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidPlan)
	}
	if err := c.repo.Save(ctx, plan); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	if err := cacheDelete(CacheKeyPlans); err != nil {
		log.Printf("Error invalidating plan cache: %v", err)
	}
	return nil
}

// NamesByID returns the id -> name mapping used to label listings.
func (c *Catalog) NamesByID(ctx context.Context) (map[uint]string, error) {
	plans, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(plans))
	for _, p := range plans {
		names[p.ID] = p.Name
	}
	return names, nil
}

// PricesByID returns the id -> price mapping.
func (c *Catalog) PricesByID(ctx context.Context) (map[uint]decimal.Decimal, error) {
	plans, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[uint]decimal.Decimal, len(plans))
	for _, p := range plans {
		prices[p.ID] = p.Price
	}
	return prices, nil
}
