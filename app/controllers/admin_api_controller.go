package controllers

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/lromand/matchpoint/app/models"
	"github.com/lromand/matchpoint/app/repository"
	"github.com/lromand/matchpoint/internal/pkg/database"
	"github.com/lromand/matchpoint/internal/pkg/plancatalog"
	"github.com/lromand/matchpoint/internal/pkg/reportexport"
	"github.com/lromand/matchpoint/internal/pkg/revenue"
)

var (
	revenueOnce sync.Once
	revenueSvc  *revenue.Service
)

func getRevenueService() *revenue.Service {
	revenueOnce.Do(func() {
		revenueSvc = revenue.NewServiceFromDB(database.GetDB())
	})
	return revenueSvc
}

var (
	exporterOnce    sync.Once
	reportExporter  *reportexport.Exporter
	exporterInitErr error
)

func getReportExporter() (*reportexport.Exporter, error) {
	exporterOnce.Do(func() {
		reportExporter, exporterInitErr = reportexport.NewExporterFromEnv()
	})
	return reportExporter, exporterInitErr
}

// parseRange reads and parses the start/end query parameters. Ordering is
// checked by the revenue engine, not here.
func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	startRaw := c.Query("start")
	endRaw := c.Query("end")
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, errors.New("start and end parameters are required (YYYY-MM-DD)")
	}
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start must be a YYYY-MM-DD date")
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end must be a YYYY-MM-DD date")
	}
	return start, end, nil
}

// adminUserRepo is a hook so handler tests can substitute an in-memory
// repository.
var adminUserRepo = func() repository.UserRepository {
	return repository.GetGlobalFactory().GetUserRepository()
}

// HandleAdminUsers lists all subscribers together with their current plan and
// billing dates. A non-empty q filters by name or email.
func HandleAdminUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	repo := adminUserRepo()

	var users []repository.UserWithSubscription
	var total int64
	var err error
	if q := c.Query("q"); q != "" {
		users, err = repo.SearchWithSubscription(q)
		total = int64(len(users))
	} else {
		users, err = repo.ListWithSubscription((page-1)*limit, limit)
		if err == nil {
			total, err = repo.Count()
		}
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load users"})
	}

	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		entry := fiber.Map{
			"id":                  u.User.ID,
			"name":                u.User.Name,
			"email":               u.User.Email,
			"external_account_id": u.User.ExternalAccountID,
			"plan":                u.PlanName,
			"created_at":          u.User.CreatedAt.UTC().Format(time.RFC3339),
		}
		if u.NextPaymentDate != nil {
			entry["next_payment_date"] = u.NextPaymentDate.Format(dateLayout)
		}
		if u.EndEngagementDate != nil {
			entry["end_engagement_date"] = u.EndEngagementDate.Format(dateLayout)
		}
		out = append(out, entry)
	}

	return c.JSON(fiber.Map{
		"users": out,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// HandleAdminRevenue returns the aggregate revenue report for a date range.
func HandleAdminRevenue(c *fiber.Ctx) error {
	start, end, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	report, err := getRevenueService().RevenueForRange(c.Context(), start, end)
	if err != nil {
		if errors.Is(err, revenue.ErrInvalidRange) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "start must not be after end"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to build revenue report"})
	}
	return c.JSON(report)
}

// HandleAdminRevenueTransactions returns the per-transaction detail listing
// for a date range.
func HandleAdminRevenueTransactions(c *fiber.Ctx) error {
	start, end, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	details, err := getRevenueService().TransactionsForRange(c.Context(), start, end)
	if err != nil {
		if errors.Is(err, revenue.ErrInvalidRange) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "start must not be after end"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load transactions"})
	}
	return c.JSON(fiber.Map{"transactions": details, "count": len(details)})
}

// HandleAdminRevenueExport renders the detail listing to CSV and uploads it
// to the archival bucket.
func HandleAdminRevenueExport(c *fiber.Ctx) error {
	start, end, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	exporter, err := getReportExporter()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "export_unavailable", "message": "Report export is not configured"})
	}

	details, err := getRevenueService().TransactionsForRange(c.Context(), start, end)
	if err != nil {
		if errors.Is(err, revenue.ErrInvalidRange) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "start must not be after end"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load transactions"})
	}

	key, err := exporter.ExportTransactions(c.Context(), start, end, details)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to upload report"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"object_key": key, "rows": len(details)})
}

// HandleAdminReconciliation lists enrollment attempts whose charge succeeded
// but whose local persistence never completed, so an operator can settle them
// against the remote ledger. older_than_minutes filters out attempts that may
// still be in flight.
func HandleAdminReconciliation(c *fiber.Ctx) error {
	olderThanMinutes := c.QueryInt("older_than_minutes", 0)
	if olderThanMinutes < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "older_than_minutes must not be negative"})
	}

	svc, err := getSubscriptionService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription service unavailable"})
	}

	attempts, err := svc.StalledAttempts(time.Duration(olderThanMinutes) * time.Minute)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load stalled attempts"})
	}

	return c.JSON(fiber.Map{"attempts": attempts, "count": len(attempts)})
}

// SavePlanRequest is the payload of POST /api/admin/plans. A zero ID creates
// a new plan, a known ID updates it.
type SavePlanRequest struct {
	ID               uint   `json:"id"`
	Name             string `json:"name" validate:"required,min=2,max=100"`
	Price            string `json:"price" validate:"required"`
	PeriodDays       int    `json:"period_days" validate:"required,min=1"`
	EngagementMonths int    `json:"engagement_months" validate:"min=0"`
	AutoRenew        bool   `json:"auto_renew"`
}

// HandleAdminSavePlan creates or updates a plan in the catalog.
func HandleAdminSavePlan(c *fiber.Ctx) error {
	var req SavePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "price must be a decimal amount"})
	}

	plan := &models.Plan{
		ID:               req.ID,
		Name:             req.Name,
		Price:            price,
		PeriodDays:       req.PeriodDays,
		EngagementMonths: req.EngagementMonths,
		AutoRenew:        req.AutoRenew,
	}
	if err := getPlanCatalog().Save(c.Context(), plan); err != nil {
		if errors.Is(err, plancatalog.ErrInvalidPlan) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save plan"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": plan.ID, "name": plan.Name})
}
