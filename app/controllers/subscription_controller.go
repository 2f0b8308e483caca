package controllers

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lromand/matchpoint/internal/pkg/database"
	"github.com/lromand/matchpoint/internal/pkg/payment"
	"github.com/lromand/matchpoint/internal/pkg/plancatalog"
	"github.com/lromand/matchpoint/internal/pkg/subscription"
)

var validate = validator.New()

var (
	subscriptionOnce    sync.Once
	subscriptionSvc     *subscription.Service
	subscriptionInitErr error
)

// getSubscriptionService lazily wires the orchestrator against the global DB
// handle and the gateway client from the environment.
func getSubscriptionService() (*subscription.Service, error) {
	subscriptionOnce.Do(func() {
		gateway, err := payment.NewClientFromEnv()
		if err != nil {
			subscriptionInitErr = err
			return
		}
		subscriptionSvc = subscription.NewServiceFromDB(gateway, database.GetDB())
	})
	return subscriptionSvc, subscriptionInitErr
}

var (
	catalogOnce sync.Once
	planCatalog *plancatalog.Catalog
)

func getPlanCatalog() *plancatalog.Catalog {
	catalogOnce.Do(func() {
		planCatalog = plancatalog.NewCatalogFromDB(database.GetDB())
	})
	return planCatalog
}

// SubscribeRequest is the payload of POST /api/subscribe.
type SubscribeRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=150"`
	Email      string `json:"email" validate:"required,email"`
	PlanID     uint   `json:"plan_id" validate:"required"`
	CardNumber string `json:"card_number" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// HandleSubscribe runs the full enroll-and-charge workflow for a new
// subscriber: boundary validation here, orchestration in the subscription
// service.
func HandleSubscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	card := NormalizeCardNumber(req.CardNumber)
	if !ValidCardNumber(card) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "Card number must be 16 digits"})
	}
	if !ValidCVV(req.CVV) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "CVV must be 3 or 4 digits"})
	}

	plan, err := getPlanCatalog().Get(c.Context(), req.PlanID)
	if err != nil {
		if errors.Is(err, plancatalog.ErrPlanNotFound) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "Unknown plan"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	svc, err := getSubscriptionService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription service unavailable"})
	}

	result, err := svc.Enroll(c.Context(), subscription.EnrollInput{
		Name:       req.Name,
		Email:      req.Email,
		PlanID:     plan.ID,
		CardNumber: card,
		CVV:        req.CVV,
		Amount:     plan.Price,
	})
	if err != nil {
		return subscribeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// subscribeError maps orchestrator failures to HTTP status codes. The order
// matters: a duplicate email is a client mistake even when it surfaces after
// the charge, so it wins over the generic reconciliation class.
func subscribeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, subscription.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_taken", "message": "This email address is already registered"})
	case errors.Is(err, subscription.ErrAccountIDExhausted):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "try_again", "message": "Could not allocate a payment account, please retry"})
	}

	var apiErr *payment.APIError
	if errors.As(err, &apiErr) && !subscription.IsReconciliationRequired(err) {
		if apiErr.IsDecline() {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "payment_declined", "message": "The payment was declined"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "gateway_unavailable", "message": "The payment gateway is unavailable"})
	}

	if subscription.IsReconciliationRequired(err) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription could not be completed, support has been notified"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription failed"})
}

// HandleListPlans returns the plan catalog ordered by price.
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := getPlanCatalog().List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plans"})
	}

	out := make([]fiber.Map, 0, len(plans))
	for _, p := range plans {
		out = append(out, fiber.Map{
			"id":                p.ID,
			"name":              p.Name,
			"price":             p.Price,
			"period_days":       p.PeriodDays,
			"engagement_months": p.EngagementMonths,
			"auto_renew":        p.AutoRenew,
		})
	}
	return c.JSON(fiber.Map{"plans": out})
}
