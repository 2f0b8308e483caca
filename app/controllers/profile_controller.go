package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/repository"
	"github.com/lromand/matchpoint/internal/pkg/payment"
)

const dateLayout = "2006-01-02"

// HandleGetProfile returns the subscriber profile for the given email,
// including the enrollment history with plan names.
func HandleGetProfile(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing email parameter"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Subscriber not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriber"})
	}

	enrollments, err := repo.EnrollmentsWithPlan(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load enrollments"})
	}

	history := make([]fiber.Map, 0, len(enrollments))
	for _, e := range enrollments {
		history = append(history, fiber.Map{
			"enrollment_id":       e.Enrollment.ID,
			"plan":                e.PlanName,
			"start_date":          e.Enrollment.StartDate.Format(dateLayout),
			"next_payment_date":   e.Enrollment.NextPaymentDate.Format(dateLayout),
			"end_engagement_date": e.Enrollment.EndEngagementDate.Format(dateLayout),
		})
	}

	return c.JSON(fiber.Map{
		"id":          user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"created_at":  user.CreatedAt.UTC().Format(time.RFC3339),
		"enrollments": history,
	})
}

// PaymentMethodRequest is the payload of PUT /api/profile/payment-method.
type PaymentMethodRequest struct {
	Email      string `json:"email" validate:"required,email"`
	CardNumber string `json:"card_number" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
	HolderName string `json:"holder_name" validate:"required,min=2,max=100"`
}

// HandleUpdatePaymentMethod replaces the card stored at the gateway for one
// subscriber. Card data passes through; nothing of it is persisted locally.
func HandleUpdatePaymentMethod(c *fiber.Ctx) error {
	var req PaymentMethodRequest
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

	svc, err := getSubscriptionService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription service unavailable"})
	}

	if err := svc.UpdatePaymentMethod(c.Context(), req.Email, card, req.CVV, req.HolderName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Subscriber not found"})
		}
		var apiErr *payment.APIError
		if errors.As(err, &apiErr) && apiErr.IsDecline() {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "payment_declined", "message": "The new card was rejected"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update payment method"})
	}

	return c.JSON(fiber.Map{"status": "updated"})
}
