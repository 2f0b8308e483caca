package subscription

import (
	"time"

	"github.com/lromand/matchpoint/app/models"
)

// Schedule holds the billing dates computed when an enrollment is created.
type Schedule struct {
	StartDate         time.Time
	NextPaymentDate   time.Time
	EndEngagementDate time.Time
}

// ScheduleFor computes the billing dates for a plan starting on the given day.
// The next payment falls PeriodDays later; the engagement end uses calendar
// month arithmetic, not a day-count approximation.
func ScheduleFor(start time.Time, plan *models.Plan) Schedule {
	day := truncateToDay(start)
	return Schedule{
		StartDate:         day,
		NextPaymentDate:   day.AddDate(0, 0, plan.PeriodDays),
		EndEngagementDate: day.AddDate(0, plan.EngagementMonths, 0),
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
