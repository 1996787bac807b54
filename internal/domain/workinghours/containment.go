package workinghours

import (
	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// CheckContainment compares a child's weekly schedule with its parent's.
// An empty parent schedule imposes no constraint. Both schedules are
// assumed already format-valid.
func CheckContainment(child, parent []ScheduleEntry) ValidationResult {
	if len(parent) == 0 {
		return ValidationResult{IsValid: true}
	}

	parentByDay := map[Weekday]ScheduleEntry{}
	for _, p := range parent {
		parentByDay[p.DayOfWeek] = p
	}

	var errs []DayError
	for _, c := range child {
		p, ok := parentByDay[c.DayOfWeek]
		if !ok {
			continue
		}
		if !c.IsWorkingDay {
			// A child may close on a day its parent is open.
			continue
		}
		if !p.IsWorkingDay {
			errs = append(errs, dayError(c.DayOfWeek, apperr.CodeContainment,
				"الكيان الأعلى مغلق يوم %s",
				"the parent entity is closed on %s",
				c.DayOfWeek))
			continue
		}

		pOpen := mustMinutes(*p.OpeningTime)
		pClose := mustMinutes(*p.ClosingTime)
		cOpen := mustMinutes(*c.OpeningTime)
		cClose := mustMinutes(*c.ClosingTime)

		if cOpen < pOpen || cClose > pClose {
			e := DayError{
				DayOfWeek: c.DayOfWeek,
				Code:      apperr.CodeContainment,
				Message: i18n.Msgf(
					"ساعات العمل يوم %s يجب أن تقع ضمن ساعات الكيان الأعلى (%s - %s)",
					"working hours on %s must fall within the parent's hours (%s - %s)",
					c.DayOfWeek, *p.OpeningTime, *p.ClosingTime),
				SuggestedRange: &TimeRange{
					OpeningTime: *p.OpeningTime,
					ClosingTime: *p.ClosingTime,
				},
			}
			errs = append(errs, e)
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
