package workinghours

import (
	"github.com/shifa-health/shifa/internal/platform/apperr"
	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// DayError is one validation failure, tied to a day so the caller can
// highlight the offending row.
type DayError struct {
	DayOfWeek      Weekday      `json:"day_of_week"`
	Code           apperr.Code  `json:"code"`
	Message        i18n.Message `json:"message"`
	SuggestedRange *TimeRange   `json:"suggested_range,omitempty"`
}

// ValidationResult aggregates every failure in a submission. Callers
// get the complete list in one round-trip.
type ValidationResult struct {
	IsValid bool       `json:"is_valid"`
	Errors  []DayError `json:"errors"`
}

func dayError(day Weekday, code apperr.Code, ar, en string, args ...any) DayError {
	return DayError{DayOfWeek: day, Code: code, Message: i18n.Msgf(ar, en, args...)}
}

// ValidateEntry checks one day for format and internal consistency.
// All failures for the day are returned, not just the first.
func ValidateEntry(e ScheduleEntry) []DayError {
	if !e.DayOfWeek.Valid() {
		return []DayError{dayError(e.DayOfWeek, apperr.CodeFormat,
			"يوم غير معروف: %s",
			"unknown day of week: %s",
			e.DayOfWeek)}
	}
	if !e.IsWorkingDay {
		// Times on a closed day are tolerated and ignored downstream.
		return nil
	}

	var errs []DayError
	if e.OpeningTime == nil || e.ClosingTime == nil {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeLogic,
			"يوم العمل يتطلب وقت الفتح والإغلاق",
			"a working day requires both opening and closing times"))
		return errs
	}

	openMin, err := minutesOf(*e.OpeningTime)
	if err != nil {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeFormat,
			"صيغة وقت الفتح غير صحيحة: %s",
			"invalid opening time format: %s",
			*e.OpeningTime))
	}
	closeMin, err := minutesOf(*e.ClosingTime)
	if err != nil {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeFormat,
			"صيغة وقت الإغلاق غير صحيحة: %s",
			"invalid closing time format: %s",
			*e.ClosingTime))
	}
	if len(errs) > 0 {
		return errs
	}

	if closeMin <= openMin {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeLogic,
			"وقت الإغلاق يجب أن يكون بعد وقت الفتح",
			"closing time must be after opening time"))
	}

	if e.BreakStartTime == nil && e.BreakEndTime == nil {
		return errs
	}
	if e.BreakStartTime == nil || e.BreakEndTime == nil {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeLogic,
			"فترة الاستراحة تتطلب وقت البداية والنهاية معاً",
			"a break requires both start and end times"))
		return errs
	}

	bStart, err := minutesOf(*e.BreakStartTime)
	if err != nil {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeFormat,
			"صيغة وقت بداية الاستراحة غير صحيحة: %s",
			"invalid break start time format: %s",
			*e.BreakStartTime))
	}
	bEnd, err := minutesOf(*e.BreakEndTime)
	if err != nil {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeFormat,
			"صيغة وقت نهاية الاستراحة غير صحيحة: %s",
			"invalid break end time format: %s",
			*e.BreakEndTime))
	}
	if len(errs) > 0 {
		return errs
	}

	if bEnd <= bStart {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeLogic,
			"نهاية الاستراحة يجب أن تكون بعد بدايتها",
			"break end must be after break start"))
	}
	if bStart < openMin || bEnd > closeMin {
		errs = append(errs, dayError(e.DayOfWeek, apperr.CodeLogic,
			"فترة الاستراحة يجب أن تقع ضمن ساعات العمل",
			"break must fall within working hours"))
	}
	return errs
}

// ValidateSchedule checks a full weekly submission: every day present
// exactly once, and every entry internally consistent.
func ValidateSchedule(schedule []ScheduleEntry) ValidationResult {
	var errs []DayError
	seen := map[Weekday]bool{}

	for _, e := range schedule {
		if e.DayOfWeek.Valid() && seen[e.DayOfWeek] {
			errs = append(errs, dayError(e.DayOfWeek, apperr.CodeLogic,
				"اليوم %s مكرر في الجدول",
				"day %s appears more than once",
				e.DayOfWeek))
			continue
		}
		seen[e.DayOfWeek] = true
		errs = append(errs, ValidateEntry(e)...)
	}

	for _, day := range WeekDays {
		if !seen[day] {
			errs = append(errs, dayError(day, apperr.CodeLogic,
				"اليوم %s مفقود من الجدول",
				"day %s is missing from the schedule",
				day))
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
