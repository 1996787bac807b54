package workinghours

import (
	"github.com/shifa-health/shifa/internal/domain/appointment"
	"github.com/shifa-health/shifa/internal/platform/i18n"
)

// ConflictReason classifies why an appointment no longer fits.
type ConflictReason string

const (
	ReasonClosedDay    ConflictReason = "closed_day"
	ReasonOutsideHours ConflictReason = "outside_hours"
	ReasonInsideBreak  ConflictReason = "inside_break"
)

// Conflict is one appointment that does not fit the proposed schedule.
type Conflict struct {
	Appointment *appointment.Appointment `json:"appointment"`
	Reason      ConflictReason           `json:"reason"`
	Message     i18n.Message             `json:"message"`
}

// DetectConflicts checks each appointment against the proposed weekly
// schedule. It reads only its inputs and mutates nothing, so it serves
// both the pre-flight check and the reconciliation pipeline. Appointments
// with unparseable times are treated as outside hours rather than
// skipped. The schedule is assumed already format-valid.
func DetectConflicts(schedule []ScheduleEntry, appts []*appointment.Appointment) []Conflict {
	byDay := map[Weekday]ScheduleEntry{}
	for _, e := range schedule {
		byDay[e.DayOfWeek] = e
	}

	var conflicts []Conflict
	for _, a := range appts {
		day := WeekdayOfTime(a.AppointmentDate)
		entry, ok := byDay[day]
		if !ok || !entry.IsWorkingDay {
			conflicts = append(conflicts, Conflict{
				Appointment: a,
				Reason:      ReasonClosedDay,
				Message: i18n.Msgf(
					"يوم %s لم يعد يوم عمل",
					"%s is no longer a working day",
					day),
			})
			continue
		}

		at, err := minutesOf(a.AppointmentTime)
		if err != nil {
			conflicts = append(conflicts, outsideHours(a, entry))
			continue
		}
		if at < mustMinutes(*entry.OpeningTime) || at >= mustMinutes(*entry.ClosingTime) {
			conflicts = append(conflicts, outsideHours(a, entry))
			continue
		}
		if entry.BreakStartTime != nil && entry.BreakEndTime != nil &&
			at >= mustMinutes(*entry.BreakStartTime) && at < mustMinutes(*entry.BreakEndTime) {
			conflicts = append(conflicts, Conflict{
				Appointment: a,
				Reason:      ReasonInsideBreak,
				Message: i18n.Msgf(
					"الموعد يقع ضمن فترة الاستراحة (%s - %s)",
					"the appointment falls inside the break (%s - %s)",
					*entry.BreakStartTime, *entry.BreakEndTime),
			})
		}
	}
	return conflicts
}

func outsideHours(a *appointment.Appointment, entry ScheduleEntry) Conflict {
	return Conflict{
		Appointment: a,
		Reason:      ReasonOutsideHours,
		Message: i18n.Msgf(
			"الموعد خارج ساعات العمل الجديدة (%s - %s)",
			"the appointment is outside the new working hours (%s - %s)",
			*entry.OpeningTime, *entry.ClosingTime),
	}
}
