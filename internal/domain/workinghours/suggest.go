package workinghours

// SuggestFromParent derives a candidate child schedule from a parent's
// hours. Working days copy the parent's exact bounds; days the parent is
// closed are omitted rather than emitted as closed, and breaks are never
// propagated. The function is pure, so unchanged input yields identical
// output.
func SuggestFromParent(parent []ScheduleEntry) []ScheduleEntry {
	var out []ScheduleEntry
	for _, day := range WeekDays {
		for _, p := range parent {
			if p.DayOfWeek != day || !p.IsWorkingDay {
				continue
			}
			opening := *p.OpeningTime
			closing := *p.ClosingTime
			out = append(out, ScheduleEntry{
				DayOfWeek:    day,
				IsWorkingDay: true,
				OpeningTime:  &opening,
				ClosingTime:  &closing,
			})
		}
	}
	return out
}
