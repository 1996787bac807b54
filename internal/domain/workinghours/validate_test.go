package workinghours

import (
	"testing"

	"github.com/shifa-health/shifa/internal/platform/apperr"
)

func strPtr(s string) *string { return &s }

func workingDay(day Weekday, open, closeAt string) ScheduleEntry {
	return ScheduleEntry{
		DayOfWeek:    day,
		IsWorkingDay: true,
		OpeningTime:  strPtr(open),
		ClosingTime:  strPtr(closeAt),
	}
}

func closedDay(day Weekday) ScheduleEntry {
	return ScheduleEntry{DayOfWeek: day, IsWorkingDay: false}
}

// fullWeek builds a valid seven-day schedule: open every day except
// Friday with the given hours.
func fullWeek(open, closeAt string) []ScheduleEntry {
	var out []ScheduleEntry
	for _, day := range WeekDays {
		if day == Friday {
			out = append(out, closedDay(day))
			continue
		}
		out = append(out, workingDay(day, open, closeAt))
	}
	return out
}

func TestValidateEntry_Valid(t *testing.T) {
	e := workingDay(Monday, "08:00", "17:00")
	if errs := ValidateEntry(e); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	e.BreakStartTime = strPtr("12:00")
	e.BreakEndTime = strPtr("13:00")
	if errs := ValidateEntry(e); len(errs) != 0 {
		t.Fatalf("expected no errors with break, got %v", errs)
	}
}

func TestValidateEntry_ClosedDayIgnoresTimes(t *testing.T) {
	e := closedDay(Friday)
	e.OpeningTime = strPtr("08:00")
	if errs := ValidateEntry(e); len(errs) != 0 {
		t.Fatalf("times on a closed day should be tolerated, got %v", errs)
	}
}

func TestValidateEntry_UnknownDay(t *testing.T) {
	e := workingDay(Weekday("payday"), "08:00", "17:00")
	errs := ValidateEntry(e)
	if len(errs) != 1 || errs[0].Code != apperr.CodeFormat {
		t.Fatalf("expected one format error, got %v", errs)
	}
}

func TestValidateEntry_BadTimeFormats(t *testing.T) {
	for _, bad := range []string{"8:00", "24:00", "12:60", "12.30", "noon", "12:300"} {
		e := workingDay(Monday, bad, "17:00")
		errs := ValidateEntry(e)
		if len(errs) == 0 {
			t.Fatalf("expected error for opening time %q", bad)
		}
		if errs[0].Code != apperr.CodeFormat {
			t.Fatalf("expected format_error for %q, got %s", bad, errs[0].Code)
		}
	}
}

func TestValidateEntry_ClosingBeforeOpening(t *testing.T) {
	for _, tc := range [][2]string{{"17:00", "08:00"}, {"09:00", "09:00"}} {
		errs := ValidateEntry(workingDay(Tuesday, tc[0], tc[1]))
		if len(errs) != 1 || errs[0].Code != apperr.CodeLogic {
			t.Fatalf("expected one logic error for %v, got %v", tc, errs)
		}
	}
}

func TestValidateEntry_MissingTimes(t *testing.T) {
	e := ScheduleEntry{DayOfWeek: Monday, IsWorkingDay: true}
	errs := ValidateEntry(e)
	if len(errs) != 1 || errs[0].Code != apperr.CodeLogic {
		t.Fatalf("expected one logic error, got %v", errs)
	}
}

func TestValidateEntry_BreakRules(t *testing.T) {
	cases := []struct {
		name       string
		start, end *string
		wantErr    bool
	}{
		{"valid break", strPtr("12:00"), strPtr("13:00"), false},
		{"break at bounds", strPtr("08:00"), strPtr("17:00"), false},
		{"half a break", strPtr("12:00"), nil, true},
		{"inverted break", strPtr("13:00"), strPtr("12:00"), true},
		{"break before opening", strPtr("07:00"), strPtr("09:00"), true},
		{"break past closing", strPtr("16:00"), strPtr("18:00"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := workingDay(Wednesday, "08:00", "17:00")
			e.BreakStartTime = tc.start
			e.BreakEndTime = tc.end
			errs := ValidateEntry(e)
			if tc.wantErr && len(errs) == 0 {
				t.Fatal("expected error, got none")
			}
			if !tc.wantErr && len(errs) != 0 {
				t.Fatalf("expected no errors, got %v", errs)
			}
		})
	}
}

func TestValidateSchedule_FullWeek(t *testing.T) {
	result := ValidateSchedule(fullWeek("08:00", "17:00"))
	if !result.IsValid {
		t.Fatalf("expected valid, got %v", result.Errors)
	}
}

func TestValidateSchedule_MissingDay(t *testing.T) {
	week := fullWeek("08:00", "17:00")
	result := ValidateSchedule(week[:6])
	if result.IsValid {
		t.Fatal("expected invalid")
	}
	if len(result.Errors) != 1 || result.Errors[0].DayOfWeek != Friday {
		t.Fatalf("expected one missing-Friday error, got %v", result.Errors)
	}
}

func TestValidateSchedule_DuplicateDay(t *testing.T) {
	week := fullWeek("08:00", "17:00")
	week = append(week, workingDay(Monday, "09:00", "12:00"))
	result := ValidateSchedule(week)
	if result.IsValid {
		t.Fatal("expected invalid")
	}
}

func TestValidateSchedule_AggregatesAllDays(t *testing.T) {
	week := []ScheduleEntry{
		workingDay(Saturday, "17:00", "08:00"),
		workingDay(Sunday, "9:00", "17:00"),
		closedDay(Monday),
		closedDay(Tuesday),
		closedDay(Wednesday),
		closedDay(Thursday),
		closedDay(Friday),
	}
	result := ValidateSchedule(week)
	if result.IsValid {
		t.Fatal("expected invalid")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected both bad days reported, got %v", result.Errors)
	}
}

func TestMessagesAreBilingual(t *testing.T) {
	errs := ValidateEntry(workingDay(Monday, "17:00", "08:00"))
	if len(errs) == 0 {
		t.Fatal("expected error")
	}
	msg := errs[0].Message
	if msg.Ar == "" || msg.En == "" {
		t.Fatalf("expected both languages populated, got %+v", msg)
	}
}
