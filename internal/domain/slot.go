package domain

// The studio sells fixed half-hour sessions. The universe of labels never
// changes at runtime; break times are never bookable regardless of orders.
var SessionTimes = []string{
	"09:00", "09:30",
	"10:00", "10:30",
	"11:00", "11:30",
	"12:00", "12:30",
	"13:00", "13:30",
	"14:00", "14:30",
	"15:00", "15:30",
	"16:00", "16:30",
}

// Lunch break.
var BreakTimes = []string{"12:00", "12:30"}

func IsSessionTime(t string) bool {
	for _, s := range SessionTimes {
		if s == t {
			return true
		}
	}
	return false
}

func IsBreakTime(t string) bool {
	for _, b := range BreakTimes {
		if b == t {
			return true
		}
	}
	return false
}

// BookableTimes returns the session labels customers may actually reserve,
// in catalog order.
func BookableTimes() []string {
	out := make([]string, 0, len(SessionTimes)-len(BreakTimes))
	for _, s := range SessionTimes {
		if !IsBreakTime(s) {
			out = append(out, s)
		}
	}
	return out
}
