package slots

import "time"

// Conflicts reports whether a candidate range on date collides with any of
// the claimed tokens in existing
func Conflicts(date time.Time, w Window, existing []Token) bool {
	_, found := FirstConflict(date, w, existing)
	return found
}

// FirstConflict returns the first claimed token on the same date whose range
// is identical to w or overlaps it. Touching ranges do not overlap.
// Unclaimed tokens are ignored.
func FirstConflict(date time.Time, w Window, existing []Token) (Token, bool) {
	day := CivilDate(date)
	display := w.Display()

	for _, ex := range existing {
		if !ex.Claimed() || !ex.Date.Equal(day) {
			continue
		}
		if ex.Window.Display() == display {
			return ex, true
		}
		if w.Start.Military() < ex.Window.End.Military() && ex.Window.Start.Military() < w.End.Military() {
			return ex, true
		}
	}
	return Token{}, false
}
