package markethours

import (
	"fmt"
	"time"
)

// Default trading window: 09:00–21:00 UTC, every day.
const (
	DefaultStartHour = 9
	DefaultEndHour   = 21
)

// Window is a daily trading window [StartHour, EndHour) in Location.
// Only the hour is compared, so 21:59 is outside a window ending at 21.
type Window struct {
	StartHour    int
	EndHour      int
	Location     *time.Location
	SkipWeekends bool // treat Saturday and Sunday as closed
}

// DefaultWindow returns 09–21 UTC with weekends open.
func DefaultWindow() Window {
	return Window{StartHour: DefaultStartHour, EndHour: DefaultEndHour, Location: time.UTC}
}

// Validate checks the hour bounds.
func (w Window) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("markethours: start hour %d out of range [0,23]", w.StartHour)
	}
	if w.EndHour < 1 || w.EndHour > 24 {
		return fmt.Errorf("markethours: end hour %d out of range [1,24]", w.EndHour)
	}
	if w.StartHour >= w.EndHour {
		return fmt.Errorf("markethours: start hour %d must be before end hour %d", w.StartHour, w.EndHour)
	}
	return nil
}

func (w Window) loc() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// IsTradingDay reports whether t falls on a day the window opens.
func (w Window) IsTradingDay(t time.Time) bool {
	if !w.SkipWeekends {
		return true
	}
	wd := t.In(w.loc()).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Contains returns true if t falls within the trading window.
func (w Window) Contains(t time.Time) bool {
	local := t.In(w.loc())
	if !w.IsTradingDay(local) {
		return false
	}
	h := local.Hour()
	return h >= w.StartHour && h < w.EndHour
}

// NextOpen returns the start of the window containing t, or of the next
// window if t is outside one.
func (w Window) NextOpen(t time.Time) time.Time {
	local := t.In(w.loc())
	todayOpen := time.Date(local.Year(), local.Month(), local.Day(), w.StartHour, 0, 0, 0, w.loc())
	if !local.After(todayOpen) && w.IsTradingDay(local) {
		return todayOpen
	}
	if w.Contains(local) {
		return todayOpen
	}

	d := todayOpen.AddDate(0, 0, 1)
	for i := 0; i < 7; i++ {
		if w.IsTradingDay(d) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// TodayClose returns the end of today's window.
func (w Window) TodayClose(t time.Time) time.Time {
	local := t.In(w.loc())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.loc()).
		Add(time.Duration(w.EndHour) * time.Hour)
}

// StatusString returns a human-readable window status.
func (w Window) StatusString(t time.Time) string {
	if w.Contains(t) {
		return fmt.Sprintf("Window open, closes in %s", fmtDur(w.TodayClose(t).Sub(t)))
	}
	next := w.NextOpen(t)
	local := next.In(w.loc())
	return fmt.Sprintf("Window closed, opens %s %s (%s)",
		local.Weekday().String()[:3], local.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
