// internal/app/system/analytics/window.go
package analytics

import "strings"

// Window is a trailing time range selectable on the dashboard.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
	WindowAll Window = "all"
)

// DefaultWindow is used when the requested window is missing or unknown.
const DefaultWindow = Window30d

// MaxActivityDays caps the review activity series regardless of window.
const MaxActivityDays = 30

// AllWindows returns the selectable windows in display order.
func AllWindows() []Window {
	return []Window{Window7d, Window30d, Window90d, WindowAll}
}

// ParseWindow maps a query value to a Window, falling back to DefaultWindow.
func ParseWindow(s string) Window {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case Window7d, Window30d, Window90d, WindowAll:
		return w
	default:
		return DefaultWindow
	}
}

// Days returns the number of days the window spans. "all" is a year.
func (w Window) Days() int {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	case Window90d:
		return 90
	case WindowAll:
		return 365
	default:
		return DefaultWindow.Days()
	}
}

// Label returns a short human label for the window.
func (w Window) Label() string {
	switch w {
	case Window7d:
		return "Last 7 days"
	case Window30d:
		return "Last 30 days"
	case Window90d:
		return "Last 90 days"
	case WindowAll:
		return "Last year"
	default:
		return DefaultWindow.Label()
	}
}
