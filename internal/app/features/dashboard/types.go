// internal/app/features/dashboard/types.go
package dashboard

import (
	"fmt"

	"github.com/dalemusser/stratareview/internal/app/system/analytics"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
)

// DashboardVM is the view model for the dashboard page.
type DashboardVM struct {
	viewdata.BaseVM
	Dashboard   analytics.Dashboard
	Windows     []windowOption
	WindowLabel string

	TotalBalance string
	Growth       []barRow
	Activity     []barRow
	TopVideos    []videoRow
	Ratings      []barRow
	Statuses     []barRow
	StatusNote   string
}

type windowOption struct {
	Value    string
	Label    string
	Selected bool
}

// barRow is one row of a horizontal bar chart; Width is 0..100.
type barRow struct {
	Label string
	Value string
	Width int
}

type videoRow struct {
	Label     string
	Title     string
	Reviews   int
	AvgRating string
	Width     int
}

func newDashboardVM(base viewdata.BaseVM, d analytics.Dashboard) DashboardVM {
	vm := DashboardVM{
		BaseVM:       base,
		Dashboard:    d,
		WindowLabel:  d.Window.Label(),
		TotalBalance: fmt.Sprintf("%.2f", d.KPI.TotalBalance),
	}
	for _, w := range analytics.AllWindows() {
		vm.Windows = append(vm.Windows, windowOption{Value: string(w), Label: w.Label(), Selected: w == d.Window})
	}

	growthMax := 0
	for _, p := range d.UserGrowth {
		growthMax = max(growthMax, p.CumulativeUsers)
	}
	for _, p := range d.UserGrowth {
		vm.Growth = append(vm.Growth, barRow{
			Label: p.Label,
			Value: fmt.Sprintf("%d (+%d)", p.CumulativeUsers, p.NewUsers),
			Width: width(p.CumulativeUsers, growthMax),
		})
	}

	activityMax := 0
	for _, p := range d.ReviewActivity {
		activityMax = max(activityMax, p.ReviewCount)
	}
	for _, p := range d.ReviewActivity {
		vm.Activity = append(vm.Activity, barRow{Label: p.Label, Value: fmt.Sprint(p.ReviewCount), Width: width(p.ReviewCount, activityMax)})
	}

	videoMax := 0
	if len(d.TopVideos) > 0 {
		videoMax = d.TopVideos[0].ReviewCount
	}
	for _, v := range d.TopVideos {
		vm.TopVideos = append(vm.TopVideos, videoRow{
			Label:     v.Label,
			Title:     v.Title,
			Reviews:   v.ReviewCount,
			AvgRating: fmt.Sprintf("%.1f", v.AvgRating),
			Width:     width(v.ReviewCount, videoMax),
		})
	}

	ratingMax := 0
	for _, b := range d.RatingDistribution {
		ratingMax = max(ratingMax, b.Count)
	}
	for i := len(d.RatingDistribution) - 1; i >= 0; i-- {
		b := d.RatingDistribution[i]
		vm.Ratings = append(vm.Ratings, barRow{Label: fmt.Sprintf("%d★", b.Rating), Value: fmt.Sprint(b.Count), Width: width(b.Count, ratingMax)})
	}

	total := int(d.Status.Total())
	for _, s := range []struct {
		label string
		n     int64
	}{{"Active", d.Status.Active}, {"Blocked", d.Status.Blocked}, {"Admin", d.Status.Admin}} {
		vm.Statuses = append(vm.Statuses, barRow{Label: s.label, Value: fmt.Sprint(s.n), Width: width(int(s.n), total)})
	}
	switch n := d.Status.BlockedAdmins; {
	case n == 1:
		vm.StatusNote = "1 blocked admin is counted under Admin."
	case n > 1:
		vm.StatusNote = fmt.Sprintf("%d blocked admins are counted under Admin.", n)
	}
	return vm
}

func width(n, of int) int {
	if of <= 0 || n <= 0 {
		return 0
	}
	return n * 100 / of
}
