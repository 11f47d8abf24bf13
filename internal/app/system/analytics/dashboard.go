// internal/app/system/analytics/dashboard.go
package analytics

import "time"

// DashboardInput is everything the dashboard aggregates, already fetched.
//
// Users and ActivityReviews only need to cover the selected window; Reviews
// and Videos feed the all-time charts (top videos, rating distribution).
type DashboardInput struct {
	Counts          Counts
	Balances        []*float64
	Users           []UserRecord
	ActivityReviews []ReviewRecord
	Reviews         []ReviewRecord
	Videos          []VideoRecord
}

// Dashboard is the complete set of shapes rendered on the dashboard page
// and returned by its JSON endpoint.
type Dashboard struct {
	Window      Window    `json:"window"`
	Days        int       `json:"days"`
	GeneratedAt time.Time `json:"generated_at"`

	KPI                KPISnapshot        `json:"kpi"`
	Status             StatusBreakdown    `json:"status"`
	ListCompletion     ListCompletion     `json:"list_completion"`
	UserGrowth         []GrowthPoint      `json:"user_growth"`
	ReviewActivity     []ActivityPoint    `json:"review_activity"`
	TopVideos          []VideoPerformance `json:"top_videos"`
	RatingDistribution [5]RatingBucket    `json:"rating_distribution"`
}

// BuildDashboard runs every aggregation for the given window.
func BuildDashboard(in DashboardInput, w Window, now time.Time) Dashboard {
	days := w.Days()
	kpi := ComputeKPISnapshot(in.Counts, in.Balances)

	return Dashboard{
		Window:             w,
		Days:               days,
		GeneratedAt:        now,
		KPI:                kpi,
		Status:             ComputeStatusBreakdown(in.Counts),
		ListCompletion:     ComputeListCompletionRate(kpi.TotalLists, kpi.CompletedLists),
		UserGrowth:         ComputeUserGrowth(in.Users, days, now),
		ReviewActivity:     ComputeReviewActivity(in.ActivityReviews, days, now),
		TopVideos:          ComputeVideoPerformance(in.Reviews, in.Videos),
		RatingDistribution: ComputeRatingDistribution(in.Reviews),
	}
}
