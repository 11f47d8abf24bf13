// internal/app/system/analytics/analytics.go

// Package analytics turns raw record sets into the shapes the dashboard
// renders: KPI counters, daily time series, top videos and distributions.
//
// Every function here is pure. Inputs are never mutated and outputs are
// freshly allocated, so callers may run them concurrently. Malformed records
// (zero timestamps, missing ratings, empty ids) are skipped rather than
// reported; nothing in this package returns an error.
package analytics

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/stratareview/internal/domain/models"
)

const (
	// TopVideosLimit is how many videos ComputeVideoPerformance keeps.
	TopVideosLimit = 10
	// VideoLabelMax is the number of title characters kept in a chart label.
	VideoLabelMax = 30

	dateLayout  = "2006-01-02"
	labelLayout = "02/01"
)

// UserRecord is the slice of a profile the aggregations need.
type UserRecord struct {
	ID        string
	CreatedAt time.Time
	Balance   *float64
	IsAdmin   bool
	IsBlocked bool
}

// VideoRecord is used to label per-video results.
type VideoRecord struct {
	ID    string
	Title string
}

// ReviewRecord is the slice of a review the aggregations need.
type ReviewRecord struct {
	UserID        string
	VideoID       string
	Rating        *int
	EarningAmount float64
	CompletedAt   *time.Time
}

// Counts are the raw counters the store layer gathers for the KPI snapshot.
type Counts struct {
	TotalUsers     int64
	TotalVideos    int64
	TotalReviews   int64
	ReviewsToday   int64
	ActiveUsers    int64
	BlockedUsers   int64
	AdminUsers     int64
	ActiveVideos   int64
	TotalLists     int64
	CompletedLists int64

	// BlockedNonAdmin excludes blocked admins, which the pie counts as
	// admins.
	BlockedNonAdmin int64
}

// KPISnapshot is the fixed set of counters shown at the top of the dashboard.
type KPISnapshot struct {
	TotalUsers     int64   `json:"total_users"`
	TotalVideos    int64   `json:"total_videos"`
	TotalReviews   int64   `json:"total_reviews"`
	ReviewsToday   int64   `json:"reviews_today"`
	ActiveUsers    int64   `json:"active_users"`
	BlockedUsers   int64   `json:"blocked_users"`
	AdminUsers     int64   `json:"admin_users"`
	ActiveVideos   int64   `json:"active_videos"`
	TotalLists     int64   `json:"total_lists"`
	CompletedLists int64   `json:"completed_lists"`
	TotalBalance   float64 `json:"total_balance"`
}

// GrowthPoint is one day of the user growth series.
type GrowthPoint struct {
	Date            string `json:"date"`  // YYYY-MM-DD
	Label           string `json:"label"` // DD/MM
	CumulativeUsers int    `json:"cumulative_users"`
	NewUsers        int    `json:"new_users"`
}

// ActivityPoint is one day of the review activity series.
type ActivityPoint struct {
	Date        string `json:"date"`
	Label       string `json:"label"`
	ReviewCount int    `json:"review_count"`
}

// VideoPerformance is one row of the top-videos chart.
type VideoPerformance struct {
	VideoID     string  `json:"video_id"`
	Title       string  `json:"title"`
	Label       string  `json:"label"`
	ReviewCount int     `json:"review_count"`
	AvgRating   float64 `json:"avg_rating"`
}

// RatingBucket counts reviews that gave a particular star rating.
type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// ListCompletion splits daily lists into completed and pending.
type ListCompletion struct {
	Total     int64   `json:"total"`
	Completed int64   `json:"completed"`
	Pending   int64   `json:"pending"`
	Percent   float64 `json:"percent"` // 0..100, one decimal
}

// StatusBreakdown counts users by their listed status. BlockedAdmins are
// already inside Admin and are reported so the pie can be reconciled with
// the blocked users KPI.
type StatusBreakdown struct {
	Active        int64 `json:"active"`
	Admin         int64 `json:"admin"`
	Blocked       int64 `json:"blocked"`
	BlockedAdmins int64 `json:"blocked_admins"`
}

// ComputeKPISnapshot copies the counters through, clamping negatives to zero,
// and sums balances. A nil balance counts as zero.
func ComputeKPISnapshot(counts Counts, balances []*float64) KPISnapshot {
	var total float64
	for _, b := range balances {
		if b == nil || math.IsNaN(*b) || math.IsInf(*b, 0) {
			continue
		}
		total += *b
	}

	return KPISnapshot{
		TotalUsers:     nonNegative(counts.TotalUsers),
		TotalVideos:    nonNegative(counts.TotalVideos),
		TotalReviews:   nonNegative(counts.TotalReviews),
		ReviewsToday:   nonNegative(counts.ReviewsToday),
		ActiveUsers:    nonNegative(counts.ActiveUsers),
		BlockedUsers:   nonNegative(counts.BlockedUsers),
		AdminUsers:     nonNegative(counts.AdminUsers),
		ActiveVideos:   nonNegative(counts.ActiveVideos),
		TotalLists:     nonNegative(counts.TotalLists),
		CompletedLists: nonNegative(counts.CompletedLists),
		TotalBalance:   total,
	}
}

// ComputeUserGrowth buckets sign-ups created within the last windowDays by
// calendar day (in now's location) and walks the window oldest first.
// The result always has exactly windowDays points; days without sign-ups
// repeat the previous cumulative total.
func ComputeUserGrowth(users []UserRecord, windowDays int, now time.Time) []GrowthPoint {
	if windowDays <= 0 {
		return []GrowthPoint{}
	}

	start := now.AddDate(0, 0, -windowDays)
	buckets := make(map[string]int)
	for _, u := range users {
		if u.CreatedAt.IsZero() || u.CreatedAt.Before(start) {
			continue
		}
		buckets[dayKey(u.CreatedAt, now.Location())]++
	}

	out := make([]GrowthPoint, 0, windowDays)
	cumulative := 0
	for i := windowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format(dateLayout)
		n := buckets[key]
		cumulative += n
		out = append(out, GrowthPoint{
			Date:            key,
			Label:           day.Format(labelLayout),
			CumulativeUsers: cumulative,
			NewUsers:        n,
		})
	}
	return out
}

// ComputeReviewActivity counts completed reviews per day. Reviews are
// filtered over the full window but the series is capped at MaxActivityDays.
func ComputeReviewActivity(reviews []ReviewRecord, windowDays int, now time.Time) []ActivityPoint {
	if windowDays <= 0 {
		return []ActivityPoint{}
	}

	start := now.AddDate(0, 0, -windowDays)
	buckets := make(map[string]int)
	for _, rv := range reviews {
		if rv.CompletedAt == nil || rv.CompletedAt.IsZero() || rv.CompletedAt.Before(start) {
			continue
		}
		buckets[dayKey(*rv.CompletedAt, now.Location())]++
	}

	n := windowDays
	if n > MaxActivityDays {
		n = MaxActivityDays
	}

	out := make([]ActivityPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format(dateLayout)
		out = append(out, ActivityPoint{
			Date:        key,
			Label:       day.Format(labelLayout),
			ReviewCount: buckets[key],
		})
	}
	return out
}

// ComputeVideoPerformance groups rated reviews by video, keeps only videos
// present in videos (inner join), and returns the TopVideosLimit most
// reviewed. Ties keep the order of the videos slice.
func ComputeVideoPerformance(reviews []ReviewRecord, videos []VideoRecord) []VideoPerformance {
	type tally struct {
		count int
		sum   int
	}

	stats := make(map[string]*tally)
	for _, rv := range reviews {
		if rv.VideoID == "" || rv.Rating == nil {
			continue
		}
		t, ok := stats[rv.VideoID]
		if !ok {
			t = &tally{}
			stats[rv.VideoID] = t
		}
		t.count++
		t.sum += *rv.Rating
	}

	out := make([]VideoPerformance, 0, len(stats))
	seen := make(map[string]bool, len(videos))
	for _, v := range videos {
		t, ok := stats[v.ID]
		if !ok || seen[v.ID] {
			continue
		}
		seen[v.ID] = true

		var avg float64
		if t.count > 0 {
			avg = float64(t.sum) / float64(t.count)
		}
		out = append(out, VideoPerformance{
			VideoID:     v.ID,
			Title:       v.Title,
			Label:       VideoLabel(v.Title),
			ReviewCount: t.count,
			AvgRating:   avg,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewCount > out[j].ReviewCount
	})
	if len(out) > TopVideosLimit {
		out = out[:TopVideosLimit]
	}
	return out
}

// VideoLabel shortens a title for chart axes: the first VideoLabelMax
// characters followed by an ellipsis.
func VideoLabel(title string) string {
	if utf8.RuneCountInString(title) > VideoLabelMax {
		title = string([]rune(title)[:VideoLabelMax])
	}
	return title + "..."
}

// ComputeRatingDistribution tallies ratings into five buckets (1..5).
// Missing ratings and ratings outside 1..5 are ignored.
func ComputeRatingDistribution(reviews []ReviewRecord) [5]RatingBucket {
	var out [5]RatingBucket
	for i := range out {
		out[i].Rating = i + 1
	}
	for _, rv := range reviews {
		if rv.Rating == nil {
			continue
		}
		r := *rv.Rating
		if r < models.MinRating || r > models.MaxRating {
			continue
		}
		out[r-1].Count++
	}
	return out
}

// ComputeListCompletionRate splits total into completed and pending.
// Percent is 0 when there are no lists.
func ComputeListCompletionRate(total, completed int64) ListCompletion {
	total = nonNegative(total)
	completed = nonNegative(completed)

	lc := ListCompletion{
		Total:     total,
		Completed: completed,
		Pending:   nonNegative(total - completed),
	}
	if total > 0 {
		lc.Percent = roundTo(float64(completed)/float64(total)*100, 1)
	}
	return lc
}

// ComputeStatusBreakdown splits users for the status pie. Each user is
// counted once: admin first, then blocked, then active.
func ComputeStatusBreakdown(c Counts) StatusBreakdown {
	return StatusBreakdown{
		Active:        c.ActiveUsers,
		Admin:         c.AdminUsers,
		Blocked:       c.BlockedNonAdmin,
		BlockedAdmins: nonNegative(c.BlockedUsers - c.BlockedNonAdmin),
	}
}

// Total returns the number of users in the breakdown. BlockedAdmins are not
// added again.
func (sb StatusBreakdown) Total() int64 {
	return sb.Active + sb.Admin + sb.Blocked
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
