package analytics

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func intPtr(n int) *int              { return &n }
func floatPtr(f float64) *float64    { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input    string
		want     Window
		wantDays int
	}{
		{"7d", Window7d, 7},
		{"30d", Window30d, 30},
		{"90d", Window90d, 90},
		{"all", WindowAll, 365},
		{"ALL", WindowAll, 365},
		{" 7d ", Window7d, 7},
		{"", Window30d, 30},
		{"14d", Window30d, 30},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseWindow(tt.input)
			if got != tt.want {
				t.Errorf("ParseWindow(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if got.Days() != tt.wantDays {
				t.Errorf("ParseWindow(%q).Days() = %d, want %d", tt.input, got.Days(), tt.wantDays)
			}
		})
	}
}

func TestComputeKPISnapshot(t *testing.T) {
	counts := Counts{
		TotalUsers:     10,
		TotalVideos:    4,
		TotalReviews:   25,
		ReviewsToday:   3,
		ActiveUsers:    7,
		BlockedUsers:   2,
		AdminUsers:     1,
		ActiveVideos:   3,
		TotalLists:     12,
		CompletedLists: -1,
	}
	balances := []*float64{floatPtr(10.5), nil, floatPtr(4.5), floatPtr(math.NaN())}

	got := ComputeKPISnapshot(counts, balances)

	if got.TotalBalance != 15 {
		t.Errorf("TotalBalance = %v, want 15", got.TotalBalance)
	}
	if got.TotalUsers != 10 || got.ActiveUsers != 7 || got.TotalLists != 12 {
		t.Errorf("counters not passed through: %+v", got)
	}
	if got.CompletedLists != 0 {
		t.Errorf("CompletedLists = %d, want 0 for negative input", got.CompletedLists)
	}
}

func TestComputeKPISnapshot_Empty(t *testing.T) {
	got := ComputeKPISnapshot(Counts{}, nil)
	if !reflect.DeepEqual(got, KPISnapshot{}) {
		t.Errorf("ComputeKPISnapshot(empty) = %+v, want zero value", got)
	}
}

func TestComputeUserGrowth(t *testing.T) {
	users := []UserRecord{
		{ID: "u1", CreatedAt: testNow},
		{ID: "u2", CreatedAt: daysAgo(1)},
		{ID: "u3", CreatedAt: daysAgo(1).Add(-time.Hour)},
		{ID: "u4", CreatedAt: daysAgo(10)}, // outside window
		{ID: "u5"},                         // no timestamp
	}

	got := ComputeUserGrowth(users, 7, testNow)

	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[0].Date != "2026-03-09" {
		t.Errorf("first date = %q, want 2026-03-09", got[0].Date)
	}
	last := got[6]
	if last.Date != "2026-03-15" || last.Label != "15/03" {
		t.Errorf("last point = %+v, want date 2026-03-15 label 15/03", last)
	}

	wantNew := []int{0, 0, 0, 0, 0, 2, 1}
	wantCum := []int{0, 0, 0, 0, 0, 2, 3}
	for i, p := range got {
		if p.NewUsers != wantNew[i] {
			t.Errorf("point %d NewUsers = %d, want %d", i, p.NewUsers, wantNew[i])
		}
		if p.CumulativeUsers != wantCum[i] {
			t.Errorf("point %d CumulativeUsers = %d, want %d", i, p.CumulativeUsers, wantCum[i])
		}
	}
}

func TestComputeUserGrowth_LengthAndMonotonic(t *testing.T) {
	var users []UserRecord
	for i := 0; i < 400; i += 3 {
		users = append(users, UserRecord{ID: fmt.Sprintf("u%d", i), CreatedAt: daysAgo(i)})
	}

	for _, d := range []int{1, 7, 30, 90, 365} {
		t.Run(fmt.Sprintf("%dd", d), func(t *testing.T) {
			got := ComputeUserGrowth(users, d, testNow)
			if len(got) != d {
				t.Fatalf("len = %d, want %d", len(got), d)
			}
			for i := 1; i < len(got); i++ {
				if got[i].CumulativeUsers < got[i-1].CumulativeUsers {
					t.Fatalf("cumulative decreased at %d: %d -> %d", i, got[i-1].CumulativeUsers, got[i].CumulativeUsers)
				}
				if got[i].NewUsers < 0 {
					t.Fatalf("negative NewUsers at %d", i)
				}
			}
		})
	}
}

func TestComputeUserGrowth_NonPositiveWindow(t *testing.T) {
	for _, d := range []int{0, -5} {
		got := ComputeUserGrowth([]UserRecord{{CreatedAt: testNow}}, d, testNow)
		if got == nil || len(got) != 0 {
			t.Errorf("ComputeUserGrowth(window=%d) = %v, want empty slice", d, got)
		}
	}
}

func TestComputeReviewActivity(t *testing.T) {
	reviews := []ReviewRecord{
		{VideoID: "a", CompletedAt: timePtr(testNow)},
		{VideoID: "a", CompletedAt: timePtr(testNow.Add(-time.Hour))},
		{VideoID: "b", CompletedAt: timePtr(daysAgo(2))},
		{VideoID: "b"}, // never completed
	}

	got := ComputeReviewActivity(reviews, 7, testNow)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[6].ReviewCount != 2 {
		t.Errorf("today = %d, want 2", got[6].ReviewCount)
	}
	if got[4].ReviewCount != 1 {
		t.Errorf("two days ago = %d, want 1", got[4].ReviewCount)
	}
}

func TestComputeReviewActivity_CappedAt30(t *testing.T) {
	var reviews []ReviewRecord
	for i := 0; i < 90; i++ {
		reviews = append(reviews, ReviewRecord{VideoID: "a", CompletedAt: timePtr(daysAgo(i))})
	}

	for _, tt := range []struct {
		days int
		want int
	}{
		{7, 7},
		{30, 30},
		{90, 30},
		{365, 30},
	} {
		got := ComputeReviewActivity(reviews, tt.days, testNow)
		if len(got) != tt.want {
			t.Errorf("window %d: len = %d, want %d", tt.days, len(got), tt.want)
		}
	}
}

func TestComputeVideoPerformance(t *testing.T) {
	reviews := []ReviewRecord{
		{VideoID: "a", Rating: intPtr(4)},
		{VideoID: "a", Rating: intPtr(2)},
		{VideoID: "b", Rating: intPtr(5)},
		{VideoID: "c", Rating: intPtr(3)}, // no matching video
		{VideoID: "b"},                    // unrated
		{Rating: intPtr(1)},               // no video
	}
	videos := []VideoRecord{
		{ID: "b", Title: "Second"},
		{ID: "a", Title: "First"},
		{ID: "z", Title: "Never reviewed"},
	}

	got := ComputeVideoPerformance(reviews, videos)

	want := []VideoPerformance{
		{VideoID: "a", Title: "First", Label: "First...", ReviewCount: 2, AvgRating: 3},
		{VideoID: "b", Title: "Second", Label: "Second...", ReviewCount: 1, AvgRating: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComputeVideoPerformance() = %+v, want %+v", got, want)
	}
}

func TestComputeVideoPerformance_Top10(t *testing.T) {
	var reviews []ReviewRecord
	var videos []VideoRecord
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("v%02d", i)
		videos = append(videos, VideoRecord{ID: id, Title: id})
		for j := 0; j <= i; j++ {
			reviews = append(reviews, ReviewRecord{VideoID: id, Rating: intPtr(3)})
		}
	}

	got := ComputeVideoPerformance(reviews, videos)
	if len(got) != TopVideosLimit {
		t.Fatalf("len = %d, want %d", len(got), TopVideosLimit)
	}
	if got[0].VideoID != "v11" || got[0].ReviewCount != 12 {
		t.Errorf("first = %+v, want v11 with 12 reviews", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].ReviewCount > got[i-1].ReviewCount {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
}

func TestComputeVideoPerformance_StableTies(t *testing.T) {
	reviews := []ReviewRecord{
		{VideoID: "x", Rating: intPtr(1)},
		{VideoID: "y", Rating: intPtr(2)},
		{VideoID: "z", Rating: intPtr(3)},
	}
	videos := []VideoRecord{{ID: "y"}, {ID: "z"}, {ID: "x"}}

	got := ComputeVideoPerformance(reviews, videos)
	var order []string
	for _, v := range got {
		order = append(order, v.VideoID)
	}
	if strings.Join(order, ",") != "y,z,x" {
		t.Errorf("order = %v, want [y z x]", order)
	}
}

func TestVideoLabel(t *testing.T) {
	long := strings.Repeat("a", 40)
	accented := strings.Repeat("é", 31)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "Cats", "Cats..."},
		{"empty", "", "..."},
		{"exactly 30", strings.Repeat("b", 30), strings.Repeat("b", 30) + "..."},
		{"long", long, strings.Repeat("a", 30) + "..."},
		{"multibyte", accented, strings.Repeat("é", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VideoLabel(tt.input); got != tt.want {
				t.Errorf("VideoLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestComputeRatingDistribution(t *testing.T) {
	reviews := []ReviewRecord{
		{Rating: intPtr(1)},
		{Rating: intPtr(3)},
		{Rating: intPtr(3)},
		{Rating: intPtr(5)},
		{Rating: intPtr(0)},
		{Rating: intPtr(6)},
		{Rating: nil},
	}

	got := ComputeRatingDistribution(reviews)

	wantCounts := []int{1, 0, 2, 0, 1}
	total := 0
	for i, b := range got {
		if b.Rating != i+1 {
			t.Errorf("bucket %d rating = %d, want %d", i, b.Rating, i+1)
		}
		if b.Count != wantCounts[i] {
			t.Errorf("bucket %d count = %d, want %d", i, b.Count, wantCounts[i])
		}
		total += b.Count
	}
	if total != 4 {
		t.Errorf("total counted = %d, want 4", total)
	}
}

func TestComputeListCompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		completed int64
		want      ListCompletion
	}{
		{"no lists", 0, 0, ListCompletion{}},
		{"none completed", 4, 0, ListCompletion{Total: 4, Pending: 4}},
		{"one third", 3, 1, ListCompletion{Total: 3, Completed: 1, Pending: 2, Percent: 33.3}},
		{"all completed", 4, 4, ListCompletion{Total: 4, Completed: 4, Percent: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeListCompletionRate(tt.total, tt.completed)
			if got != tt.want {
				t.Errorf("ComputeListCompletionRate(%d, %d) = %+v, want %+v", tt.total, tt.completed, got, tt.want)
			}
			if math.IsNaN(got.Percent) {
				t.Error("Percent is NaN")
			}
		})
	}
}

func TestComputeStatusBreakdown(t *testing.T) {
	c := Counts{TotalUsers: 4, ActiveUsers: 2, AdminUsers: 1, BlockedUsers: 2, BlockedNonAdmin: 1}
	got := ComputeStatusBreakdown(c)
	want := StatusBreakdown{Active: 2, Admin: 1, Blocked: 1, BlockedAdmins: 1}
	if got != want {
		t.Errorf("ComputeStatusBreakdown() = %+v, want %+v", got, want)
	}
	if got.Total() != c.TotalUsers {
		t.Errorf("Total() = %d, want %d", got.Total(), c.TotalUsers)
	}
	if got.Blocked+got.BlockedAdmins != c.BlockedUsers {
		t.Errorf("blocked slices = %d + %d, want the KPI's %d", got.Blocked, got.BlockedAdmins, c.BlockedUsers)
	}

	if sb := ComputeStatusBreakdown(Counts{BlockedUsers: 1, BlockedNonAdmin: 3}); sb.BlockedAdmins != 0 {
		t.Errorf("BlockedAdmins = %d, want 0 for inconsistent counts", sb.BlockedAdmins)
	}
}

func sampleInput() DashboardInput {
	return DashboardInput{
		Counts:   Counts{TotalUsers: 3, ActiveUsers: 2, AdminUsers: 1, TotalLists: 2, CompletedLists: 1},
		Balances: []*float64{floatPtr(1), floatPtr(2)},
		Users: []UserRecord{
			{ID: "u1", CreatedAt: daysAgo(0)},
			{ID: "u2", CreatedAt: daysAgo(3)},
		},
		ActivityReviews: []ReviewRecord{
			{VideoID: "a", Rating: intPtr(4), CompletedAt: timePtr(daysAgo(1))},
		},
		Reviews: []ReviewRecord{
			{VideoID: "a", Rating: intPtr(4)},
			{VideoID: "b", Rating: intPtr(2)},
			{VideoID: "b", Rating: intPtr(3)},
		},
		Videos: []VideoRecord{{ID: "a", Title: "Alpha"}, {ID: "b", Title: "Beta"}},
	}
}

func TestBuildDashboard(t *testing.T) {
	d := BuildDashboard(sampleInput(), Window7d, testNow)

	if d.Days != 7 || len(d.UserGrowth) != 7 || len(d.ReviewActivity) != 7 {
		t.Fatalf("series lengths wrong: days=%d growth=%d activity=%d", d.Days, len(d.UserGrowth), len(d.ReviewActivity))
	}
	if d.KPI.TotalBalance != 3 {
		t.Errorf("TotalBalance = %v, want 3", d.KPI.TotalBalance)
	}
	if d.ListCompletion.Percent != 50 {
		t.Errorf("ListCompletion.Percent = %v, want 50", d.ListCompletion.Percent)
	}
	if d.Status != (StatusBreakdown{Active: 2, Admin: 1}) {
		t.Errorf("Status = %+v", d.Status)
	}
	if len(d.TopVideos) != 2 || d.TopVideos[0].VideoID != "b" {
		t.Errorf("TopVideos = %+v, want b first", d.TopVideos)
	}
}

func TestBuildDashboard_Idempotent(t *testing.T) {
	in := sampleInput()
	videosBefore := append([]VideoRecord(nil), in.Videos...)

	first := BuildDashboard(in, Window30d, testNow)
	second := BuildDashboard(in, Window30d, testNow)

	if !reflect.DeepEqual(first, second) {
		t.Error("BuildDashboard returned different results for identical input")
	}
	if !reflect.DeepEqual(in.Videos, videosBefore) {
		t.Error("BuildDashboard mutated its input")
	}
}

func TestBuildDashboard_Concurrent(t *testing.T) {
	in := sampleInput()
	want := BuildDashboard(in, Window90d, testNow)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := BuildDashboard(in, Window90d, testNow); !reflect.DeepEqual(got, want) {
				errs <- "concurrent result differs"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
