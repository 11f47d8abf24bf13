// internal/app/features/dashboard/loader.go
package dashboard

import (
	"context"
	"fmt"
	"time"

	liststore "github.com/dalemusser/stratareview/internal/app/store/lists"
	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	reviewstore "github.com/dalemusser/stratareview/internal/app/store/reviews"
	videostore "github.com/dalemusser/stratareview/internal/app/store/videos"
	"github.com/dalemusser/stratareview/internal/app/system/analytics"
	"github.com/dalemusser/stratareview/internal/app/system/dashcache"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader gathers the dashboard inputs from the stores and builds the
// Dashboard, reading through the cache when one is configured.
type Loader struct {
	profiles *profilestore.Store
	videos   *videostore.Store
	reviews  *reviewstore.Store
	lists    *liststore.Store
	cache    *dashcache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

// NewLoader creates a Loader. cache may be nil.
func NewLoader(db *mongo.Database, cache *dashcache.Cache, logger *zap.Logger) *Loader {
	return &Loader{
		profiles: profilestore.New(db),
		videos:   videostore.New(db),
		reviews:  reviewstore.New(db),
		lists:    liststore.New(db),
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the dashboard for w, from the cache when possible.
func (l *Loader) Get(ctx context.Context, w analytics.Window) (analytics.Dashboard, error) {
	if d, ok := l.cache.Get(ctx, w); ok {
		return *d, nil
	}
	d, err := l.Build(ctx, w)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	l.cache.Set(ctx, d)
	return d, nil
}

// Warm rebuilds and caches every window. It does nothing without a cache.
func (l *Loader) Warm(ctx context.Context) error {
	if !l.cache.Enabled() {
		return nil
	}
	for _, w := range analytics.AllWindows() {
		d, err := l.Build(ctx, w)
		if err != nil {
			return fmt.Errorf("warm %s: %w", w, err)
		}
		l.cache.Set(ctx, d)
	}
	return nil
}

// Build reads every input for w from the stores concurrently and runs the
// aggregations. The first failing read cancels the others.
func (l *Loader) Build(ctx context.Context, w analytics.Window) (analytics.Dashboard, error) {
	now := l.now()
	days := w.Days()
	activityDays := days
	if activityDays > analytics.MaxActivityDays {
		activityDays = analytics.MaxActivityDays
	}

	var (
		status     profilestore.StatusCounts
		listTotals liststore.Totals
		in         analytics.DashboardInput
		profiles   []models.Profile
		recent     []models.Review
		rated      []models.Review
		videos     []models.Video
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		status, err = l.profiles.CountByStatus(gctx)
		return wrap("count profiles", err)
	})
	g.Go(func() (err error) {
		in.Balances, err = l.profiles.Balances(gctx)
		return wrap("load balances", err)
	})
	g.Go(func() (err error) {
		profiles, err = l.profiles.CreatedSince(gctx, windowStart(now, days))
		return wrap("load new profiles", err)
	})
	g.Go(func() (err error) {
		in.Counts.TotalVideos, err = l.videos.Count(gctx, bson.M{})
		return wrap("count videos", err)
	})
	g.Go(func() (err error) {
		in.Counts.ActiveVideos, err = l.videos.CountActive(gctx)
		return wrap("count active videos", err)
	})
	g.Go(func() (err error) {
		videos, err = l.videos.Titles(gctx)
		return wrap("load video titles", err)
	})
	g.Go(func() (err error) {
		in.Counts.TotalReviews, err = l.reviews.Count(gctx, bson.M{})
		return wrap("count reviews", err)
	})
	g.Go(func() (err error) {
		in.Counts.ReviewsToday, err = l.reviews.CountCompletedSince(gctx, startOfDay(now))
		return wrap("count reviews today", err)
	})
	g.Go(func() (err error) {
		recent, err = l.reviews.CompletedSince(gctx, windowStart(now, activityDays))
		return wrap("load recent reviews", err)
	})
	g.Go(func() (err error) {
		rated, err = l.reviews.Rated(gctx)
		return wrap("load rated reviews", err)
	})
	g.Go(func() (err error) {
		listTotals, err = l.lists.CountTotals(gctx)
		return wrap("count lists", err)
	})

	if err := g.Wait(); err != nil {
		return analytics.Dashboard{}, err
	}

	in.Counts.TotalUsers = status.Total
	in.Counts.ActiveUsers = status.Active
	in.Counts.BlockedUsers = status.Blocked
	in.Counts.AdminUsers = status.Admins
	in.Counts.BlockedNonAdmin = status.BlockedNonAdmin
	in.Counts.TotalLists = listTotals.Total
	in.Counts.CompletedLists = listTotals.Completed
	in.Users = userRecords(profiles)
	in.ActivityReviews = reviewRecords(recent)
	in.Reviews = reviewRecords(rated)
	in.Videos = videoRecords(videos)

	d := analytics.BuildDashboard(in, w, now)
	l.logger.Debug("dashboard built",
		zap.String("window", string(w)),
		zap.Int("profiles", len(profiles)),
		zap.Int("recent_reviews", len(recent)),
		zap.Int("rated_reviews", len(rated)))
	return d, nil
}

func wrap(op string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// windowStart is midnight of the first day of a days-long window ending today.
func windowStart(now time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	return startOfDay(now).AddDate(0, 0, -(days - 1))
}

func userRecords(ps []models.Profile) []analytics.UserRecord {
	out := make([]analytics.UserRecord, 0, len(ps))
	for _, p := range ps {
		out = append(out, analytics.UserRecord{
			ID:        p.ID.Hex(),
			CreatedAt: p.CreatedAt,
			Balance:   p.Balance,
			IsAdmin:   p.IsAdmin,
			IsBlocked: p.IsBlocked,
		})
	}
	return out
}

func reviewRecords(rs []models.Review) []analytics.ReviewRecord {
	out := make([]analytics.ReviewRecord, 0, len(rs))
	for _, r := range rs {
		rec := analytics.ReviewRecord{
			Rating:        r.Rating,
			EarningAmount: r.EarningAmount,
			CompletedAt:   r.CompletedAt,
		}
		if !r.UserID.IsZero() {
			rec.UserID = r.UserID.Hex()
		}
		if !r.VideoID.IsZero() {
			rec.VideoID = r.VideoID.Hex()
		}
		out = append(out, rec)
	}
	return out
}

func videoRecords(vs []models.Video) []analytics.VideoRecord {
	out := make([]analytics.VideoRecord, 0, len(vs))
	for _, v := range vs {
		out = append(out, analytics.VideoRecord{ID: v.ID.Hex(), Title: v.Title})
	}
	return out
}
