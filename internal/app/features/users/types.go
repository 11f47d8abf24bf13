// internal/app/features/users/types.go
package users

import (
	"fmt"
	"time"

	"github.com/dalemusser/stratareview/internal/app/store/audit"
	reviewstore "github.com/dalemusser/stratareview/internal/app/store/reviews"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateTimeLayout = "2006-01-02 15:04"

// userRow is one line of the users table.
type userRow struct {
	ID          string
	Email       string
	DisplayName string
	Balance     string
	Status      string
	CreatedAt   string
}

type statusOption struct {
	Value    string
	Label    string
	Selected bool
}

// ListVM is the view model for the users list.
type ListVM struct {
	viewdata.BaseVM

	SearchQuery string
	Status      string
	Statuses    []statusOption

	Rows  []userRow
	Pager viewdata.Pager
}

type reviewRow struct {
	VideoTitle   string
	ThumbnailURL string
	Rating       string
	Earning      string
	CompletedAt  string
}

type listRow struct {
	Date      string
	Progress  string
	Completed bool
}

type adjustmentRow struct {
	When    string
	Amount  string
	Balance string
	Reason  string
}

// DetailVM is the view model for a single profile.
type DetailVM struct {
	viewdata.BaseVM

	User       userRow
	IsBlocked  bool
	IsSelf     bool
	MustChange bool
	Stats      []statItem

	Reviews     []reviewRow
	Lists       []listRow
	Adjustments []adjustmentRow
	Activity    []activityRow

	Notice string
	Error  string

	// Form echo after a rejected balance adjustment.
	Amount string
	Reason string
}

type activityRow struct {
	When    string
	Event   string
	Role    string // "by" when the profile acted, "on" when it was the target
	Success bool
	IP      string
}

type statItem struct {
	Label string
	Value string
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func signedMoney(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(dateTimeLayout)
}

func toUserRow(p models.Profile) userRow {
	row := userRow{
		ID:        p.ID.Hex(),
		Balance:   money(p.BalanceValue()),
		Status:    p.Status(),
		CreatedAt: formatTime(&p.CreatedAt),
	}
	if p.Email != nil {
		row.Email = *p.Email
	}
	if p.DisplayName != nil {
		row.DisplayName = *p.DisplayName
	}
	return row
}

func toReviewRow(r reviewstore.ReviewWithVideo) reviewRow {
	row := reviewRow{
		VideoTitle:  "(deleted video)",
		Rating:      "-",
		Earning:     money(r.EarningAmount),
		CompletedAt: formatTime(r.CompletedAt),
	}
	if r.Video != nil {
		row.VideoTitle = r.Video.Title
		row.ThumbnailURL = r.Video.ThumbnailURL
	}
	if r.Rating != nil {
		row.Rating = fmt.Sprintf("%d★", *r.Rating)
	}
	return row
}

func toListRow(l models.DailyVideoList) listRow {
	return listRow{
		Date:      l.ListDate,
		Progress:  fmt.Sprintf("%d / %d", l.VideosCompleted, len(l.VideoIDs)),
		Completed: l.IsCompleted,
	}
}

func toAdjustmentRow(a models.BalanceAdjustment) adjustmentRow {
	return adjustmentRow{
		When:    formatTime(&a.CreatedAt),
		Amount:  signedMoney(a.Amount),
		Balance: money(a.PreviousBalance) + " → " + money(a.NewBalance),
		Reason:  a.Reason,
	}
}

func toActivityRow(e audit.Event, profileID primitive.ObjectID) activityRow {
	row := activityRow{
		When:    formatTime(&e.CreatedAt),
		Event:   audit.Label(e.EventType),
		Role:    "on",
		Success: e.Success,
		IP:      e.IP,
	}
	if e.ActorID != nil && *e.ActorID == profileID {
		row.Role = "by"
	}
	if e.UserID != nil && *e.UserID == profileID && e.ActorID == nil {
		row.Role = "by"
	}
	return row
}
