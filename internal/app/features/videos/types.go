// internal/app/features/videos/types.go
package videos

import (
	"fmt"

	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/stratareview/internal/domain/models"
)

type videoRow struct {
	ID           string
	Title        string
	YouTubeID    string
	YouTubeURL   string
	ThumbnailURL string
	Earning      string
	IsActive     bool
	CreatedAt    string
}

type filterOption struct {
	Value    string
	Label    string
	Selected bool
}

// ListVM is the view model for the catalog list.
type ListVM struct {
	viewdata.BaseVM
	SearchQuery string
	Active      string
	Filters     []filterOption
	Rows        []videoRow
	Pager       viewdata.Pager
	Notice      string
}

// FormVM is the view model for the new and edit forms.
type FormVM struct {
	viewdata.BaseVM
	IsEdit     bool
	Action     string
	ID         string
	VideoTitle string
	YouTubeURL string
	Earning    string
	IsActive   bool
	Thumbnail  string
	Error      string
}

func toVideoRow(v models.Video) videoRow {
	return videoRow{
		ID:           v.ID.Hex(),
		Title:        v.Title,
		YouTubeID:    v.YouTubeID,
		YouTubeURL:   v.YouTubeURL,
		ThumbnailURL: v.ThumbnailURL,
		Earning:      fmt.Sprintf("%.2f", v.EarningAmount),
		IsActive:     v.IsActive,
		CreatedAt:    v.CreatedAt.Format("2006-01-02"),
	}
}
