// internal/app/features/videos/form.go
package videos

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/stratareview/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratareview/internal/app/system/inputval"
	"github.com/dalemusser/stratareview/internal/app/system/youtube"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/shopspring/decimal"
)

// MaxEarningAmount bounds what one review of a video may pay.
const MaxEarningAmount = 1000

var (
	errBadEarning = errors.New("Earning amount must be a number between 0 and 1000.")
	errNoVideoID  = errors.New("YouTube URL must be a YouTube video link.")
)

// videoInput is the raw catalog form.
type videoInput struct {
	Title      string `validate:"required,max=200" label:"Title"`
	YouTubeURL string `validate:"required,youtube" label:"YouTube URL"`
	Earning    string
	IsActive   bool
}

// videoFields is a validated form, ready to store.
type videoFields struct {
	Title         string
	YouTubeID     string
	YouTubeURL    string
	ThumbnailURL  string
	EarningAmount float64
	IsActive      bool
}

func readForm(r *http.Request) videoInput {
	return videoInput{
		Title:      htmlsanitize.PlainText(r.FormValue("title")),
		YouTubeURL: strings.TrimSpace(r.FormValue("youtube_url")),
		Earning:    strings.TrimSpace(r.FormValue("earning_amount")),
		IsActive:   checked(r.FormValue("is_active")),
	}
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// parse validates in and derives the canonical URL and thumbnail from the
// YouTube id. An empty earning amount means models.DefaultEarningAmount.
func (in videoInput) parse() (videoFields, error) {
	if res := inputval.Validate(in); res.HasErrors() {
		return videoFields{}, errors.New(res.First())
	}

	id, ok := youtube.ExtractID(in.YouTubeURL)
	if !ok {
		return videoFields{}, errNoVideoID
	}

	earning := decimal.NewFromFloat(models.DefaultEarningAmount)
	if in.Earning != "" {
		d, err := decimal.NewFromString(strings.ReplaceAll(in.Earning, ",", "."))
		if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(MaxEarningAmount)) {
			return videoFields{}, errBadEarning
		}
		earning = d.Round(2)
	}

	return videoFields{
		Title:         in.Title,
		YouTubeID:     id,
		YouTubeURL:    youtube.WatchURL(id),
		ThumbnailURL:  youtube.ThumbnailURL(id),
		EarningAmount: earning.InexactFloat64(),
		IsActive:      in.IsActive,
	}, nil
}

func (f videoFields) video() models.Video {
	return models.Video{
		Title:         f.Title,
		YouTubeID:     f.YouTubeID,
		YouTubeURL:    f.YouTubeURL,
		ThumbnailURL:  f.ThumbnailURL,
		EarningAmount: f.EarningAmount,
		IsActive:      f.IsActive,
	}
}
