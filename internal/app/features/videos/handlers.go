// internal/app/features/videos/handlers.go
package videos

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/stratareview/internal/app/store/audit"
	videostore "github.com/dalemusser/stratareview/internal/app/store/videos"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var notices = map[string]string{
	"created":     "Video added.",
	"updated":     "Video saved.",
	"deleted":     "Video deleted.",
	"activated":   "Video activated.",
	"deactivated": "Video deactivated.",
}

// list shows one page of the catalog, newest first.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	activeParam := query.Get(r, "active")
	page := viewdata.ParsePage(query.Get(r, "page"))

	f := videostore.ListFilter{Search: q, Page: int64(page), PageSize: videostore.DefaultPageSize}
	switch activeParam {
	case "true", "false":
		active := activeParam == "true"
		f.Active = &active
	default:
		activeParam = ""
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "list videos")
	defer cancel()

	vids, total, err := h.videos.List(ctx, f)
	if err != nil {
		h.errLog.Log(r, "failed to list videos", err)
		h.errHandler.InternalError(w, r)
		return
	}

	vm := ListVM{
		BaseVM:      viewdata.NewBaseVM(r, "Videos", "/dashboard"),
		SearchQuery: q,
		Active:      activeParam,
		Pager:       viewdata.NewPager("/videos", r.URL.Query(), page, videostore.DefaultPageSize, total),
		Notice:      notices[query.Get(r, "done")],
	}
	for _, o := range []filterOption{{"", "All", false}, {"true", "Active", false}, {"false", "Inactive", false}} {
		o.Selected = o.Value == activeParam
		vm.Filters = append(vm.Filters, o)
	}
	for _, v := range vids {
		vm.Rows = append(vm.Rows, toVideoRow(v))
	}
	templates.Render(w, r, "videos/list", vm)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, vm FormVM) {
	if vm.IsEdit {
		vm.BaseVM = viewdata.NewBaseVM(r, "Edit video", "/videos")
		vm.Action = "/videos/" + vm.ID
	} else {
		vm.BaseVM = viewdata.NewBaseVM(r, "New video", "/videos")
		vm.Action = "/videos"
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "videos/form", vm)
}

func (h *Handler) showNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, FormVM{
		Earning:  fmt.Sprintf("%.2f", models.DefaultEarningAmount),
		IsActive: true,
	})
}

func formEcho(in videoInput, errMsg string) FormVM {
	return FormVM{
		VideoTitle: in.Title,
		YouTubeURL: in.YouTubeURL,
		Earning:    in.Earning,
		IsActive:   in.IsActive,
		Error:      errMsg,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in := readForm(r)
	fields, err := in.parse()
	if err != nil {
		h.renderForm(w, r, http.StatusBadRequest, formEcho(in, err.Error()))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "create video")
	defer cancel()

	v, err := h.videos.Create(ctx, fields.video())
	if err != nil {
		h.errLog.Log(r, "failed to create video", err)
		h.errHandler.InternalError(w, r)
		return
	}
	h.changed(ctx, r, audit.EventVideoCreated, v)
	http.Redirect(w, r, "/videos?done=created", http.StatusSeeOther)
}

// load fetches the {id} video. On failure it has already responded.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*models.Video, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errHandler.NotFound(w, r)
		return nil, false
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "load video")
	defer cancel()

	v, err := h.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			h.errHandler.NotFound(w, r)
			return nil, false
		}
		h.errLog.Log(r, "failed to load video", err)
		h.errHandler.InternalError(w, r)
		return nil, false
	}
	return v, true
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, FormVM{
		IsEdit:     true,
		ID:         v.ID.Hex(),
		VideoTitle: v.Title,
		YouTubeURL: v.YouTubeURL,
		Earning:    fmt.Sprintf("%.2f", v.EarningAmount),
		IsActive:   v.IsActive,
		Thumbnail:  v.ThumbnailURL,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	in := readForm(r)
	fields, err := in.parse()
	if err != nil {
		vm := formEcho(in, err.Error())
		vm.IsEdit, vm.ID, vm.Thumbnail = true, v.ID.Hex(), v.ThumbnailURL
		h.renderForm(w, r, http.StatusBadRequest, vm)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "update video")
	defer cancel()

	err = h.videos.Update(ctx, v.ID, videostore.VideoUpdate{
		Title:         fields.Title,
		YouTubeID:     fields.YouTubeID,
		YouTubeURL:    fields.YouTubeURL,
		ThumbnailURL:  fields.ThumbnailURL,
		EarningAmount: fields.EarningAmount,
		IsActive:      fields.IsActive,
	})
	if err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			h.errHandler.NotFound(w, r)
			return
		}
		h.errLog.Log(r, "failed to update video", err)
		h.errHandler.InternalError(w, r)
		return
	}

	updated := fields.video()
	updated.ID = v.ID
	h.changed(ctx, r, audit.EventVideoUpdated, updated)
	http.Redirect(w, r, "/videos?done=updated", http.StatusSeeOther)
}

// toggleActive flips whether the video is offered to reviewers.
func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "toggle video")
	defer cancel()

	active := !v.IsActive
	if err := h.videos.SetActive(ctx, v.ID, active); err != nil {
		h.errLog.Log(r, "failed to toggle video", err)
		h.errHandler.InternalError(w, r)
		return
	}

	eventType, done := audit.EventVideoDeactivated, "deactivated"
	if active {
		eventType, done = audit.EventVideoActivated, "activated"
	}
	v.IsActive = active
	h.changed(ctx, r, eventType, *v)
	http.Redirect(w, r, "/videos?done="+done, http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "delete video")
	defer cancel()

	n, err := h.videos.Delete(ctx, v.ID)
	if err != nil {
		h.errLog.Log(r, "failed to delete video", err)
		h.errHandler.InternalError(w, r)
		return
	}
	if n == 0 {
		h.errHandler.NotFound(w, r)
		return
	}
	h.changed(ctx, r, audit.EventVideoDeleted, *v)
	http.Redirect(w, r, "/videos?done=deleted", http.StatusSeeOther)
}
