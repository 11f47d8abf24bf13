// internal/app/features/users/detail.go
package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// notices maps the done= query value set after a successful action.
var notices = map[string]string{
	"balance":   "Balance updated.",
	"blocked":   "User blocked.",
	"unblocked": "User unblocked.",
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	vm := h.loadDetail(w, r)
	if vm == nil {
		return
	}
	vm.Notice = notices[query.Get(r, "done")]
	h.renderDetail(w, r, http.StatusOK, vm)
}

// loadDetail fetches everything the detail page shows. On failure it has
// already written an error page and returns nil.
func (h *Handler) loadDetail(w http.ResponseWriter, r *http.Request) *DetailVM {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errHandler.NotFound(w, r)
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "user detail")
	defer cancel()

	p, err := h.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			h.errHandler.NotFound(w, r)
			return nil
		}
		h.errLog.Log(r, "failed to load user", err)
		h.errHandler.InternalError(w, r)
		return nil
	}

	vm, err := h.buildDetail(ctx, r, *p)
	if err != nil {
		h.errLog.Log(r, "failed to load user history", err)
		h.errHandler.InternalError(w, r)
		return nil
	}
	return vm
}

func (h *Handler) buildDetail(ctx context.Context, r *http.Request, p models.Profile) (*DetailVM, error) {
	title := "User"
	if p.Email != nil {
		title = *p.Email
	}
	vm := &DetailVM{
		BaseVM:     viewdata.NewBaseVM(r, title, "/users"),
		User:       toUserRow(p),
		IsBlocked:  p.IsBlocked,
		MustChange: p.RequiresPasswordChange,
		Stats: []statItem{
			{"Total reviews", fmt.Sprint(p.TotalReviews)},
			{"Reviews today", fmt.Sprint(p.DailyReviewsCompleted)},
			{"Current streak", fmt.Sprint(p.CurrentStreak)},
			{"Withdrawal goal", money(p.WithdrawalGoal)},
			{"Last review", formatTime(p.LastReviewDate)},
		},
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.IsSelf = u.ID == p.ID.Hex()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := h.reviews.RecentForUser(gctx, p.ID, 0)
		if err != nil {
			return fmt.Errorf("reviews: %w", err)
		}
		for _, rv := range rows {
			vm.Reviews = append(vm.Reviews, toReviewRow(rv))
		}
		return nil
	})
	g.Go(func() error {
		rows, err := h.lists.RecentForUser(gctx, p.ID, 0)
		if err != nil {
			return fmt.Errorf("lists: %w", err)
		}
		for _, l := range rows {
			vm.Lists = append(vm.Lists, toListRow(l))
		}
		return nil
	})
	g.Go(func() error {
		rows, err := h.adjustments.ForUser(gctx, p.ID, AdjustmentHistoryLimit)
		if err != nil {
			return fmt.Errorf("adjustments: %w", err)
		}
		for _, a := range rows {
			vm.Adjustments = append(vm.Adjustments, toAdjustmentRow(a))
		}
		return nil
	})
	g.Go(func() error {
		events, err := h.audit.GetByUser(gctx, p.ID, ActivityLimit)
		if err != nil {
			return fmt.Errorf("activity: %w", err)
		}
		for _, e := range events {
			vm.Activity = append(vm.Activity, toActivityRow(e, p.ID))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vm, nil
}

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, status int, vm *DetailVM) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "users/detail", vm)
}
