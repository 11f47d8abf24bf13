// internal/app/features/users/list.go
package users

import (
	"net/http"

	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/system/inputval"
	"github.com/dalemusser/stratareview/internal/app/system/normalize"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// statusFilter is the status query parameter of the user list.
type statusFilter struct {
	Status string `validate:"profilestatus" label:"Status"`
}

// list shows one page of profiles, newest first, filtered by q and status.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(query.Get(r, "q"))
	filter := statusFilter{Status: normalize.Status(query.Get(r, "status"))}
	if res := inputval.Validate(filter); res.HasErrors() {
		h.logger.Debug("ignoring status filter", zap.String("status", filter.Status), zap.String("reason", res.First()))
		filter.Status = ""
	}
	status := filter.Status
	page := viewdata.ParsePage(query.Get(r, "page"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "list users")
	defer cancel()

	profiles, total, err := h.profiles.List(ctx, profilestore.ListFilter{
		Search:   q,
		Status:   status,
		Page:     int64(page),
		PageSize: profilestore.DefaultPageSize,
	})
	if err != nil {
		h.errLog.Log(r, "failed to list users", err)
		h.errHandler.InternalError(w, r)
		return
	}

	vm := ListVM{
		BaseVM:      viewdata.NewBaseVM(r, "Users", "/dashboard"),
		SearchQuery: q,
		Status:      status,
		Statuses:    statusOptions(status),
		Pager:       viewdata.NewPager("/users", r.URL.Query(), page, profilestore.DefaultPageSize, total),
	}
	for _, p := range profiles {
		vm.Rows = append(vm.Rows, toUserRow(p))
	}

	templates.Render(w, r, "users/list", vm)
}

func statusOptions(selected string) []statusOption {
	out := []statusOption{{Value: "", Label: "All", Selected: selected == ""}}
	labels := map[string]string{
		models.StatusActive:  "Active",
		models.StatusBlocked: "Blocked",
		models.StatusAdmin:   "Admin",
	}
	for _, s := range models.AllStatuses() {
		out = append(out, statusOption{Value: s, Label: labels[s], Selected: s == selected})
	}
	return out
}
