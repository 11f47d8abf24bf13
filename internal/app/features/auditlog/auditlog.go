// internal/app/features/auditlog/auditlog.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratareview/internal/app/features/errors"
	"github.com/dalemusser/stratareview/internal/app/store/audit"
	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PageSize is the number of events per page.
const PageSize = 50

const dateLayout = "2006-01-02"

// Handler provides the audit log page.
type Handler struct {
	auditStore *audit.Store
	profiles   *profilestore.Store
	errHandler *errorsfeature.Handler
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new audit log Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		auditStore: audit.New(db),
		profiles:   profilestore.New(db),
		errHandler: errorsfeature.NewHandler(),
		errLog:     errLog,
		logger:     logger,
	}
}

// Routes returns a chi.Router with audit log routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)
	r.Get("/", h.list)
	return r
}

var eventTypes = map[string][]string{
	audit.CategoryAuth: {
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserBlocked,
		audit.EventLoginFailedNotAdmin,
		audit.EventLoginLockedOut,
		audit.EventLogout,
		audit.EventPasswordChanged,
	},
	audit.CategoryAdmin: {
		audit.EventBalanceAdjusted,
		audit.EventUserBlocked,
		audit.EventUserUnblocked,
		audit.EventPasswordReset,
	},
	audit.CategoryCatalog: {
		audit.EventVideoCreated,
		audit.EventVideoUpdated,
		audit.EventVideoDeleted,
		audit.EventVideoActivated,
		audit.EventVideoDeactivated,
	},
}

var categoryOrder = []option{
	{Value: audit.CategoryAuth, Label: "Sign-in"},
	{Value: audit.CategoryAdmin, Label: "User actions"},
	{Value: audit.CategoryCatalog, Label: "Video catalog"},
}

// eventTypesFor returns the event types of category, or all of them when
// category is empty.
func eventTypesFor(category string) []string {
	if category != "" {
		return eventTypes[category]
	}
	var all []string
	for _, c := range categoryOrder {
		all = append(all, eventTypes[c.Value]...)
	}
	return all
}

// parseFilter reads the query string. Unknown categories and event types are
// dropped; dates are whole UTC days, the end date inclusive.
func parseFilter(r *http.Request) (audit.QueryFilter, listFilter) {
	lf := listFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		StartDate: query.Get(r, "start_date"),
		EndDate:   query.Get(r, "end_date"),
		Page:      viewdata.ParsePage(query.Get(r, "page")),
	}
	if _, ok := eventTypes[lf.Category]; !ok {
		lf.Category = ""
	}
	if !contains(eventTypesFor(lf.Category), lf.EventType) {
		lf.EventType = ""
	}

	f := audit.QueryFilter{
		Category:  lf.Category,
		EventType: lf.EventType,
		Limit:     PageSize,
		Offset:    int64((lf.Page - 1) * PageSize),
	}
	if t, err := time.ParseInLocation(dateLayout, lf.StartDate, time.UTC); err == nil {
		f.StartTime = &t
	} else {
		lf.StartDate = ""
	}
	if t, err := time.ParseInLocation(dateLayout, lf.EndDate, time.UTC); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &end
	} else {
		lf.EndDate = ""
	}
	return f, lf
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// list displays the audit log with filtering and pagination, newest first.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, lf := parseFilter(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "audit log")
	defer cancel()

	events, err := h.auditStore.Query(ctx, filter)
	if err != nil {
		h.errLog.Log(r, "failed to query audit events", err)
		h.errHandler.InternalError(w, r)
		return
	}
	total, err := h.auditStore.CountByFilter(ctx, filter)
	if err != nil {
		h.logger.Warn("failed to count audit events", zap.Error(err))
		total = int64(len(events))
	}

	emails := h.resolveEmails(ctx, events)

	vm := ListVM{
		BaseVM:     viewdata.NewBaseVM(r, "Audit log", "/dashboard"),
		Filter:     lf,
		Categories: selectOptions(categoryOrder, lf.Category),
		Pager:      viewdata.NewPager("/audit", r.URL.Query(), lf.Page, PageSize, total),
	}
	for _, et := range eventTypesFor(lf.Category) {
		vm.EventTypes = append(vm.EventTypes, option{Value: et, Label: audit.Label(et), Selected: et == lf.EventType})
	}
	for _, e := range events {
		vm.Rows = append(vm.Rows, toRow(e, emails))
	}

	templates.Render(w, r, "auditlog/list", vm)
}

// resolveEmails maps the actors and subjects of events to their email. A
// lookup failure only costs the display names.
func (h *Handler) resolveEmails(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	add := func(id *primitive.ObjectID) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; !ok {
			seen[*id] = struct{}{}
			ids = append(ids, *id)
		}
	}
	for _, e := range events {
		add(e.ActorID)
		add(e.UserID)
	}

	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out
	}
	profiles, err := h.profiles.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		h.logger.Warn("failed to resolve audit log names", zap.Error(err))
		return out
	}
	for _, p := range profiles {
		if p.Email != nil {
			out[p.ID] = *p.Email
		}
	}
	return out
}
