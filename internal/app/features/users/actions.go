// internal/app/features/users/actions.go
package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/stratareview/internal/app/system/adminactions"
	"github.com/dalemusser/stratareview/internal/app/system/auditlog"
	"github.com/dalemusser/stratareview/internal/app/system/authz"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// adjustBalance credits or debits a profile's balance.
func (h *Handler) adjustBalance(w http.ResponseWriter, r *http.Request) {
	params := adminactions.Params{
		adminactions.ParamAmount: r.FormValue("amount"),
		adminactions.ParamReason: r.FormValue("reason"),
	}
	if _, ok := h.invoke(w, r, adminactions.ActionAdjustBalance, params); ok {
		http.Redirect(w, r, "/users/"+chi.URLParam(r, "id")+"?done=balance", http.StatusSeeOther)
	}
}

// toggleBlock sets the blocked flag to the submitted value.
func (h *Handler) toggleBlock(w http.ResponseWriter, r *http.Request) {
	params := adminactions.Params{adminactions.ParamBlocked: r.FormValue("blocked")}
	res, ok := h.invoke(w, r, adminactions.ActionToggleBlock, params)
	if !ok {
		return
	}
	done := "unblocked"
	if res.Blocked != nil && *res.Blocked {
		done = "blocked"
	}
	http.Redirect(w, r, "/users/"+chi.URLParam(r, "id")+"?done="+done, http.StatusSeeOther)
}

// resetPassword sets the temporary password and shows it once, on the
// response page, without a redirect.
func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	res, ok := h.invoke(w, r, adminactions.ActionResetPassword, adminactions.Params{})
	if !ok {
		return
	}
	vm := h.loadDetail(w, r)
	if vm == nil {
		return
	}
	vm.Notice = "Password reset. Temporary password: " + strconv.Quote(res.TempPassword) +
		". The user must choose a new password at next sign-in."
	h.renderDetail(w, r, http.StatusOK, vm)
}

// invoke runs action against the {id} profile. When it fails, the error
// response has been written and ok is false.
func (h *Handler) invoke(w http.ResponseWriter, r *http.Request, action string, params adminactions.Params) (adminactions.Result, bool) {
	actor, ok := authz.Principal(r)
	if !ok {
		h.errHandler.Unauthorized(w, r)
		return adminactions.Result{}, false
	}
	params[adminactions.ParamTargetUserID] = chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(auditlog.WithRequest(r.Context(), r), timeouts.Medium(), h.logger, action)
	defer cancel()

	res, err := h.actions.Invoke(ctx, actor, action, params)
	if err == nil {
		h.logger.Info("admin action",
			zap.String("action", action),
			zap.String("actor_id", actor.ID.Hex()),
			zap.String("target_id", res.TargetID.Hex()))
		return res, true
	}

	switch {
	case errors.Is(err, adminactions.ErrForbidden):
		h.errHandler.Forbidden(w, r)
	case errors.Is(err, adminactions.ErrTargetNotFound), errors.Is(err, adminactions.ErrInvalidTarget):
		h.errHandler.NotFound(w, r)
	case isInputError(err):
		vm := h.loadDetail(w, r)
		if vm == nil {
			return adminactions.Result{}, false
		}
		vm.Error = err.Error()
		if action == adminactions.ActionAdjustBalance {
			vm.Amount = params[adminactions.ParamAmount]
			vm.Reason = params[adminactions.ParamReason]
		}
		h.renderDetail(w, r, http.StatusBadRequest, vm)
	default:
		h.errLog.Log(r, "admin action failed", err)
		h.errHandler.InternalError(w, r)
	}
	return adminactions.Result{}, false
}

func isInputError(err error) bool {
	for _, target := range []error{
		adminactions.ErrInvalidAmount,
		adminactions.ErrReasonRequired,
		adminactions.ErrReasonTooLong,
		adminactions.ErrInvalidBlocked,
		adminactions.ErrSelfAction,
		adminactions.ErrUnknownAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
