// internal/app/features/login/logout.go
package login

import (
	"net/http"

	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"go.uber.org/zap"
)

// Logout ends the session and returns to the sign-in page. GET is accepted
// so the nav can use a plain link.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.Logout(r.Context(), r, u.ID)
		h.logger.Debug("operator signed out", zap.String("user_id", u.ID))
	}
	h.sessionMgr.DestroySession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
