// internal/app/features/login/login.go
package login

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratareview/internal/app/features/errors"
	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"github.com/dalemusser/stratareview/internal/app/store/ratelimit"
	"github.com/dalemusser/stratareview/internal/app/system/auditlog"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/authutil"
	"github.com/dalemusser/stratareview/internal/app/system/normalize"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Messages shown on the sign-in form. Unknown email and wrong password share
// one message so the form does not reveal which accounts exist.
const (
	msgInvalid     = "Invalid email or password."
	msgBlocked     = "This account is blocked."
	msgNotAdmin    = "Access denied. Operator access is required."
	msgUnavailable = "Service temporarily unavailable. Please try again."
)

// Handler provides login handlers.
type Handler struct {
	profiles       *profilestore.Store
	rateLimitStore *ratelimit.Store // nil if rate limiting disabled
	sessionMgr     *auth.SessionManager
	errLog         *errorsfeature.ErrorLogger
	auditLogger    *auditlog.Logger
	logger         *zap.Logger
}

// NewHandler creates a new login Handler. rateLimitStore can be nil to
// disable rate limiting.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	rateLimitStore *ratelimit.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		profiles:       profilestore.New(db),
		rateLimitStore: rateLimitStore,
		sessionMgr:     sessionMgr,
		errLog:         errLog,
		auditLogger:    auditLogger,
		logger:         logger,
	}
}

// LoginVM is the view model for the sign-in page.
type LoginVM struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

// ChangePasswordVM is the view model for the change password page.
type ChangePasswordVM struct {
	viewdata.BaseVM
	Error    string
	Required bool
	Rules    string
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMgr.RequireSignedIn)
		r.Get("/change-password", h.showChangePassword)
		r.Post("/change-password", h.handleChangePassword)
	})

	return r
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, returnURL, errMsg string) {
	vm := LoginVM{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:     errMsg,
		Email:     email,
		ReturnURL: returnURL,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login/form", vm)
}

// showLogin displays the sign-in form. Signed-in operators go straight to
// the dashboard.
func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && u.IsAdmin {
		http.Redirect(w, r, urlutil.SafeReturn(query.Get(r, "return"), "", "/dashboard"), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "", query.Get(r, "return"), "")
}

// handleLogin checks email and password and signs an operator in.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	if email == "" || password == "" {
		h.renderLogin(w, r, http.StatusBadRequest, email, returnURL, "Email and password are required.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "login")
	defer cancel()

	if h.rateLimitStore != nil {
		if allowed, _, lockedUntil := h.rateLimitStore.CheckAllowed(ctx, email); !allowed {
			h.auditLogger.LoginFailed(ctx, r, nil, audit.EventLoginLockedOut, email, "rate limit exceeded")
			h.renderLogin(w, r, http.StatusTooManyRequests, email, returnURL, lockoutMessage(lockedUntil))
			return
		}
	}

	p, err := h.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			h.recordFailure(r, email)
			h.auditLogger.LoginFailed(ctx, r, nil, audit.EventLoginFailedUserNotFound, email, "no such profile")
			h.renderLogin(w, r, http.StatusUnauthorized, email, returnURL, msgInvalid)
			return
		}
		h.errLog.Log(r, "database error during login lookup", err)
		h.renderLogin(w, r, http.StatusServiceUnavailable, email, returnURL, msgUnavailable)
		return
	}

	if p.PasswordHash == nil || !authutil.CheckPassword(password, *p.PasswordHash) {
		if locked, until := h.recordFailure(r, email); locked {
			h.auditLogger.LoginFailed(ctx, r, &p.ID, audit.EventLoginLockedOut, email, "too many failed attempts")
			h.renderLogin(w, r, http.StatusTooManyRequests, email, returnURL, lockoutMessage(until))
			return
		}
		h.auditLogger.LoginFailed(ctx, r, &p.ID, audit.EventLoginFailedWrongPassword, email, "wrong password")
		h.renderLogin(w, r, http.StatusUnauthorized, email, returnURL, msgInvalid)
		return
	}

	if p.IsBlocked {
		h.auditLogger.LoginFailed(ctx, r, &p.ID, audit.EventLoginFailedUserBlocked, email, "profile blocked")
		h.renderLogin(w, r, http.StatusForbidden, email, returnURL, msgBlocked)
		return
	}
	if !p.IsAdmin {
		h.auditLogger.LoginFailed(ctx, r, &p.ID, audit.EventLoginFailedNotAdmin, email, "not an operator")
		h.renderLogin(w, r, http.StatusForbidden, email, returnURL, msgNotAdmin)
		return
	}

	if h.rateLimitStore != nil {
		if err := h.rateLimitStore.ClearOnSuccess(ctx, email); err != nil {
			h.logger.Warn("failed to clear login attempts", zap.String("email", email), zap.Error(err))
		}
	}

	if err := h.sessionMgr.CreateSession(w, r, p.ID, email, p.IsAdmin); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.auditLogger.LoginSuccess(ctx, r, p.ID, email)

	if p.RequiresPasswordChange {
		http.Redirect(w, r, auth.ChangePasswordPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/dashboard"), http.StatusSeeOther)
}

func (h *Handler) recordFailure(r *http.Request, email string) (bool, *time.Time) {
	if h.rateLimitStore == nil {
		return false, nil
	}
	locked, until, err := h.rateLimitStore.RecordFailure(r.Context(), email)
	if err != nil {
		h.logger.Warn("failed to record login failure", zap.String("email", email), zap.Error(err))
	}
	return locked, until
}

func lockoutMessage(lockedUntil *time.Time) string {
	if lockedUntil == nil {
		return "Too many failed sign-in attempts. Please try again later."
	}
	remaining := time.Until(*lockedUntil)
	if remaining > time.Minute {
		return fmt.Sprintf("Too many failed sign-in attempts. Please try again in %d minute(s).", int(remaining.Minutes())+1)
	}
	return fmt.Sprintf("Too many failed sign-in attempts. Please try again in %d second(s).", int(remaining.Seconds())+1)
}

func (h *Handler) renderChangePassword(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	u, _ := auth.CurrentUser(r)
	vm := ChangePasswordVM{
		BaseVM:   viewdata.NewBaseVM(r, "Change password", "/dashboard"),
		Error:    errMsg,
		Required: u != nil && u.MustChangePassword,
		Rules:    authutil.PasswordRules(),
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login/change_password", vm)
}

func (h *Handler) showChangePassword(w http.ResponseWriter, r *http.Request) {
	h.renderChangePassword(w, r, http.StatusOK, "")
}

// handleChangePassword replaces the signed-in operator's password and clears
// the temporary-password flag.
func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if next != confirm {
		h.renderChangePassword(w, r, http.StatusBadRequest, "The new passwords do not match.")
		return
	}
	if err := authutil.ValidatePassword(next); err != nil {
		h.renderChangePassword(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.EqualFold(next, current) {
		h.renderChangePassword(w, r, http.StatusBadRequest, "Choose a password different from the current one.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "change password")
	defer cancel()

	p, err := h.profiles.GetByID(ctx, u.UserID())
	if err != nil {
		h.errLog.Log(r, "failed to load profile for password change", err)
		h.renderChangePassword(w, r, http.StatusServiceUnavailable, msgUnavailable)
		return
	}
	if p.PasswordHash == nil || !authutil.CheckPassword(current, *p.PasswordHash) {
		h.renderChangePassword(w, r, http.StatusUnauthorized, "The current password is incorrect.")
		return
	}

	hash, err := authutil.HashPassword(next)
	if err != nil {
		h.errLog.Log(r, "failed to hash password", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := h.profiles.SetPassword(ctx, p.ID, hash, false); err != nil {
		h.errLog.Log(r, "failed to store password", err)
		h.renderChangePassword(w, r, http.StatusServiceUnavailable, msgUnavailable)
		return
	}
	h.auditLogger.PasswordChanged(ctx, r, p.ID, p.RequiresPasswordChange)

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
