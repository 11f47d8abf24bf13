// Package errors renders the console's error pages and logs handler
// failures with request context.
package errors

import (
	"net/http"

	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with the request method and path.
type ErrorLogger struct {
	logger *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log records err at error level.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error, fields ...zap.Field) {
	e.logger.With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	).Error(msg, append(fields, zap.Error(err))...)
}

// PageVM is the view model of errors/page.
type PageVM struct {
	viewdata.BaseVM
	Status     int
	Heading    string
	Message    string
	ShowSignIn bool
}

type copyText struct{ heading, message string }

var pages = map[int]copyText{
	http.StatusUnauthorized:        {"Sign in required", "Sign in with an operator account to continue."},
	http.StatusForbidden:           {"Access denied", "Operator access is required for this page."},
	http.StatusNotFound:            {"Not found", "That page or record does not exist."},
	http.StatusInternalServerError: {"Something went wrong", "The error has been logged. Please try again."},
	http.StatusServiceUnavailable:  {"Temporarily unavailable", "The data could not be loaded right now. Please try again shortly."},
}

// Handler renders error pages. The zero value is ready to use.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// Page renders the error page for status. Statuses without their own text
// fall back to the 500 page copy.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request, status int) {
	text, ok := pages[status]
	if !ok {
		text = pages[http.StatusInternalServerError]
	}
	vm := PageVM{
		BaseVM:  viewdata.NewBaseVM(r, text.heading, "/dashboard"),
		Status:  status,
		Heading: text.heading,
		Message: text.message,
	}
	vm.ShowSignIn = status == http.StatusUnauthorized && !vm.SignedIn

	w.WriteHeader(status)
	templates.Render(w, r, "errors/page", vm)
}

func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, http.StatusUnauthorized)
}

func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, http.StatusForbidden)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, http.StatusNotFound)
}

func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, http.StatusInternalServerError)
}

// ServiceUnavailable is used when a backing store does not answer in time.
func (h *Handler) ServiceUnavailable(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, http.StatusServiceUnavailable)
}
