package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error goes through respondError, which:
//  1. maps the error to a user message via core.MapError
//  2. derives the HTTP status from the error itself (statusFor)
//  3. logs the technical error with the request id
//  4. writes the message as JSON, an HTMX fragment or plain text

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/facility-export/internal/core"
	"github.com/JonMunkholm/facility-export/internal/web/views"
)

// errInvalidRequest marks a malformed request body or parameter.
var errInvalidRequest = errors.New("invalid request")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// validationError carries per-field request validation failures. It wraps
// the domain sentinel that best describes the failure so MapError and
// statusFor treat it like the service would.
type validationError struct {
	fields map[string]string
	cause  error
}

func (e *validationError) Error() string {
	parts := make([]string, 0, len(e.fields))
	for k, v := range e.fields {
		parts = append(parts, k+": "+v)
	}
	return e.cause.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *validationError) Unwrap() error { return e.cause }

// statusFor derives the HTTP status of err.
func statusFor(err error) int {
	var unknown *core.UnknownFieldsError
	var invalid *validationError
	switch {
	case errors.As(err, &invalid), errors.As(err, &unknown),
		errors.Is(err, errInvalidRequest),
		errors.Is(err, core.ErrNoFacilities),
		errors.Is(err, core.ErrNoFields),
		errors.Is(err, core.ErrTooManyFacilities),
		errors.Is(err, core.ErrFavoriteNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFacilityNotFound),
		errors.Is(err, core.ErrFavoriteNotFound),
		errors.Is(err, core.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateFavoriteName),
		errors.Is(err, core.ErrBatchNotFinished),
		errors.Is(err, core.ErrBatchFailed):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyBatches):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type (HTMX, JSON, or plain text).
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if statusCode == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "10")
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		var fields map[string]string
		var invalid *validationError
		if errors.As(err, &invalid) {
			fields = invalid.fields
		}
		respondErrorJSON(w, userMsg, fields, statusCode)
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, fields map[string]string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Fields:  fields,
	})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error alert", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
