package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wey/internal/core"
	applog "wey/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeServiceError maps domain errors to statuses. Anything unrecognized is
// a 500 with a generic message; the detail stays in the server log only.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrUnknownCredential):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrCredentialTaken),
		errors.Is(err, core.ErrUnknownWeyID),
		errors.Is(err, core.ErrDuplicateContact),
		errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyContent),
		errors.Is(err, core.ErrEmptyCredential),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidTarget),
		errors.Is(err, core.ErrDescriptionLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Unexpected error",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path,
			applog.FieldRequestID, requestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// parseLimit reads an optional positive ?limit query value; 0 means no limit.
func parseLimit(r *http.Request) int {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseDate accepts RFC 3339 or plain YYYY-MM-DD in the server's zone.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
