package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rating-ledger/internal/ledger"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// wantsText reports whether the caller asked for the plain line format.
func wantsText(r *http.Request) bool {
	return r.URL.Query().Get("format") == "text"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func writeLines(w http.ResponseWriter, lines []string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if len(lines) == 0 {
		return
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// statusFor maps ledger error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindConflict:
		return http.StatusConflict
	case ledger.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(msg, "error", err)
		http.Error(w, msg, status)
		return
	}
	var le *ledger.Error
	if errors.As(err, &le) {
		msg = le.Error()
	}
	log.Debug(msg, "error", err, "status", status)
	http.Error(w, msg, status)
}

func badRequest(field string, err error) error {
	return &ledger.Error{Kind: ledger.KindValidation, Field: field, Err: err}
}
