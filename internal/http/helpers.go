package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"outlay/internal/core"
	applog "outlay/internal/log"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	accountIDKey contextKey = "account_id"
)

// accountID returns the authenticated account id placed in the context by
// requireAuth.
func accountID(r *http.Request) int64 {
	id, _ := r.Context().Value(accountIDKey).(int64)
	return id
}

// bearerToken extracts the token from an Authorization: Bearer header.
// A bare token without the scheme prefix is accepted too.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(header)
}

// clientAddr extracts the client IP, preferring proxy headers. Only the
// first X-Forwarded-For hop counts; the full header varies per request in
// the attacker's hands and must not become the rate-limit key.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the domain error taxonomy to status codes. Anything
// outside the taxonomy is a 500 with a generic body; the detail goes to the
// log only.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *applog.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, core.ErrAuthFailure):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrStorageUnavailable):
		logger.ErrorContext(r.Context(), "Storage unavailable", applog.FieldError, err.Error())
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// exportFileName builds the suggested attachment name, e.g.
// expenses_20240115.csv for a UTC day.
func exportFileName(now time.Time) string {
	return "expenses_" + now.UTC().Format("20060102") + ".csv"
}
