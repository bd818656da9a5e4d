package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"swapgate/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// statusFor maps the domain taxonomy onto HTTP statuses. Caller mistakes
// are 400; exhausted or broken upstreams are 500.
func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrRateLimitExceeded),
		errors.Is(err, domain.ErrUnsupportedAsset),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrExcessivePriceImpact):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// reasonFor labels the error for audit rows and metrics.
func reasonFor(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return "rate_limit"
	case errors.Is(err, domain.ErrUnsupportedAsset):
		return "unsupported_asset"
	case errors.Is(err, domain.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, domain.ErrExcessivePriceImpact):
		return "price_impact"
	case errors.Is(err, domain.ErrNoRouteAvailable):
		return "no_route"
	case errors.Is(err, domain.ErrRouteBuildFailed):
		return "build_failed"
	default:
		return "internal"
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, attrs ...any) {
	status := statusFor(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		append([]any{"path", r.URL.Path, "reason", reasonFor(err), "error", err.Error()}, attrs...)...)
	writeError(w, status, err.Error())
}
