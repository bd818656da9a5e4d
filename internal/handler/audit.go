package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"swapgate/internal/domain"
	"swapgate/internal/observability"
)

// auditTimeout bounds best-effort audit writes so a slow backend cannot
// hold up the request path.
const auditTimeout = 2 * time.Second

// recordEvent writes an audit row. Failures are logged and absorbed; the
// audit trail never fails a request.
func (h *Handler) recordEvent(ctx context.Context, e *domain.SwapEventRecord) {
	e.EventID = uuid.NewString()
	e.RequestID = requestIDFrom(ctx)
	e.Timestamp = h.now().UnixMilli()

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := h.events.Insert(writeCtx, e); err != nil {
		observability.RecordAuditWriteError("swap_events")
		h.logger.Warn("audit write failed", "store", "swap_events", "error", err.Error())
	}
}

// recordQuoteMetric writes a quote analytics row, same best-effort
// contract as recordEvent.
func (h *Handler) recordQuoteMetric(ctx context.Context, m *domain.QuoteMetric) {
	m.Timestamp = h.now().UnixMilli()

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := h.metrics.Insert(writeCtx, m); err != nil {
		observability.RecordAuditWriteError("quote_metrics")
		h.logger.Warn("audit write failed", "store", "quote_metrics", "error", err.Error())
	}
}

func (h *Handler) auditRejection(r *http.Request, class, identity string) {
	h.recordEvent(r.Context(), &domain.SwapEventRecord{
		EventType:   class,
		Caller:      identity,
		Outcome:     domain.OutcomeRejected,
		ErrorReason: "rate_limit",
	})
}
