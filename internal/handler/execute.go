package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"swapgate/internal/domain"
	"swapgate/internal/observability"
)

// flexAmount accepts amounts as JSON strings or numbers, normalized to
// the raw decimal text the validator parses.
type flexAmount string

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = flexAmount(s)
		return nil
	}
	*a = flexAmount(data)
	return nil
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ValidationError{Fields: []string{"body"}}
	}
	return nil
}

// finishExecute records the outcome in metrics and the audit store.
func (h *Handler) finishExecute(r *http.Request, network domain.NetworkClass, exec *domain.Execution, source string, start time.Time, err error) {
	event := &domain.SwapEventRecord{
		EventType: domain.EventTypeExecute,
		Network:   string(network),
		Source:    source,
		Caller:    callerIdentity(r),
		LatencyMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		event.Outcome = domain.OutcomeFailed
		event.ErrorReason = reasonFor(err)
		observability.RecordExecute(string(network), domain.OutcomeFailed)
		h.recordEvent(r.Context(), event)
		return
	}

	event.Outcome = domain.OutcomeSuccess
	event.AmountIn = exec.Fee + exec.AmountAfterFee
	event.Fee = exec.Fee
	observability.RecordExecute(string(network), domain.OutcomeSuccess)
	h.recordEvent(r.Context(), event)
}

func (h *Handler) handleExecuteSolana(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		Route         json.RawMessage `json:"route"`
		UserPublicKey string          `json:"userPublicKey"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.finishExecute(r, domain.NetworkSolana, nil, domain.SourceJupiter, start, err)
		h.fail(w, r, err)
		return
	}

	exec, err := h.builder.Solana(r.Context(), req.Route, req.UserPublicKey)
	h.finishExecute(r, domain.NetworkSolana, exec, domain.SourceJupiter, start, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"fee":            exec.Fee,
		"amountAfterFee": exec.AmountAfterFee,
		"serializedTx":   exec.SerializedTx,
	})
}

func (h *Handler) handleExecuteEVM(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		BestSource  string     `json:"bestSource"`
		FromToken   string     `json:"fromToken"`
		ToToken     string     `json:"toToken"`
		Amount      flexAmount `json:"amount"`
		UserAddress string     `json:"userAddress"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.finishExecute(r, domain.NetworkEVM, nil, "", start, err)
		h.fail(w, r, err)
		return
	}

	exec, err := h.builder.EVM(r.Context(), req.BestSource, req.FromToken, req.ToToken, string(req.Amount), req.UserAddress)
	h.finishExecute(r, domain.NetworkEVM, exec, req.BestSource, start, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"fee":            exec.Fee,
		"amountAfterFee": exec.AmountAfterFee,
		"txObject": map[string]any{
			"swapTx":      exec.SwapTx,
			"feeTransfer": exec.FeeTransfer,
		},
	})
}

func (h *Handler) handleExecuteBitcoin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		ToAsset     string     `json:"toAsset"`
		Amount      flexAmount `json:"amount"`
		UserAddress string     `json:"userAddress"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.finishExecute(r, domain.NetworkBitcoin, nil, domain.SourceThorchain, start, err)
		h.fail(w, r, err)
		return
	}

	exec, err := h.builder.Bitcoin(r.Context(), req.ToAsset, string(req.Amount), req.UserAddress)
	h.finishExecute(r, domain.NetworkBitcoin, exec, domain.SourceThorchain, start, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"fee":            exec.Fee,
		"amountAfterFee": exec.AmountAfterFee,
		"swapInfo":       exec.Deposit,
	})
}
