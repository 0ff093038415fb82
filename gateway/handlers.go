// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"aegisgate/platform/guard/pipeline"
	"aegisgate/platform/guard/txguard"
	"aegisgate/platform/guard/x402"
	"aegisgate/platform/shared/types"
)

// maxRequestBody caps request bodies well above the pipeline's text
// size limit so oversize content is denied by the validator, not the
// transport.
const maxRequestBody = 1 << 20

func (a *App) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, map[string]string{"error": msg})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "starting"
	if a.ready.Load() {
		status = "healthy"
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"service":   "aegisgate",
		"timestamp": time.Now().UTC(),
	})
}

type validateRequest struct {
	Content string `json:"content"`
	// InputContext carries the prompt that produced the content when
	// validating output.
	InputContext string `json:"input_context,omitempty"`
}

func (a *App) handleValidateInput(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !a.decode(w, r, &req) {
		return
	}
	verdict := a.validator.ValidateInput(r.Context(), req.Content)
	a.writeJSON(w, http.StatusOK, verdict)
}

func (a *App) handleValidateOutput(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !a.decode(w, r, &req) {
		return
	}
	verdict := a.validator.ValidateOutput(r.Context(), req.Content, req.InputContext)
	a.writeJSON(w, http.StatusOK, verdict)
}

type validatePlanRequest struct {
	Plan                string `json:"plan"`
	CheckPhysicalSafety bool   `json:"check_physical_safety"`
}

func (a *App) handleValidatePlan(w http.ResponseWriter, r *http.Request) {
	var req validatePlanRequest
	if !a.decode(w, r, &req) {
		return
	}
	verdict := a.validator.ValidateActionPlan(r.Context(), req.Plan, pipeline.ActionPlanOptions{
		CheckPhysicalSafety: req.CheckPhysicalSafety,
	})
	a.writeJSON(w, http.StatusOK, verdict)
}

type guardQueryRequest struct {
	Query  string `json:"query"`
	Strict bool   `json:"strict,omitempty"`
}

func (a *App) handleGuardQuery(w http.ResponseWriter, r *http.Request) {
	var req guardQueryRequest
	if !a.decode(w, r, &req) {
		return
	}

	if req.Strict {
		verdict, err := a.dbGuard.ValidateStrict(req.Query)
		var blocked *types.QueryBlockedError
		if errors.As(err, &blocked) {
			a.writeJSON(w, http.StatusForbidden, verdict)
			return
		}
		a.writeJSON(w, http.StatusOK, verdict)
		return
	}

	a.writeJSON(w, http.StatusOK, a.dbGuard.Validate(req.Query))
}

func (a *App) handleGuardTransaction(w http.ResponseWriter, r *http.Request) {
	var req txguard.TxRequest
	if !a.decode(w, r, &req) {
		return
	}
	verdict, err := a.txGuard.Validate(r.Context(), req)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, verdict)
}

type transactionCompleteRequest struct {
	From   string  `json:"from"`
	Amount float64 `json:"amount"`
}

func (a *App) handleTransactionComplete(w http.ResponseWriter, r *http.Request) {
	var req transactionCompleteRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.txGuard.RecordCompleted(r.Context(), req.From, req.Amount); err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (a *App) handleGuardDeFi(w http.ResponseWriter, r *http.Request) {
	var req txguard.DeFiRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.writeJSON(w, http.StatusOK, txguard.AssessDeFiRisk(req))
}

func (a *App) handleSpendingSummary(w http.ResponseWriter, r *http.Request) {
	wallet := mux.Vars(r)["wallet"]
	sum, err := a.txGuard.SpendingSummary(r.Context(), wallet)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, sum)
}

type x402BeforeRequest struct {
	Payment x402.PaymentRequest `json:"payment"`
	Wallet  string              `json:"wallet"`
}

func (a *App) handleX402Before(w http.ResponseWriter, r *http.Request) {
	var req x402BeforeRequest
	if !a.decode(w, r, &req) {
		return
	}
	verdict, err := a.payments.Before(r.Context(), req.Payment, req.Wallet)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, verdict)
}

type x402AfterRequest struct {
	Payment x402.PaymentRequest `json:"payment"`
	Wallet  string              `json:"wallet"`
	Success bool                `json:"success"`
	TxHash  string              `json:"tx_hash,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (a *App) handleX402After(w http.ResponseWriter, r *http.Request) {
	var req x402AfterRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.payments.After(r.Context(), req.Payment, req.Wallet, req.Success, req.TxHash, req.Error); err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	dbTotal, dbAllowed := a.dbGuard.Stats()
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pipeline":     a.validator.Stats(),
		"transactions": a.txGuard.Stats(),
		"database": map[string]int64{
			"total":   dbTotal,
			"allowed": dbAllowed,
		},
		"audit_entries": a.trail.Len(),
	})
}
