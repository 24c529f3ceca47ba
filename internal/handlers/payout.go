package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/asamarket/asafish-gobackend/internal/models"
	"github.com/asamarket/asafish-gobackend/internal/services"
)

type PayoutHandler struct {
	service *services.PayoutService
}

func NewPayoutHandler(service *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{service: service}
}

// GetMyPayouts handles GET /api/payouts/me?from&to for the logged-in fisher.
// The optional from/to ISO dates window the earnings report; withdrawals are
// always lifetime.
func (h *PayoutHandler) GetMyPayouts(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, models.RoleFisher)
	if claims == nil {
		return
	}

	from, to, err := parseDateWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_DATE", Message: err.Error()})
		return
	}

	balance, payouts, err := h.service.History(r.Context(), claims.UserID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if payouts == nil {
		payouts = []models.Payout{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance": balance,
		"payouts": payouts,
	})
}

// RequestPayout handles POST /api/payouts/request.
func (h *PayoutHandler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, models.RoleFisher)
	if claims == nil {
		return
	}

	var req struct {
		Amount  float64 `json:"amount"`
		Method  string  `json:"method"`
		Account string  `json:"account"`
		Notes   string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_BODY", Message: "invalid request body"})
		return
	}

	payout, err := h.service.Request(r.Context(), claims.UserID, req.Amount, req.Method, req.Account, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"payout": payout})
}

// ListPayouts handles GET /api/payouts/admin?status.
func (h *PayoutHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	if claims := requireRole(w, r, models.RoleAdmin); claims == nil {
		return
	}

	payouts, err := h.service.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if payouts == nil {
		payouts = []models.Payout{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payouts": payouts})
}

// TransitionPayout handles PATCH /api/payouts/{payoutID}/status.
func (h *PayoutHandler) TransitionPayout(w http.ResponseWriter, r *http.Request) {
	if claims := requireRole(w, r, models.RoleAdmin); claims == nil {
		return
	}

	payoutID := mux.Vars(r)["payoutID"]
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_BODY", Message: "invalid request body"})
		return
	}

	payout, err := h.service.Transition(r.Context(), payoutID, req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payout": payout})
}

// parseDateWindow converts optional ISO dates into an inclusive time window:
// from starts at midnight, to runs to the end of its day.
func parseDateWindow(fromStr, toStr string) (from, to *time.Time, err error) {
	if fromStr != "" {
		t, perr := time.Parse("2006-01-02", fromStr)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if toStr != "" {
		t, perr := time.Parse("2006-01-02", toStr)
		if perr != nil {
			return nil, nil, perr
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}
