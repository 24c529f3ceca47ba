package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/asamarket/asafish-gobackend/internal/models"
	"github.com/asamarket/asafish-gobackend/internal/services"
)

type OrderHandler struct {
	service       *services.OrderService
	webhookSecret string
}

func NewOrderHandler(service *services.OrderService, webhookSecret string) *OrderHandler {
	return &OrderHandler{service: service, webhookSecret: webhookSecret}
}

// CreateOrder handles POST /api/order: opens a pending order and returns the
// gateway checkout URL.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, models.RoleBuyer)
	if claims == nil {
		return
	}

	var req struct {
		CatchID string `json:"catch_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CatchID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_BODY", Message: "catch_id is required"})
		return
	}

	order, err := h.service.CreateOrder(r.Context(), claims.UserID, req.CatchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"order": order})
}

// Webhook handles POST /api/payment/webhook from the gateway. Replayed
// callbacks for the same tx_ref are harmless.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	// An unset secret must never degrade into accepting unsigned callbacks.
	if h.webhookSecret == "" {
		http.Error(w, `{"error":"UNAUTHORIZED","message":"webhook secret not configured"}`, http.StatusUnauthorized)
		return
	}
	sig := r.Header.Get("x-chapa-signature")
	if subtle.ConstantTimeCompare([]byte(sig), []byte(h.webhookSecret)) != 1 {
		http.Error(w, `{"error":"UNAUTHORIZED","message":"unauthorized webhook"}`, http.StatusUnauthorized)
		return
	}

	var payload struct {
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.TxRef == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_BODY", Message: "invalid webhook payload"})
		return
	}

	switch payload.Status {
	case "success":
		if _, err := h.service.CompleteOrder(r.Context(), payload.TxRef); err != nil {
			log.Printf("Webhook completion failed for tx_ref %s: %v", payload.TxRef, err)
			writeServiceError(w, err)
			return
		}
	case "failed":
		if err := h.service.FailOrder(r.Context(), payload.TxRef); err != nil {
			writeServiceError(w, err)
			return
		}
	default:
		log.Printf("Webhook: tx_ref %s status %s, no action taken", payload.TxRef, payload.Status)
	}
	w.WriteHeader(http.StatusOK)
}

// VerifyPayment handles GET /api/payment/verify/{txRef}: the return-URL poll
// that confirms the transaction with the gateway.
func (h *OrderHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	txRef := mux.Vars(r)["txRef"]
	if txRef == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_BODY", Message: "txRef is required"})
		return
	}

	order, err := h.service.VerifyPayment(r.Context(), txRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// GetOrder handles GET /api/order/{orderID}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	if claims := requireRole(w, r, ""); claims == nil {
		return
	}

	order, err := h.service.GetOrder(r.Context(), mux.Vars(r)["orderID"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// GetMyOrders handles GET /api/orders/me for the logged-in buyer.
func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, models.RoleBuyer)
	if claims == nil {
		return
	}

	orders, err := h.service.OrdersByBuyer(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}
