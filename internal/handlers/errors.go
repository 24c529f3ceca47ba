package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/asamarket/asafish-gobackend/internal/models"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorKinds = map[error]struct {
	kind   string
	status int
}{
	models.ErrInvalidAmount:       {"INVALID_AMOUNT", http.StatusBadRequest},
	models.ErrMissingField:        {"MISSING_FIELD", http.StatusBadRequest},
	models.ErrInsufficientBalance: {"INSUFFICIENT_BALANCE", http.StatusBadRequest},
	models.ErrInvalidStatus:       {"INVALID_STATUS", http.StatusBadRequest},
	models.ErrInvalidTransition:   {"INVALID_TRANSITION", http.StatusBadRequest},
	models.ErrInvalidFreshness:    {"INVALID_FRESHNESS", http.StatusBadRequest},
	models.ErrPayoutNotFound:      {"PAYOUT_NOT_FOUND", http.StatusNotFound},
	models.ErrCatchNotFound:       {"CATCH_NOT_FOUND", http.StatusNotFound},
	models.ErrOrderNotFound:       {"ORDER_NOT_FOUND", http.StatusNotFound},
}

// writeServiceError maps a domain error to its machine-readable kind.
// Anything outside the taxonomy is a storage failure and may be retried by
// the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	for sentinel, mapping := range errorKinds {
		if errors.Is(err, sentinel) {
			writeJSON(w, mapping.status, errorResponse{Error: mapping.kind, Message: sentinel.Error()})
			return
		}
	}
	log.Printf("Storage failure: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "STORAGE_FAILURE", Message: "temporary storage failure, retry the request"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
