package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/asamarket/asafish-gobackend/internal/models"
	"github.com/asamarket/asafish-gobackend/internal/services"
)

// CatchHandler handles HTTP requests for catch listings
type CatchHandler struct {
	service *services.CatchService
}

func NewCatchHandler(service *services.CatchService) *CatchHandler {
	return &CatchHandler{service: service}
}

// CreateCatch handles POST /api/catch for the logged-in fisher.
func (h *CatchHandler) CreateCatch(w http.ResponseWriter, r *http.Request) {
	claims := requireRole(w, r, models.RoleFisher)
	if claims == nil {
		return
	}

	var c models.Catch
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_BODY", Message: "invalid request body"})
		return
	}
	c.FisherID = claims.UserID

	id, err := h.service.CreateCatch(r.Context(), &c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetCatches handles GET /api/catches.
func (h *CatchHandler) GetCatches(w http.ResponseWriter, r *http.Request) {
	catches, err := h.service.CatchList(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if catches == nil {
		catches = []models.Catch{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"catches": catches})
}

// GetCatch handles GET /api/catch/{catchID}.
func (h *CatchHandler) GetCatch(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCatch(r.Context(), mux.Vars(r)["catchID"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"catch": c})
}
