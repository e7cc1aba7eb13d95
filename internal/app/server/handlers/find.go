package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"finderworks/x402-finder/internal/models"
	"finderworks/x402-finder/internal/x402"
)

// Find serves the protected search route. The gate has already accepted
// payment by the time this runs; a domain failure here is a 500 with a
// generic body, orthogonal to payment status.
func (h *Handlers) Find(w http.ResponseWriter, r *http.Request) {
	var query models.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.finder.Find(r.Context(), query)
	if err != nil {
		h.logger.Error("find failed",
			zap.String("category", query.Category),
			zap.String("location", query.Location),
			zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}

	if confirmation, ok := x402.ConfirmationFrom(r.Context()); ok {
		result.PaymentStatus = confirmation.Status
		result.PaymentAmount = confirmation.Amount
		result.PaymentNetwork = confirmation.Network
	}

	writeJSON(w, result)
}
