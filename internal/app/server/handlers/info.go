package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":    serviceName,
		"version": serviceVersion,
		"price":   fmt.Sprintf("%s USDC per call", h.displayPrice()),
		"network": h.cfg.Payment.Network,
		"wallet":  h.cfg.Payment.PayTo,
		"endpoints": map[string]string{
			"health":       "/health",
			"payment_info": "/payment-info",
			"find":         fmt.Sprintf("POST /find (requires %s USDC payment)", h.displayPrice()),
		},
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":           "healthy",
		"agent":            serviceAgent,
		"version":          serviceVersion,
		"payment_required": true,
		"price":            fmt.Sprintf("%s USDC", h.displayPrice()),
		"network":          h.cfg.Payment.Network,
	})
}

func (h *Handlers) PaymentInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.gate.Requirements())
}

// displayPrice renders the configured base-unit amount as a decimal USDC
// figure (6-decimal asset).
func (h *Handlers) displayPrice() string {
	baseUnits, err := strconv.ParseInt(h.cfg.Payment.AmountBaseUnits, 10, 64)
	if err != nil {
		return h.cfg.Payment.AmountBaseUnits
	}

	return strconv.FormatFloat(float64(baseUnits)/1e6, 'f', 2, 64)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
