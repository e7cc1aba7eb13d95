package x402

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Settlement modes.
const (
	SettlementOff   = "off"
	SettlementSync  = "sync"
	SettlementAsync = "async"
)

// Confirmation carries the accepted payment's confirmation fields to the
// fulfilled handler via the request context.
type Confirmation struct {
	Status  string
	Amount  string
	Network string
}

type contextKey struct{}

// ConfirmationFrom returns the payment confirmation for a request that
// passed the gate, if any.
func ConfirmationFrom(ctx context.Context) (*Confirmation, bool) {
	confirmation, ok := ctx.Value(contextKey{}).(*Confirmation)
	return confirmation, ok
}

// SettlementEvent is handed to the async settlement workers after a
// fulfilled response has been served.
type SettlementEvent struct {
	RequestID    string
	Payload      *PaymentPayload
	Requirements *PaymentRequirements

	retried bool
}

// Retry grants each event a single re-enqueue after a failed settlement.
func (e *SettlementEvent) Retry() bool {
	if e.retried {
		return false
	}

	e.retried = true
	return true
}

// GateConfig configures a payment gate.
type GateConfig struct {
	// Requirements is the single accepted payment option.
	Requirements PaymentRequirements

	// ResourceDescription labels the paid resource inside challenges.
	ResourceDescription string

	// ProtectedRoutes lists "METHOD /path" pairs the gate enforces.
	// Everything else bypasses the gate unconditionally.
	ProtectedRoutes []string

	// Verifier confirms structurally valid evidence with the facilitator.
	// Nil means structural acceptance only (no facilitator configured).
	Verifier Verifier

	// Settler and SettlementMode control what happens after fulfillment.
	Settler        Settler
	SettlementMode string

	// SettlementEvents receives events in async mode. Sends never block a
	// request; an event is dropped with a log line when the buffer is full.
	SettlementEvents chan<- any
}

// Gate decides PASS / CHALLENGE / REJECT for every inbound request to a
// protected route. It keeps no per-request state between requests.
type Gate struct {
	cfg       GateConfig
	protected map[string]struct{}
	logger    *zap.Logger
}

func NewGate(cfg GateConfig, logger *zap.Logger) *Gate {
	if cfg.SettlementMode == "" {
		cfg.SettlementMode = SettlementOff
	}

	protected := make(map[string]struct{}, len(cfg.ProtectedRoutes))
	for _, route := range cfg.ProtectedRoutes {
		protected[route] = struct{}{}
	}

	return &Gate{
		cfg:       cfg,
		protected: protected,
		logger:    logger,
	}
}

// Requirements returns the gate's immutable payment terms.
func (g *Gate) Requirements() PaymentRequirements {
	return g.cfg.Requirements
}

// Middleware enforces payment on protected routes.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.isProtected(r) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(HeaderPayment)
		if header == "" {
			header = r.Header.Get(HeaderPaymentLegacy)
		}

		if header == "" {
			g.challenge(w, r, ErrMissingEvidence.Error())
			return
		}

		payload, err := ParsePayload(header)
		if err != nil {
			g.challenge(w, r, ErrMalformedEvidence.Error())
			return
		}

		outcome := g.verify(r.Context(), payload)
		if !outcome.Accepted {
			g.challenge(w, r, outcome.Reason)
			return
		}

		requirements := g.cfg.Requirements
		confirmation := &Confirmation{
			Status:  "received",
			Amount:  requirements.Amount,
			Network: requirements.Network,
		}
		ctx := context.WithValue(r.Context(), contextKey{}, confirmation)

		gw := &gatedWriter{ResponseWriter: w, gate: g, payload: payload}
		next.ServeHTTP(gw, r.WithContext(ctx))

		if g.cfg.SettlementMode == SettlementAsync && gw.fulfilled() {
			g.enqueueSettlement(r, payload)
		}
	})
}

// verify validates evidence with the facilitator when one is configured.
// Facilitator unreachability fails closed: evidence is rejected with an
// unreachable reason and the failure is logged.
func (g *Gate) verify(ctx context.Context, payload *PaymentPayload) *Outcome {
	if g.cfg.Verifier == nil {
		return &Outcome{Accepted: true}
	}

	outcome, err := g.cfg.Verifier.Verify(ctx, payload, &g.cfg.Requirements)
	if err != nil {
		g.logger.Error("facilitator verification unreachable", zap.Error(err))
		return &Outcome{Accepted: false, Reason: ErrFacilitatorUnreachable.Error()}
	}

	return outcome
}

func (g *Gate) isProtected(r *http.Request) bool {
	_, ok := g.protected[r.Method+" "+r.URL.Path]
	return ok
}

// challenge writes the 402 response on both channels: JSON body and the
// base64 PAYMENT-REQUIRED header.
func (g *Gate) challenge(w http.ResponseWriter, r *http.Request, reason string) {
	resource := r.URL.Path
	if r.URL.RawQuery != "" {
		resource += "?" + r.URL.RawQuery
	}

	challenge := &Challenge{
		X402Version: Version,
		Error:       reason,
		Resource: Resource{
			URL:         resource,
			Description: g.cfg.ResourceDescription,
			MimeType:    "application/json",
		},
		Accepts: []PaymentRequirements{g.cfg.Requirements},
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderPaymentRequired, challenge.EncodeHeader())
	w.Header().Set("Access-Control-Expose-Headers", HeaderPaymentRequired)
	w.WriteHeader(http.StatusPaymentRequired)

	if err := sonic.ConfigDefault.NewEncoder(w).Encode(challenge); err != nil {
		g.logger.Error("failed to write challenge body", zap.Error(err))
	}
}

func (g *Gate) enqueueSettlement(r *http.Request, payload *PaymentPayload) {
	requirements := g.cfg.Requirements
	event := &SettlementEvent{
		RequestID:    r.Header.Get("X-Request-ID"),
		Payload:      payload,
		Requirements: &requirements,
	}

	select {
	case g.cfg.SettlementEvents <- event:
	default:
		g.logger.Warn("settlement event dropped, buffer full",
			zap.String("request_id", event.RequestID))
	}
}

// settleSync runs settlement within the request path, bounded by the
// settler's own timeout. Errors are logged only; the resource has already
// been produced and the 200 must stand.
func (g *Gate) settleSync(payload *PaymentPayload) (string, bool) {
	receipt, err := g.cfg.Settler.Settle(context.Background(), payload, &g.cfg.Requirements)
	if err != nil {
		g.logger.Error("synchronous settlement failed", zap.Error(err))
		return "", false
	}
	if !receipt.Success {
		g.logger.Error("synchronous settlement rejected",
			zap.String("reason", receipt.ErrorReason))
		return "", false
	}

	return receipt.EncodeHeader(), true
}

// gatedWriter observes the handler's status code. In sync mode it settles
// just before a 200 is committed so the receipt header can still be set.
type gatedWriter struct {
	http.ResponseWriter
	gate    *Gate
	payload *PaymentPayload
	status  int
}

func (w *gatedWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status

		if status == http.StatusOK && w.gate.cfg.SettlementMode == SettlementSync && w.gate.cfg.Settler != nil {
			if receipt, ok := w.gate.settleSync(w.payload); ok {
				w.Header().Set(HeaderPaymentResponse, receipt)
			}
		}
	}

	w.ResponseWriter.WriteHeader(status)
}

func (w *gatedWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}

	return w.ResponseWriter.Write(b)
}

func (w *gatedWriter) fulfilled() bool {
	return w.status == http.StatusOK
}
