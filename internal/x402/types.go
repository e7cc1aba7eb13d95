// Package x402 implements the payment gate for pay-per-call HTTP routes:
// building machine-readable 402 challenges, validating caller-supplied
// payment evidence and talking to an external facilitator for verification
// and settlement.
package x402

import (
	"encoding/base64"
	"strings"

	"github.com/bytedance/sonic"
)

// Version of the x402 challenge envelope emitted by this service.
const Version = 2

// Header names. X-PAYMENT is the canonical evidence channel; the signature
// alias survives from the first deployment of this API.
const (
	HeaderPayment         = "X-PAYMENT"
	HeaderPaymentLegacy   = "X-Payment-Signature"
	HeaderPaymentRequired = "PAYMENT-REQUIRED"
	HeaderPaymentResponse = "PAYMENT-RESPONSE"
)

// PaymentRequirements describes what a caller must pay. Constructed once
// from configuration and reused for every challenge.
type PaymentRequirements struct {
	Scheme            string         `json:"scheme"`
	Network           string         `json:"network"`
	Asset             string         `json:"asset"`
	Amount            string         `json:"amount"`
	PayTo             string         `json:"payTo"`
	MaxTimeoutSeconds int            `json:"maxTimeoutSeconds"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// Resource describes the paid resource inside a challenge envelope.
type Resource struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Challenge is the 402 response body. The same JSON, base64-encoded, is
// repeated in the PAYMENT-REQUIRED header for clients that parse headers
// rather than bodies.
type Challenge struct {
	X402Version int                   `json:"x402Version"`
	Error       string                `json:"error"`
	Resource    Resource              `json:"resource"`
	Accepts     []PaymentRequirements `json:"accepts"`
}

// EncodeHeader returns the base64 header form of the challenge.
func (c *Challenge) EncodeHeader() string {
	payload, err := sonic.Marshal(c)
	if err != nil {
		return ""
	}

	return base64.StdEncoding.EncodeToString(payload)
}

// Authorization is an EIP-3009 transfer authorization carried in evidence.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// PaymentPayload is caller-supplied payment evidence. Untrusted until
// validated; any one of TxHash, Signature or Authorization makes it
// structurally acceptable.
type PaymentPayload struct {
	TxHash        string         `json:"txHash,omitempty"`
	TxHashLegacy  string         `json:"tx_hash,omitempty"`
	Signature     string         `json:"signature,omitempty"`
	Authorization *Authorization `json:"authorization,omitempty"`

	raw []byte
}

// Raw returns the decoded JSON bytes the payload was parsed from, for
// forwarding to the facilitator verbatim.
func (p *PaymentPayload) Raw() []byte {
	return p.raw
}

// TransactionHash returns the transaction reference under either key.
func (p *PaymentPayload) TransactionHash() string {
	if p.TxHash != "" {
		return p.TxHash
	}

	return p.TxHashLegacy
}

func (p *PaymentPayload) structurallyValid() bool {
	return p.TransactionHash() != "" || p.Signature != "" || p.Authorization != nil
}

// ParsePayload decodes a payment header value. Base64-wrapped JSON is the
// canonical encoding; bare JSON is accepted for legacy clients.
func ParsePayload(header string) (*PaymentPayload, error) {
	raw := []byte(header)
	if decoded, err := base64.StdEncoding.DecodeString(header); err == nil {
		raw = decoded
	} else if !strings.HasPrefix(strings.TrimSpace(header), "{") {
		return nil, ErrMalformedEvidence
	}

	var payload PaymentPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, ErrMalformedEvidence
	}

	if !payload.structurallyValid() {
		return nil, ErrMalformedEvidence
	}

	payload.raw = raw
	return &payload, nil
}

// Outcome is the result of validating evidence against requirements.
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// SettlementReceipt is the facilitator's settlement confirmation, attached
// to fulfilled responses when settlement runs synchronously.
type SettlementReceipt struct {
	Success     bool   `json:"success"`
	Transaction string `json:"transaction,omitempty"`
	Network     string `json:"network,omitempty"`
	Payer       string `json:"payer,omitempty"`
	ErrorReason string `json:"errorReason,omitempty"`
}

// EncodeHeader returns the base64 header form of the receipt.
func (r *SettlementReceipt) EncodeHeader() string {
	payload, err := sonic.Marshal(r)
	if err != nil {
		return ""
	}

	return base64.StdEncoding.EncodeToString(payload)
}
