package x402

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

// Verifier confirms payment evidence against requirements. Implementations
// must honor the context deadline semantics of their transport; the gate
// treats any transport error as facilitator unreachability.
type Verifier interface {
	Verify(ctx context.Context, payload *PaymentPayload, requirements *PaymentRequirements) (*Outcome, error)
}

// Settler reports a verified payment for settlement.
type Settler interface {
	Settle(ctx context.Context, payload *PaymentPayload, requirements *PaymentRequirements) (*SettlementReceipt, error)
}

// FacilitatorClient talks to an external x402 facilitator over HTTP.
type FacilitatorClient struct {
	url           string
	verifyTimeout time.Duration
	settleTimeout time.Duration
	client        *fasthttp.Client
}

func NewFacilitatorClient(url string, verifyTimeout, settleTimeout time.Duration) *FacilitatorClient {
	return &FacilitatorClient{
		url:           url,
		verifyTimeout: verifyTimeout,
		settleTimeout: settleTimeout,
		client:        &fasthttp.Client{},
	}
}

type verifyRequest struct {
	X402Version         int                  `json:"x402Version"`
	PaymentPayload      json.RawMessage      `json:"paymentPayload"`
	PaymentRequirements *PaymentRequirements `json:"paymentRequirements"`
}

type verifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
}

// Verify calls the facilitator's synchronous verification endpoint. A
// transport failure or non-200 status is returned as an error; the caller
// decides the unreachability policy.
func (c *FacilitatorClient) Verify(ctx context.Context, payload *PaymentPayload, requirements *PaymentRequirements) (*Outcome, error) {
	body, err := c.post("/verify", &verifyRequest{
		X402Version:         Version,
		PaymentPayload:      json.RawMessage(payload.Raw()),
		PaymentRequirements: requirements,
	}, c.verifyTimeout)
	if err != nil {
		return nil, err
	}

	var resp verifyResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verify response: %w", err)
	}

	if !resp.IsValid {
		reason := resp.InvalidReason
		if reason == "" {
			reason = ErrFacilitatorRejected.Error()
		}
		return &Outcome{Accepted: false, Reason: reason}, nil
	}

	return &Outcome{Accepted: true}, nil
}

// Settle calls the facilitator's settlement endpoint. Settlement failures
// are reported in the receipt, never as a request failure.
func (c *FacilitatorClient) Settle(ctx context.Context, payload *PaymentPayload, requirements *PaymentRequirements) (*SettlementReceipt, error) {
	body, err := c.post("/settle", &verifyRequest{
		X402Version:         Version,
		PaymentPayload:      json.RawMessage(payload.Raw()),
		PaymentRequirements: requirements,
	}, c.settleTimeout)
	if err != nil {
		return nil, err
	}

	var receipt SettlementReceipt
	if err := sonic.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("failed to parse settle response: %w", err)
	}

	return &receipt, nil
}

func (c *FacilitatorClient) post(path string, request any, timeout time.Duration) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	payload, err := sonic.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal facilitator request: %w", err)
	}

	req.SetRequestURI(c.url + path)
	req.Header.SetMethod(http.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("facilitator request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("facilitator request failed with status code: %d", statusCode)
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())

	return out, nil
}
