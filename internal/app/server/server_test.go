package server_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finderworks/x402-finder/internal/app/finder"
	"finderworks/x402-finder/internal/app/server"
	"finderworks/x402-finder/internal/config"
	"finderworks/x402-finder/internal/models"
	"finderworks/x402-finder/internal/x402"
)

func newTestHandler(t *testing.T, verifier x402.Verifier) http.Handler {
	t.Helper()

	cfg := config.NewConfig()
	gate := x402.NewGate(x402.GateConfig{
		Requirements: x402.PaymentRequirements{
			Scheme:            "exact",
			Network:           cfg.Payment.Network,
			Asset:             cfg.Payment.Asset,
			Amount:            cfg.Payment.AmountBaseUnits,
			PayTo:             cfg.Payment.PayTo,
			MaxTimeoutSeconds: cfg.Payment.MaxTimeoutSeconds,
		},
		ResourceDescription: "Ranked local service providers with license and review data",
		ProtectedRoutes:     []string{"POST /find"},
		Verifier:            verifier,
	}, zap.NewNop())

	finderService := finder.NewFinder(finder.NewMockSource(), zap.NewNop())

	return server.NewServer(cfg, gate, finderService, zap.NewNop()).Handler()
}

func paymentEvidence() string {
	evidence := `{"authorization": {"from": "0xPayer", "to": "0xb3e17988e6eE4D31e6D07decf363f736461d9e08", "value": "100000", "validAfter": "0", "validBefore": "9999999999", "nonce": "0x1"}, "signature": "0xsigned"}`
	return base64.StdEncoding.EncodeToString([]byte(evidence))
}

func findRequest(t *testing.T, query models.Query) *http.Request {
	t.Helper()

	body, err := json.Marshal(query)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/find", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestOpenRoutesBypassGate(t *testing.T) {
	handler := newTestHandler(t, nil)

	for _, path := range []string{"/", "/health", "/payment-info"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestPaymentInfoExposesRequirements(t *testing.T) {
	handler := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment-info", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var requirements x402.PaymentRequirements
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &requirements))

	assert.Equal(t, "exact", requirements.Scheme)
	assert.Equal(t, "eip155:8453", requirements.Network)
	assert.Equal(t, "100000", requirements.Amount)
	assert.Equal(t, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", requirements.Asset)
}

func TestFindWithoutPaymentIsChallenged(t *testing.T) {
	handler := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, findRequest(t, models.Query{Category: "bookkeeper", Location: "Miami, FL"}))

	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var challenge x402.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))

	assert.Equal(t, 2, challenge.X402Version)
	assert.Equal(t, "/find", challenge.Resource.URL)
	require.Len(t, challenge.Accepts, 1)
	assert.Equal(t, "100000", challenge.Accepts[0].Amount)
	assert.Equal(t, "eip155:8453", challenge.Accepts[0].Network)

	header := w.Header().Get(x402.HeaderPaymentRequired)
	require.NotEmpty(t, header)
	decoded, err := base64.StdEncoding.DecodeString(header)
	require.NoError(t, err)

	var headerChallenge x402.Challenge
	require.NoError(t, json.Unmarshal(decoded, &headerChallenge))
	assert.Equal(t, challenge, headerChallenge)
}

func TestFindWithVerifiedPayment(t *testing.T) {
	facilitator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify", r.URL.Path)
		_, _ = w.Write([]byte(`{"isValid": true}`))
	}))
	t.Cleanup(facilitator.Close)

	verifier := x402.NewFacilitatorClient(facilitator.URL, 2*time.Second, 2*time.Second)
	handler := newTestHandler(t, verifier)

	req := findRequest(t, models.Query{Category: "bookkeeper", Location: "Miami, FL"})
	req.Header.Set(x402.HeaderPayment, paymentEvidence())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.FindResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, "received", result.PaymentStatus)
	assert.Equal(t, "100000", result.PaymentAmount)
	assert.Equal(t, "eip155:8453", result.PaymentNetwork)
	assert.LessOrEqual(t, len(result.Results), 3)
	assert.NotEmpty(t, result.Results)
	assert.Contains(t, result.DataSources, "QuickBooks")
}

func TestFindRejectedPaymentEchoesReason(t *testing.T) {
	facilitator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"isValid": false, "invalidReason": "insufficient funds"}`))
	}))
	t.Cleanup(facilitator.Close)

	verifier := x402.NewFacilitatorClient(facilitator.URL, 2*time.Second, 2*time.Second)
	handler := newTestHandler(t, verifier)

	req := findRequest(t, models.Query{Category: "plumber", Location: "Austin, TX"})
	req.Header.Set(x402.HeaderPayment, paymentEvidence())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var challenge x402.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	assert.Equal(t, "insufficient funds", challenge.Error)
}

func TestFindInvalidBodyAfterPayment(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/find", strings.NewReader("not json"))
	req.Header.Set(x402.HeaderPayment, paymentEvidence())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid request body", body["error"])
}

func TestRootDescribesService(t *testing.T) {
	handler := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "ProviderFinder API", body["name"])
	assert.Equal(t, "0.10 USDC per call", body["price"])
	assert.Equal(t, "eip155:8453", body["network"])
}
