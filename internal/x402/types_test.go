package x402

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	t.Run("base64 wrapped authorization", func(t *testing.T) {
		raw := `{"signature":"0xabc","authorization":{"from":"0x1","to":"0x2","value":"100000","nonce":"0x9"}}`
		header := base64.StdEncoding.EncodeToString([]byte(raw))

		payload, err := ParsePayload(header)
		require.NoError(t, err)
		require.NotNil(t, payload.Authorization)
		assert.Equal(t, "0x1", payload.Authorization.From)
		assert.Equal(t, "0xabc", payload.Signature)
		assert.JSONEq(t, raw, string(payload.Raw()))
	})

	t.Run("bare JSON with legacy tx_hash", func(t *testing.T) {
		payload, err := ParsePayload(`{"tx_hash":"0xdeadbeef"}`)
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", payload.TransactionHash())
	})

	t.Run("canonical txHash wins over legacy", func(t *testing.T) {
		payload, err := ParsePayload(`{"txHash":"0x1","tx_hash":"0x2"}`)
		require.NoError(t, err)
		assert.Equal(t, "0x1", payload.TransactionHash())
	})

	t.Run("not JSON at all", func(t *testing.T) {
		_, err := ParsePayload("definitely not payment evidence")
		assert.ErrorIs(t, err, ErrMalformedEvidence)
	})

	t.Run("JSON without any evidence fields", func(t *testing.T) {
		_, err := ParsePayload(`{"hello":"world"}`)
		assert.ErrorIs(t, err, ErrMalformedEvidence)
	})

	t.Run("base64 of garbage", func(t *testing.T) {
		header := base64.StdEncoding.EncodeToString([]byte("garbage"))
		_, err := ParsePayload(header)
		assert.ErrorIs(t, err, ErrMalformedEvidence)
	})
}

func TestChallengeEncodeHeader(t *testing.T) {
	challenge := &Challenge{
		X402Version: Version,
		Error:       "missing payment evidence",
		Resource: Resource{
			URL:         "/find",
			Description: "ranked providers",
			MimeType:    "application/json",
		},
		Accepts: []PaymentRequirements{{
			Scheme:            "exact",
			Network:           "eip155:8453",
			Asset:             "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
			Amount:            "100000",
			PayTo:             "0xb3e17988e6eE4D31e6D07decf363f736461d9e08",
			MaxTimeoutSeconds: 300,
		}},
	}

	decoded, err := base64.StdEncoding.DecodeString(challenge.EncodeHeader())
	require.NoError(t, err)

	var roundTripped Challenge
	require.NoError(t, json.Unmarshal(decoded, &roundTripped))

	assert.Equal(t, 2, roundTripped.X402Version)
	require.Len(t, roundTripped.Accepts, 1)
	assert.Equal(t, "100000", roundTripped.Accepts[0].Amount)
	assert.Equal(t, "eip155:8453", roundTripped.Accepts[0].Network)
}
