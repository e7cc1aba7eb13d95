package x402

import "errors"

// Gate failure taxonomy. Each maps to a 402 response carrying the error
// text as the challenge reason; handler failures map to a generic 500.
var (
	ErrMissingEvidence        = errors.New("missing payment evidence")
	ErrMalformedEvidence      = errors.New("invalid payment evidence")
	ErrFacilitatorRejected    = errors.New("payment rejected by facilitator")
	ErrFacilitatorUnreachable = errors.New("payment facilitator unreachable")
)
