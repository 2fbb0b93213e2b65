package jupiter

import (
	"encoding/json"
)

// MintInformation is a token descriptor returned by the aggregator's
// search endpoint. Decimals is a pointer so an absent field can be told
// apart from zero; resolution treats a missing ID or decimals as fatal.
type MintInformation struct {
	ID                string   `json:"id"`
	Name              string   `json:"name,omitempty"`
	Symbol            string   `json:"symbol"`
	Icon              string   `json:"icon,omitempty"`
	Decimals          *int     `json:"decimals"`
	OrganicScore      float64  `json:"organicScore"`
	OrganicScoreLabel string   `json:"organicScoreLabel,omitempty"`
	UsdPrice          *float64 `json:"usdPrice,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// QuoteParams are the inputs to a quote request. Passed by value
// throughout so native-asset substitution never mutates a caller's copy.
type QuoteParams struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // atomic units of the input mint
	SlippageBps uint16 // 0 leaves slippage to the provider's dynamic mode
}

// QuoteResponse carries the provider's route and pricing data. The
// payload is opaque: the raw bytes are retained and re-serialized
// unchanged, while a handful of summary fields are parsed out for logging
// and display only.
type QuoteResponse struct {
	raw     json.RawMessage
	summary quoteSummary
}

type quoteSummary struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
}

// UnmarshalJSON keeps the raw payload and parses the summary fields.
func (q *QuoteResponse) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &q.summary); err != nil {
		return err
	}
	q.raw = append(q.raw[:0:0], data...)
	return nil
}

// MarshalJSON re-emits the provider payload byte for byte.
func (q QuoteResponse) MarshalJSON() ([]byte, error) {
	if len(q.raw) == 0 {
		return []byte("null"), nil
	}
	return q.raw, nil
}

// Empty reports whether the quote carries no payload.
func (q QuoteResponse) Empty() bool { return len(q.raw) == 0 }

// InputMint returns the quoted input mint address.
func (q QuoteResponse) InputMint() string { return q.summary.InputMint }

// OutputMint returns the quoted output mint address.
func (q QuoteResponse) OutputMint() string { return q.summary.OutputMint }

// InAmount returns the quoted input amount in atomic units.
func (q QuoteResponse) InAmount() string { return q.summary.InAmount }

// OutAmount returns the quoted output amount in atomic units.
func (q QuoteResponse) OutAmount() string { return q.summary.OutAmount }

// SwapResponse carries the unsigned transaction built by the provider.
// Like QuoteResponse it is passed through opaquely.
type SwapResponse struct {
	raw     json.RawMessage
	summary swapSummary
}

type swapSummary struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// UnmarshalJSON keeps the raw payload and parses the summary fields.
func (s *SwapResponse) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &s.summary); err != nil {
		return err
	}
	s.raw = append(s.raw[:0:0], data...)
	return nil
}

// MarshalJSON re-emits the provider payload byte for byte.
func (s SwapResponse) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// SwapTransaction returns the base64-encoded unsigned transaction.
func (s SwapResponse) SwapTransaction() string { return s.summary.SwapTransaction }

// LastValidBlockHeight returns the height up to which the transaction is valid.
func (s SwapResponse) LastValidBlockHeight() uint64 { return s.summary.LastValidBlockHeight }

// SwapFlowParams are the fully resolved inputs to the quote-then-swap
// sequence: both sides are canonical mint addresses and the amount is in
// atomic units of the input mint.
type SwapFlowParams struct {
	UserPublicKey string
	InputMint     string
	OutputMint    string
	Amount        uint64
}

// SwapResult is the outcome of a successful quote-then-swap sequence.
type SwapResult struct {
	Quote QuoteResponse `json:"quote"`
	Swap  SwapResponse  `json:"swapResponse"`
}

// swapRequest is the wire shape of the provider's swap endpoint.
type swapRequest struct {
	QuoteResponse             QuoteResponse     `json:"quoteResponse"`
	UserPublicKey             string            `json:"userPublicKey"`
	WrapAndUnwrapSol          bool              `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit   bool              `json:"dynamicComputeUnitLimit"`
	DynamicSlippage           bool              `json:"dynamicSlippage"`
	PrioritizationFeeLamports prioritizationFee `json:"prioritizationFeeLamports"`
}

type prioritizationFee struct {
	PriorityLevelWithMaxLamports priorityLevelWithMaxLamports `json:"priorityLevelWithMaxLamports"`
}

type priorityLevelWithMaxLamports struct {
	MaxLamports   uint64 `json:"maxLamports"`
	PriorityLevel string `json:"priorityLevel"`
}
