// Package agent composes token resolution and the swap client into one
// quote-and-swap cycle: two concurrent resolutions, then quote, then an
// unsigned swap transaction.
package agent

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/bh2smith/jupiter-agent/internal/apierr"
	"github.com/bh2smith/jupiter-agent/internal/common"
	"github.com/bh2smith/jupiter-agent/internal/jupiter"
	"github.com/bh2smith/jupiter-agent/internal/metrics"
	"github.com/bh2smith/jupiter-agent/internal/tokens"
)

// QuoteQuery is the caller's request: a user address, two token
// references (symbol or address), and a positive amount in human units
// of the sell token.
type QuoteQuery struct {
	SolAddress string  `json:"solAddress"`
	InputMint  string  `json:"inputMint"`
	OutputMint string  `json:"outputMint"`
	Amount     float64 `json:"amount"`
}

// ParsedQuoteQuery is the post-resolution form: both sides are canonical
// mint addresses and the amount is in atomic units of the sell token.
// Only constructible once both sides resolve to a single token.
type ParsedQuoteQuery struct {
	SolAddress   string
	InputMint    string
	OutputMint   string
	AtomicAmount uint64
}

// TokenCandidates aggregates ambiguous resolutions per trade side. A side
// that resolved cleanly carries an empty (non-nil) list.
type TokenCandidates struct {
	Buy  []jupiter.MintInformation `json:"buy"`
	Sell []jupiter.MintInformation `json:"sell"`
}

// Outcome is the tagged result of a run: exactly one field is set.
// Executable carries the quote and unsigned swap payload; Candidates
// asks the caller to disambiguate first.
type Outcome struct {
	Executable *jupiter.SwapResult
	Candidates *TokenCandidates
}

// TokenResolver resolves one token reference.
type TokenResolver interface {
	Resolve(ctx context.Context, ref string) (tokens.LookupResult, error)
}

// Swapper runs the quote-then-swap sequence against the aggregator.
type Swapper interface {
	SwapFlow(ctx context.Context, p jupiter.SwapFlowParams) (*jupiter.SwapResult, error)
}

// Orchestrator runs quote queries end to end. Stateless across calls.
type Orchestrator struct {
	common.LoggerMixin

	resolver TokenResolver
	swapper  Swapper
	metrics  metrics.Metrics
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithMetrics attaches a metrics sink.
func WithMetrics(m metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// NewOrchestrator creates an orchestrator over a resolver and a swapper.
func NewOrchestrator(resolver TokenResolver, swapper Swapper, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		LoggerMixin: common.NewLoggerMixin(),
		resolver:    resolver,
		swapper:     swapper,
		metrics:     metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run resolves both sides of the trade concurrently and, if both resolve
// cleanly, quotes and builds the unsigned swap.
//
// Outcome precedence is deterministic: a sell-side failure is reported
// before a buy-side one, and NotFound wins over ambiguity. No provider
// calls happen once either side is NotFound or ambiguous.
func (o *Orchestrator) Run(ctx context.Context, q QuoteQuery) (*Outcome, error) {
	_ = o.metrics.IncrementCounter(ctx, metrics.MetricQuoteRequests, 1)

	var (
		sellRes, buyRes tokens.LookupResult
		sellErr, buyErr error
		wg              sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sellRes, sellErr = o.resolver.Resolve(ctx, q.InputMint)
	}()
	go func() {
		defer wg.Done()
		buyRes, buyErr = o.resolver.Resolve(ctx, q.OutputMint)
	}()
	wg.Wait()

	if sellErr != nil {
		return nil, sellErr
	}
	if buyErr != nil {
		return nil, buyErr
	}

	if sellRes.Kind == tokens.KindNotFound {
		_ = o.metrics.IncrementCounter(ctx, metrics.MetricTokensNotFound, 1)
		return nil, &apierr.TokenNotFoundError{Side: apierr.SideSell, Ref: q.InputMint}
	}
	if buyRes.Kind == tokens.KindNotFound {
		_ = o.metrics.IncrementCounter(ctx, metrics.MetricTokensNotFound, 1)
		return nil, &apierr.TokenNotFoundError{Side: apierr.SideBuy, Ref: q.OutputMint}
	}

	if sellRes.Kind == tokens.KindCandidates || buyRes.Kind == tokens.KindCandidates {
		candidates := &TokenCandidates{
			Buy:  []jupiter.MintInformation{},
			Sell: []jupiter.MintInformation{},
		}
		if sellRes.Kind == tokens.KindCandidates {
			o.GetLogger().Info("ambiguous sell token", "ref", q.InputMint, "candidates", len(sellRes.Candidates))
			candidates.Sell = sellRes.Candidates
		}
		if buyRes.Kind == tokens.KindCandidates {
			o.GetLogger().Info("ambiguous buy token", "ref", q.OutputMint, "candidates", len(buyRes.Candidates))
			candidates.Buy = buyRes.Candidates
		}
		return &Outcome{Candidates: candidates}, nil
	}

	atomic, err := atomicAmount(q.Amount, sellRes.Token.Decimals)
	if err != nil {
		return nil, err
	}
	parsed := ParsedQuoteQuery{
		SolAddress:   q.SolAddress,
		InputMint:    sellRes.Token.Address.String(),
		OutputMint:   buyRes.Token.Address.String(),
		AtomicAmount: atomic,
	}
	o.GetLogger().Info("tokens resolved",
		"inputMint", parsed.InputMint,
		"outputMint", parsed.OutputMint,
		"atomicAmount", parsed.AtomicAmount,
	)

	result, err := o.swapper.SwapFlow(ctx, jupiter.SwapFlowParams{
		UserPublicKey: parsed.SolAddress,
		InputMint:     parsed.InputMint,
		OutputMint:    parsed.OutputMint,
		Amount:        parsed.AtomicAmount,
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Executable: result}, nil
}

// atomicAmount converts a human-unit amount into atomic units of the
// sell token. Rounded to absorb float representation error. The scaled
// value must fit in uint64; conversion of an out-of-range float is
// unspecified, so the bound is checked before converting.
func atomicAmount(amount float64, decimals uint8) (uint64, error) {
	v := math.Round(amount * math.Pow10(int(decimals)))
	if math.IsNaN(v) || v < 0 || v >= math.MaxUint64 {
		return 0, fmt.Errorf("amount %g exceeds the %d-decimal atomic range", amount, decimals)
	}
	return uint64(v), nil
}
