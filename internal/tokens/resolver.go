package tokens

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/bh2smith/jupiter-agent/internal/common"
	"github.com/bh2smith/jupiter-agent/internal/jupiter"
	"github.com/bh2smith/jupiter-agent/internal/metrics"
)

// LookupKind tags the outcome of a resolution.
type LookupKind int

const (
	// KindResolved means the reference mapped to exactly one token.
	KindResolved LookupKind = iota
	// KindCandidates means the reference is ambiguous; the caller must
	// disambiguate between the carried candidates.
	KindCandidates
	// KindNotFound means nothing matched. This is a business outcome,
	// not an error.
	KindNotFound
)

// LookupResult is a tagged variant: exactly one case is active, per Kind.
type LookupResult struct {
	Kind       LookupKind
	Token      TokenInfo
	Candidates []jupiter.MintInformation
}

// Resolved builds a successful lookup result.
func Resolved(t TokenInfo) LookupResult {
	return LookupResult{Kind: KindResolved, Token: t}
}

// Ambiguous builds a candidates result. The set must be non-empty.
func Ambiguous(candidates []jupiter.MintInformation) LookupResult {
	return LookupResult{Kind: KindCandidates, Candidates: candidates}
}

// NotFound builds the not-found result.
func NotFound() LookupResult {
	return LookupResult{Kind: KindNotFound}
}

// MintFetcher is the authoritative account-data lookup for an address
// that is syntactically a public key.
type MintFetcher interface {
	FetchMint(ctx context.Context, mint solana.PublicKey) (TokenInfo, error)
}

// MintSearcher is the remote fuzzy search over token symbols.
type MintSearcher interface {
	SearchMints(ctx context.Context, query string) ([]jupiter.MintInformation, error)
}

// Resolver turns a symbol-or-address reference into a LookupResult.
type Resolver struct {
	common.LoggerMixin

	registry Registry
	chain    MintFetcher
	search   MintSearcher
	minScore float64
	metrics  metrics.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMinScore sets the default organic-score threshold used to narrow
// ambiguous search results.
func WithMinScore(minScore float64) ResolverOption {
	return func(r *Resolver) { r.minScore = minScore }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// DefaultMinScore is the organic-score threshold applied when no override
// is configured.
const DefaultMinScore = 95

// NewResolver creates a resolver over a curated registry, a chain lookup
// and a remote search.
func NewResolver(registry Registry, chain MintFetcher, search MintSearcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		LoggerMixin: common.NewLoggerMixin(),
		registry:    registry,
		chain:       chain,
		search:      search,
		minScore:    DefaultMinScore,
		metrics:     metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves ref with the resolver's default score threshold.
func (r *Resolver) Resolve(ctx context.Context, ref string) (LookupResult, error) {
	return r.ResolveWithScore(ctx, ref, r.minScore)
}

// ResolveWithScore resolves a symbol-or-address reference, short-circuiting
// on the first authoritative match:
//
//  1. A syntactically valid address is looked up on chain. A decode
//     failure there is fatal, not a NotFound.
//  2. A curated registry hit wins without any network call.
//  3. Otherwise the remote fuzzy search decides: zero results is NotFound,
//     one result resolves (ID and decimals both required), and multiple
//     results are narrowed by the relaxed score filter — an empty filtered
//     set returns the full candidate list, a single survivor resolves, and
//     anything else stays ambiguous.
func (r *Resolver) ResolveWithScore(ctx context.Context, ref string, minScore float64) (LookupResult, error) {
	_ = r.metrics.IncrementCounter(ctx, metrics.MetricTokenResolutions, 1)

	if pk, err := solana.PublicKeyFromBase58(ref); err == nil {
		info, err := r.chain.FetchMint(ctx, pk)
		if err != nil {
			return LookupResult{}, err
		}
		return Resolved(info), nil
	}

	if info, ok := r.registry.Lookup(ref); ok {
		return Resolved(info), nil
	}

	r.GetLogger().Info("searching remote token index", "query", ref)
	results, err := r.search.SearchMints(ctx, ref)
	if err != nil {
		return LookupResult{}, err
	}

	switch len(results) {
	case 0:
		r.GetLogger().Warn("no tokens matching search", "query", ref)
		return NotFound(), nil
	case 1:
		info, err := asTokenInfo(results[0])
		if err != nil {
			return LookupResult{}, err
		}
		return Resolved(info), nil
	}

	filtered := jupiter.Filter(results, jupiter.RelaxedScoreFilter(ref, minScore))
	switch len(filtered) {
	case 0:
		// Nothing stood out; let the caller disambiguate the full set.
		_ = r.metrics.IncrementCounter(ctx, metrics.MetricAmbiguousResolutions, 1)
		return Ambiguous(results), nil
	case 1:
		info, err := asTokenInfo(filtered[0])
		if err != nil {
			return LookupResult{}, err
		}
		return Resolved(info), nil
	default:
		_ = r.metrics.IncrementCounter(ctx, metrics.MetricAmbiguousResolutions, 1)
		return Ambiguous(filtered), nil
	}
}

// asTokenInfo converts a search result into TokenInfo. A result missing
// its identifier or decimals cannot be traded against and fails loudly
// instead of defaulting.
func asTokenInfo(m jupiter.MintInformation) (TokenInfo, error) {
	if m.ID == "" || m.Decimals == nil {
		return TokenInfo{}, fmt.Errorf("insufficient token data for %q (id=%q)", m.Symbol, m.ID)
	}
	if *m.Decimals < 0 || *m.Decimals > 255 {
		return TokenInfo{}, fmt.Errorf("search result %q has invalid decimals %d", m.Symbol, *m.Decimals)
	}
	pk, err := solana.PublicKeyFromBase58(m.ID)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("search result %q has invalid mint %q: %w", m.Symbol, m.ID, err)
	}
	return TokenInfo{Address: pk, Decimals: uint8(*m.Decimals)}, nil
}
