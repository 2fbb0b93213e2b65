package agent

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bh2smith/jupiter-agent/internal/apierr"
	"github.com/bh2smith/jupiter-agent/internal/jupiter"
	"github.com/bh2smith/jupiter-agent/internal/tokens"
)

const (
	usdcAddress = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	wsolAddress = "So11111111111111111111111111111111111111112"
	testUser    = "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"
)

// stubResolver resolves by exact reference from a fixed table.
type stubResolver struct {
	mu      sync.Mutex
	results map[string]tokens.LookupResult
	errs    map[string]error
	calls   []string
}

func (s *stubResolver) Resolve(_ context.Context, ref string) (tokens.LookupResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ref)
	s.mu.Unlock()
	if err, ok := s.errs[ref]; ok {
		return tokens.LookupResult{}, err
	}
	return s.results[ref], nil
}

type stubSwapper struct {
	result *jupiter.SwapResult
	err    error
	got    []jupiter.SwapFlowParams
}

func (s *stubSwapper) SwapFlow(_ context.Context, p jupiter.SwapFlowParams) (*jupiter.SwapResult, error) {
	s.got = append(s.got, p)
	return s.result, s.err
}

func resolved(address string, decimals uint8) tokens.LookupResult {
	return tokens.Resolved(tokens.TokenInfo{
		Address:  solana.MustPublicKeyFromBase58(address),
		Decimals: decimals,
	})
}

func candidates(symbols ...string) tokens.LookupResult {
	mints := make([]jupiter.MintInformation, len(symbols))
	for i, sym := range symbols {
		mints[i] = jupiter.MintInformation{ID: sym + "-mint", Symbol: sym}
	}
	return tokens.Ambiguous(mints)
}

func TestRun_HappyPath(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"USDC": resolved(usdcAddress, 6),
		"SOL":  resolved(wsolAddress, 9),
	}}
	swapper := &stubSwapper{result: &jupiter.SwapResult{}}
	o := NewOrchestrator(resolver, swapper)

	outcome, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "USDC",
		OutputMint: "SOL",
		Amount:     1.0,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Executable)
	assert.Nil(t, outcome.Candidates)

	require.Len(t, swapper.got, 1)
	p := swapper.got[0]
	assert.Equal(t, testUser, p.UserPublicKey)
	assert.Equal(t, usdcAddress, p.InputMint)
	assert.Equal(t, wsolAddress, p.OutputMint)
	assert.Equal(t, uint64(1_000_000), p.Amount)
}

func TestRun_AtomicAmountUsesSellDecimals(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"SOL":  resolved(wsolAddress, 9),
		"USDC": resolved(usdcAddress, 6),
	}}
	swapper := &stubSwapper{result: &jupiter.SwapResult{}}
	o := NewOrchestrator(resolver, swapper)

	_, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "SOL",
		OutputMint: "USDC",
		Amount:     0.5,
	})
	require.NoError(t, err)
	require.Len(t, swapper.got, 1)
	assert.Equal(t, uint64(500_000_000), swapper.got[0].Amount)
}

func TestRun_SellNotFound(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"NOPE": tokens.NotFound(),
		"USDC": resolved(usdcAddress, 6),
	}}
	swapper := &stubSwapper{}
	o := NewOrchestrator(resolver, swapper)

	_, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "NOPE",
		OutputMint: "USDC",
		Amount:     1,
	})
	var notFound *apierr.TokenNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, apierr.SideSell, notFound.Side)
	assert.Equal(t, "NOPE", notFound.Ref)
	assert.Empty(t, swapper.got)
}

func TestRun_SellNotFoundReportedBeforeBuy(t *testing.T) {
	// Both sides miss; the sell side wins deterministically.
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"NOPE1": tokens.NotFound(),
		"NOPE2": tokens.NotFound(),
	}}
	o := NewOrchestrator(resolver, &stubSwapper{})

	for range 20 {
		_, err := o.Run(context.Background(), QuoteQuery{
			SolAddress: testUser,
			InputMint:  "NOPE1",
			OutputMint: "NOPE2",
			Amount:     1,
		})
		var notFound *apierr.TokenNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, apierr.SideSell, notFound.Side)
		assert.Equal(t, "NOPE1", notFound.Ref)
	}
}

func TestRun_SellErrorReportedBeforeBuyError(t *testing.T) {
	sellErr := errors.New("sell side broke")
	buyErr := errors.New("buy side broke")
	resolver := &stubResolver{errs: map[string]error{
		"A": sellErr,
		"B": buyErr,
	}}
	o := NewOrchestrator(resolver, &stubSwapper{})

	for range 20 {
		_, err := o.Run(context.Background(), QuoteQuery{
			SolAddress: testUser,
			InputMint:  "A",
			OutputMint: "B",
			Amount:     1,
		})
		assert.ErrorIs(t, err, sellErr)
	}
}

func TestRun_NotFoundBeatsCandidates(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"MANY": candidates("X", "Y"),
		"NOPE": tokens.NotFound(),
	}}
	o := NewOrchestrator(resolver, &stubSwapper{})

	_, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "MANY",
		OutputMint: "NOPE",
		Amount:     1,
	})
	var notFound *apierr.TokenNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, apierr.SideBuy, notFound.Side)
}

func TestRun_CandidatesAggregateBothSides(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"MANY1": candidates("A", "B"),
		"MANY2": candidates("C"),
	}}
	swapper := &stubSwapper{}
	o := NewOrchestrator(resolver, swapper)

	outcome, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "MANY1",
		OutputMint: "MANY2",
		Amount:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Candidates)
	assert.Nil(t, outcome.Executable)
	assert.Len(t, outcome.Candidates.Sell, 2)
	assert.Len(t, outcome.Candidates.Buy, 1)
	// No quoting happens while ambiguity is unresolved.
	assert.Empty(t, swapper.got)
}

func TestRun_ResolvedSideCarriesEmptyList(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"USDC": resolved(usdcAddress, 6),
		"MANY": candidates("A", "B"),
	}}
	o := NewOrchestrator(resolver, &stubSwapper{})

	outcome, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "USDC",
		OutputMint: "MANY",
		Amount:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Candidates)
	assert.NotNil(t, outcome.Candidates.Sell)
	assert.Empty(t, outcome.Candidates.Sell)
	assert.Len(t, outcome.Candidates.Buy, 2)
}

func TestRun_BothSidesResolvedConcurrently(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"USDC": resolved(usdcAddress, 6),
		"SOL":  resolved(wsolAddress, 9),
	}}
	o := NewOrchestrator(resolver, &stubSwapper{result: &jupiter.SwapResult{}})

	_, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "USDC",
		OutputMint: "SOL",
		Amount:     1,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"USDC", "SOL"}, resolver.calls)
}

func TestRun_SwapFailurePropagates(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"USDC": resolved(usdcAddress, 6),
		"SOL":  resolved(wsolAddress, 9),
	}}
	swapErr := errors.New("no route")
	o := NewOrchestrator(resolver, &stubSwapper{err: swapErr})

	_, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "USDC",
		OutputMint: "SOL",
		Amount:     1,
	})
	assert.ErrorIs(t, err, swapErr)
}

func TestAtomicAmount(t *testing.T) {
	cases := []struct {
		amount   float64
		decimals uint8
		want     uint64
	}{
		{1, 6, 1_000_000},
		{1.5, 9, 1_500_000_000},
		{1, 0, 1},
		// 0.1 has no exact binary representation; rounding absorbs it.
		{0.1, 6, 100_000},
	}
	for _, tc := range cases {
		got, err := atomicAmount(tc.amount, tc.decimals)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestAtomicAmount_OutOfRange(t *testing.T) {
	// Scaled past uint64; the float-to-integer conversion would be
	// unspecified, so it must be rejected instead.
	_, err := atomicAmount(1e30, 9)
	assert.Error(t, err)

	_, err = atomicAmount(2e19, 0)
	assert.Error(t, err)

	_, err = atomicAmount(math.NaN(), 6)
	assert.Error(t, err)
}

func TestRun_OversizedAmountNeverReachesSwap(t *testing.T) {
	resolver := &stubResolver{results: map[string]tokens.LookupResult{
		"USDC": resolved(usdcAddress, 6),
		"SOL":  resolved(wsolAddress, 9),
	}}
	swapper := &stubSwapper{result: &jupiter.SwapResult{}}
	o := NewOrchestrator(resolver, swapper)

	_, err := o.Run(context.Background(), QuoteQuery{
		SolAddress: testUser,
		InputMint:  "USDC",
		OutputMint: "SOL",
		Amount:     1e30,
	})
	require.Error(t, err)
	assert.Empty(t, swapper.got)
}
