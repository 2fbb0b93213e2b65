// Package jupiter implements the client for the Jupiter swap aggregator:
// quoting, unsigned-swap building, token search and holdings lookup.
//
// The client is bound once to an optional API key. Keyed clients use the
// paid host, unkeyed ones the free tier. All failures are normalized
// (apierr) before they reach a caller.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bh2smith/jupiter-agent/internal/apierr"
	"github.com/bh2smith/jupiter-agent/internal/common"
	"github.com/bh2smith/jupiter-agent/internal/metrics"
)

// NativeMint is the sentinel the chain uses for its native asset. The
// aggregator only quotes between fungible mints, so it is substituted
// with WrappedNativeMint before any quote call.
const NativeMint = "So11111111111111111111111111111111111111111"

// WrappedNativeMint is the canonical wrapped-SOL mint.
const WrappedNativeMint = "So11111111111111111111111111111111111111112"

const (
	apiHost     = "https://api.jup.ag"
	liteAPIHost = "https://lite-api.jup.ag"

	quotePath  = "/swap/v1/quote"
	swapPath   = "/swap/v1/swap"
	searchPath = "/tokens/v2/search"

	defaultTimeout = 30 * time.Second
)

// Fixed execution hints for built swaps. The fee ceiling is policy, not
// user-configurable: at most 0.01 SOL at the "high" priority tier.
const (
	maxPriorityFeeLamports = 10_000_000
	priorityLevel          = "high"
)

// Client is a stateful wrapper around the aggregator API.
type Client struct {
	common.LoggerMixin

	http    *http.Client
	baseURL string
	apiKey  string
	metrics metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL overrides the API host entirely, including the key-based
// host selection. Used by tests and self-hosted deployments.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m metrics.Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a client bound to the given API key. An empty key
// routes to the free tier host.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		LoggerMixin: common.NewLoggerMixin(),
		http:        &http.Client{Timeout: defaultTimeout},
		apiKey:      apiKey,
		metrics:     metrics.NewNoopMetrics(),
	}
	if apiKey != "" {
		c.baseURL = apiHost
	} else {
		c.baseURL = liteAPIHost
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetQuote requests a quote for the given parameters. Native-asset
// sentinels on either side are replaced with the wrapped mint in the
// outbound request; the returned flag tells the swap step to wrap and
// unwrap. p is taken by value, so the caller's params are never mutated.
func (c *Client) GetQuote(ctx context.Context, p QuoteParams) (QuoteResponse, bool, error) {
	wrapAndUnwrap := false
	if p.InputMint == NativeMint {
		p.InputMint = WrappedNativeMint
		wrapAndUnwrap = true
	}
	if p.OutputMint == NativeMint {
		p.OutputMint = WrappedNativeMint
		wrapAndUnwrap = true
	}

	q := url.Values{}
	q.Set("inputMint", p.InputMint)
	q.Set("outputMint", p.OutputMint)
	q.Set("amount", strconv.FormatUint(p.Amount, 10))
	if p.SlippageBps > 0 {
		q.Set("slippageBps", strconv.FormatUint(uint64(p.SlippageBps), 10))
	}

	var quote QuoteResponse
	if err := c.getJSON(ctx, quotePath, q, &quote); err != nil {
		return QuoteResponse{}, false, c.fail("quote", err)
	}
	c.GetLogger().Debug("quote received",
		"inputMint", quote.InputMint(),
		"outputMint", quote.OutputMint(),
		"inAmount", quote.InAmount(),
		"outAmount", quote.OutAmount(),
	)
	return quote, wrapAndUnwrap, nil
}

// GetSwap builds an unsigned swap transaction for a previously obtained
// quote. Compute-unit limit and slippage are left to the provider's
// dynamic modes; the priority fee is capped by the fixed policy ceiling.
func (c *Client) GetSwap(ctx context.Context, userPublicKey string, quote QuoteResponse, wrapAndUnwrapSol bool) (SwapResponse, error) {
	req := swapRequest{
		QuoteResponse:           quote,
		UserPublicKey:           userPublicKey,
		WrapAndUnwrapSol:        wrapAndUnwrapSol,
		DynamicComputeUnitLimit: true,
		DynamicSlippage:         true,
		PrioritizationFeeLamports: prioritizationFee{
			PriorityLevelWithMaxLamports: priorityLevelWithMaxLamports{
				MaxLamports:   maxPriorityFeeLamports,
				PriorityLevel: priorityLevel,
			},
		},
	}

	var swap SwapResponse
	if err := c.postJSON(ctx, swapPath, req, &swap); err != nil {
		return SwapResponse{}, c.fail("swap", err)
	}
	c.GetLogger().Debug("swap transaction built",
		"user", userPublicKey,
		"lastValidBlockHeight", swap.LastValidBlockHeight(),
	)
	return swap, nil
}

// SwapFlow runs quote then swap in sequence. The swap step is only
// attempted if the quote succeeds; there are no retries.
func (c *Client) SwapFlow(ctx context.Context, p SwapFlowParams) (*SwapResult, error) {
	quote, wrapAndUnwrap, err := c.GetQuote(ctx, QuoteParams{
		InputMint:  p.InputMint,
		OutputMint: p.OutputMint,
		Amount:     p.Amount,
	})
	if err != nil {
		return nil, err
	}

	swap, err := c.GetSwap(ctx, p.UserPublicKey, quote, wrapAndUnwrap)
	if err != nil {
		return nil, err
	}
	_ = c.metrics.IncrementCounter(ctx, metrics.MetricSwapsBuilt, 1)
	return &SwapResult{Quote: quote, Swap: swap}, nil
}

// SearchMints performs the provider's fuzzy token search and returns its
// ranked results unfiltered.
func (c *Client) SearchMints(ctx context.Context, query string) ([]MintInformation, error) {
	q := url.Values{}
	q.Set("query", query)

	var mints []MintInformation
	if err := c.getJSON(ctx, searchPath, q, &mints); err != nil {
		return nil, c.fail("search", err)
	}
	_ = c.metrics.IncrementCounter(ctx, metrics.MetricRemoteSearches, 1)
	return mints, nil
}

// SearchToken searches for a token and applies the relaxed score filter:
// results scoring at least minScore, plus exact symbol matches at half
// that. Usable standalone, independent of full resolution.
func (c *Client) SearchToken(ctx context.Context, query string, minScore float64) ([]MintInformation, error) {
	mints, err := c.SearchMints(ctx, query)
	if err != nil {
		return nil, err
	}
	return Filter(mints, RelaxedScoreFilter(query, minScore)), nil
}

// GetHoldings returns the provider's holdings snapshot for an address,
// passed through without transformation.
func (c *Client) GetHoldings(ctx context.Context, address string) (json.RawMessage, error) {
	var holdings json.RawMessage
	path := fmt.Sprintf("/ultra/v1/holdings/%s", url.PathEscape(address))
	if err := c.getJSON(ctx, path, nil, &holdings); err != nil {
		return nil, c.fail("holdings", err)
	}
	return holdings, nil
}

// fail normalizes and logs a provider failure exactly once.
func (c *Client) fail(op string, err error) error {
	ne := apierr.Normalize(err)
	c.GetLogger().Error("jupiter request failed",
		"op", op,
		"error", ne.Message,
		"status", ne.Status,
		"code", ne.Code,
	)
	_ = c.metrics.IncrementCounter(context.Background(), metrics.MetricProviderErrors, 1)
	return ne
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierr.FromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}
