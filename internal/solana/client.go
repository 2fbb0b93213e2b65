// Package solana wraps the chain RPC calls the agent needs: authoritative
// mint lookups by address, plus balance queries for the CLI.
package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/bh2smith/jupiter-agent/internal/apierr"
	"github.com/bh2smith/jupiter-agent/internal/tokens"
)

// Token program owners accepted for mint accounts.
var (
	tokenProgramID     = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// mintAccountSize is the fixed size of an SPL mint account. Token-2022
// mints with extensions are larger; anything shorter is not a mint.
const mintAccountSize = 82

// Client wraps the Solana RPC client.
type Client struct {
	rpc     *rpc.Client
	timeout time.Duration
}

// NewClient creates a new Solana client. timeout bounds each RPC call;
// zero disables the bound.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		rpc:     rpc.New(endpoint),
		timeout: timeout,
	}
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// GetBalance returns the balance of an account in lamports.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	result, err := c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

// GetBalanceSOL returns the balance in SOL (not lamports).
func (c *Client) GetBalanceSOL(ctx context.Context, pubkey solana.PublicKey) (float64, error) {
	lamports, err := c.GetBalance(ctx, pubkey)
	if err != nil {
		return 0, err
	}
	return float64(lamports) / float64(solana.LAMPORTS_PER_SOL), nil
}

// FetchMint fetches the account at mint and decodes it as an SPL mint.
// An account that is missing, not owned by a token program, or not
// decodable as a mint yields a MintDecodeError: the address exists but
// does not name a token, which is distinct from "token not found".
func (c *Client) FetchMint(ctx context.Context, mint solana.PublicKey) (tokens.TokenInfo, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	result, err := c.rpc.GetAccountInfo(ctx, mint)
	if errors.Is(err, rpc.ErrNotFound) {
		return tokens.TokenInfo{}, &apierr.MintDecodeError{Address: mint.String(), Err: err}
	}
	if err != nil {
		return tokens.TokenInfo{}, fmt.Errorf("failed to get account info for %s: %w", mint, err)
	}
	if result == nil || result.Value == nil {
		return tokens.TokenInfo{}, &apierr.MintDecodeError{
			Address: mint.String(),
			Err:     fmt.Errorf("no account data"),
		}
	}

	acc := result.Value
	if !acc.Owner.Equals(tokenProgramID) && !acc.Owner.Equals(token2022ProgramID) {
		return tokens.TokenInfo{}, &apierr.MintDecodeError{
			Address: mint.String(),
			Err:     fmt.Errorf("account owned by %s, not a token program", acc.Owner),
		}
	}

	data := acc.Data.GetBinary()
	if len(data) < mintAccountSize {
		return tokens.TokenInfo{}, &apierr.MintDecodeError{
			Address: mint.String(),
			Err:     fmt.Errorf("account data too short: %d bytes", len(data)),
		}
	}

	var m token.Mint
	if err := bin.NewBinDecoder(data).Decode(&m); err != nil {
		return tokens.TokenInfo{}, &apierr.MintDecodeError{Address: mint.String(), Err: err}
	}

	return tokens.TokenInfo{Address: mint, Decimals: m.Decimals}, nil
}
