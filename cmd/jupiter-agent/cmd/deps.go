package cmd

import (
	"time"

	"github.com/bh2smith/jupiter-agent/internal/agent"
	"github.com/bh2smith/jupiter-agent/internal/common"
	"github.com/bh2smith/jupiter-agent/internal/config"
	"github.com/bh2smith/jupiter-agent/internal/jupiter"
	"github.com/bh2smith/jupiter-agent/internal/metrics"
	"github.com/bh2smith/jupiter-agent/internal/solana"
	"github.com/bh2smith/jupiter-agent/internal/tokens"
)

// deps is the wired object graph shared by the subcommands.
type deps struct {
	cfg          *config.Config
	metrics      *metrics.Collection
	chain        *solana.Client
	jupiter      *jupiter.Client
	resolver     *tokens.Resolver
	orchestrator *agent.Orchestrator
}

// buildDeps loads config and wires the agent bottom-up: registry, chain
// client, aggregator client, resolver, orchestrator.
func buildDeps() (*deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := common.NewLogger(cfg.Log.Level, cfg.Log.Format)

	registry, err := tokens.LoadRegistry()
	if err != nil {
		return nil, err
	}
	if cfg.Registry.Overlay != "" {
		if err := registry.ApplyOverlayFile(cfg.Registry.Overlay); err != nil {
			return nil, err
		}
	}

	coll := metrics.NewCollection(metrics.NewLogMetrics(logger))

	chain := solana.NewClient(cfg.Solana.RPC, time.Duration(cfg.Solana.Timeout)*time.Second)

	jupOpts := []jupiter.Option{jupiter.WithMetrics(coll)}
	if cfg.Jupiter.BaseURL != "" {
		jupOpts = append(jupOpts, jupiter.WithBaseURL(cfg.Jupiter.BaseURL))
	}
	jup := jupiter.NewClient(cfg.Jupiter.APIKey, jupOpts...)
	jup.SetLogger(logger)

	resolver := tokens.NewResolver(registry, chain, jup,
		tokens.WithMinScore(cfg.Jupiter.MinTokenScore),
		tokens.WithMetrics(coll),
	)
	resolver.SetLogger(logger)

	orchestrator := agent.NewOrchestrator(resolver, jup, agent.WithMetrics(coll))
	orchestrator.SetLogger(logger)

	return &deps{
		cfg:          cfg,
		metrics:      coll,
		chain:        chain,
		jupiter:      jup,
		resolver:     resolver,
		orchestrator: orchestrator,
	}, nil
}
