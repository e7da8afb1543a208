package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yolodolo42/wconn/internal/chain"
	"github.com/yolodolo42/wconn/internal/config"
	"github.com/yolodolo42/wconn/internal/controller"
	"github.com/yolodolo42/wconn/internal/ens"
	"github.com/yolodolo42/wconn/internal/logger"
	"github.com/yolodolo42/wconn/internal/persist"
	"github.com/yolodolo42/wconn/internal/provider"
	"github.com/yolodolo42/wconn/internal/session"
)

// app bundles the wired session stack for a command invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider provider.Provider
	chains   *chain.Client
	store    *session.Store
	ctrl     *controller.Controller
}

// newApp loads configuration and wires provider, chain facade, resolver,
// persistence, store, and controller. A missing or unreachable wallet bridge
// is not an error; the stack degrades per capability.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	prov := provider.Detect(ctx, cfg.Bridge.Endpoint, cfg.Bridge.PollInterval, log)
	chains := chain.NewClient()
	resolver := ens.NewResolver(chains, cfg.ENS.CacheTTL, log)

	disk, err := persist.NewStore(cfg.Data.Dir, session.SessionFileName)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(prov, chains, resolver, disk, log)

	return &app{
		cfg:      cfg,
		logger:   log,
		provider: prov,
		chains:   chains,
		store:    store,
		ctrl:     controller.New(store, prov, log),
	}, nil
}

func (a *app) Close() {
	if a.provider != nil {
		a.provider.Close()
	}
	a.chains.Close()
	_ = a.logger.Sync() // Best-effort flush
}
