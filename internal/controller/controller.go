package controller

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yolodolo42/wconn/internal/provider"
	"github.com/yolodolo42/wconn/internal/session"
)

// Controller wires provider events into the session store for the lifetime
// of a mounted view. Start registers the event handlers and performs the
// initial silent-session check; Stop releases exactly the subscriptions
// Start took, so repeated mount cycles never leak handlers.
type Controller struct {
	store    *session.Store
	provider provider.Provider
	logger   *zap.Logger

	mu   sync.Mutex
	subs []provider.Subscription
}

// New creates a controller over the given store and provider. provider may
// be nil, in which case Start does nothing.
func New(store *session.Store, p provider.Provider, logger *zap.Logger) *Controller {
	return &Controller{
		store:    store,
		provider: p,
		logger:   logger.Named("controller"),
	}
}

// Start subscribes to account and chain change events and then restores an
// already-authorized session without prompting.
func (c *Controller) Start(ctx context.Context) {
	if c.provider == nil {
		return
	}

	// The view starts the controller off the UI goroutine while quit calls
	// Stop from the update loop, so the subscription list is guarded.
	c.mu.Lock()
	c.subs = append(c.subs,
		c.provider.SubscribeAccountsChanged(func(accounts []string) {
			c.onAccountsChanged(ctx, accounts)
		}),
		c.provider.SubscribeChainChanged(func(chainID string) {
			c.onChainChanged(ctx, chainID)
		}),
	)
	c.mu.Unlock()

	c.restoreSession(ctx)
}

// Stop releases the subscriptions taken by Start.
func (c *Controller) Stop() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// onAccountsChanged handles a provider account-list change. An empty list
// means the wallet revoked or locked the session; a new first account is
// adopted with a silent refresh.
func (c *Controller) onAccountsChanged(ctx context.Context, accounts []string) {
	if len(accounts) == 0 {
		c.logger.Info("wallet reported no accounts, disconnecting")
		c.store.Disconnect()
		return
	}

	next := strings.ToLower(accounts[0])
	if next == c.store.Snapshot().Address {
		return
	}

	if err := c.store.Refresh(ctx, next, ""); err != nil {
		c.logger.Warn("account change refresh failed", zap.Error(err))
	}
}

// onChainChanged handles a provider chain change. Only meaningful while an
// address is connected.
func (c *Controller) onChainChanged(ctx context.Context, chainID string) {
	snap := c.store.Snapshot()
	if snap.Address == "" || chainID == snap.ChainID {
		return
	}

	if err := c.store.Refresh(ctx, snap.Address, chainID); err != nil {
		c.logger.Warn("chain change refresh failed", zap.Error(err))
	}
}

// restoreSession performs the silent connection check: respects an explicit
// user disconnect, skips when already connected, and otherwise adopts the
// first already-authorized account. eth_accounts never prompts.
func (c *Controller) restoreSession(ctx context.Context) {
	snap := c.store.Snapshot()
	if snap.UserDisconnected || snap.IsConnected {
		return
	}

	var accounts []string
	if err := c.provider.Request(ctx, &accounts, provider.MethodAccounts); err != nil {
		c.logger.Debug("silent account query failed", zap.Error(err))
		return
	}
	if len(accounts) == 0 {
		return
	}

	if err := c.store.Refresh(ctx, accounts[0], ""); err != nil {
		c.logger.Warn("session restore failed", zap.Error(err))
	}
}
