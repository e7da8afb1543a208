package provider

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const defaultPollInterval = 4 * time.Second

// Remote is a Provider backed by a wallet bridge endpoint speaking JSON-RPC
// (http, ws, or a unix socket path). Browser wallets push accountsChanged and
// chainChanged to the page; a bridge endpoint has no push channel for wallet
// state, so Remote synthesizes the same events by polling eth_accounts and
// eth_chainId and emitting on change.
type Remote struct {
	Hub

	client *rpc.Client
	logger *zap.Logger

	mu           sync.Mutex
	closed       bool
	lastAccounts []string
	lastChainID  string

	stop chan struct{}
	done chan struct{}
}

// Dial connects to the wallet bridge at endpoint and starts the event poll
// loop. pollInterval <= 0 selects the default.
func Dial(ctx context.Context, endpoint string, pollInterval time.Duration, logger *zap.Logger) (*Remote, error) {
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	r := &Remote{
		client: client,
		logger: logger.Named("provider"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.poll(pollInterval)

	return r, nil
}

// Request forwards a wallet RPC call to the bridge.
func (r *Remote) Request(ctx context.Context, result any, method string, params ...any) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrNotConnected
	}

	return r.client.CallContext(ctx, result, method, params...)
}

// Close stops the poll loop and releases the connection.
func (r *Remote) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.stop)
	<-r.done
	r.client.Close()
}

func (r *Remote) poll(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.pollOnce()
		}
	}
}

func (r *Remote) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var accounts []string
	if err := r.client.CallContext(ctx, &accounts, MethodAccounts); err != nil {
		r.logger.Debug("account poll failed", zap.Error(err))
		return
	}

	var chainID string
	if err := r.client.CallContext(ctx, &chainID, MethodChainID); err != nil {
		r.logger.Debug("chain poll failed", zap.Error(err))
		return
	}

	r.observe(accounts, chainID)
}

// observe folds one poll result into the tracked wallet state and emits
// events for the deltas. The first observation establishes the baseline;
// only later changes are events.
func (r *Remote) observe(accounts []string, chainID string) {
	r.mu.Lock()
	accountsChanged := !equalAccounts(r.lastAccounts, accounts)
	chainChanged := chainID != r.lastChainID && r.lastChainID != ""
	first := r.lastChainID == ""
	r.lastAccounts = accounts
	r.lastChainID = chainID
	r.mu.Unlock()

	if first {
		return
	}
	if accountsChanged {
		r.EmitAccountsChanged(accounts)
	}
	if chainChanged {
		r.EmitChainChanged(chainID)
	}
}

func equalAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Detect dials the configured wallet bridge and returns nil when no bridge is
// configured or reachable. Callers treat a nil provider as "no wallet
// installed" and degrade instead of failing.
func Detect(ctx context.Context, endpoint string, pollInterval time.Duration, logger *zap.Logger) Provider {
	if endpoint == "" {
		return nil
	}

	remote, err := Dial(ctx, endpoint, pollInterval, logger)
	if err != nil {
		logger.Debug("wallet bridge unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return nil
	}
	return remote
}
