package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/yolodolo42/wconn/internal/chain"
	"github.com/yolodolo42/wconn/internal/ens"
	"github.com/yolodolo42/wconn/internal/persist"
	"github.com/yolodolo42/wconn/internal/provider"
)

// SessionFileName is the fixed storage key for the persisted session.
const SessionFileName = "session.json"

// ErrNoProvider is the user-facing notice surfaced when a connect is
// requested and no wallet provider was detected.
var ErrNoProvider = errors.New("no wallet provider detected")

// BalanceReader reads native-currency balances by chain id.
type BalanceReader interface {
	BalanceAt(ctx context.Context, chainID string, address common.Address) (*big.Int, error)
}

// NameResolver resolves reverse ENS records.
type NameResolver interface {
	Resolve(ctx context.Context, address string) (ens.Info, error)
}

// Store is the process-wide wallet session store. All mutation goes through
// its methods; reads get consistent copies via Snapshot. A nil provider means
// no wallet was detected and every provider-backed operation degrades.
type Store struct {
	provider provider.Provider
	balances BalanceReader
	names    NameResolver
	disk     *persist.Store
	logger   *zap.Logger

	mu          sync.RWMutex
	state       State
	nextWatcher int
	watchers    map[int]chan State
}

// NewStore creates the session store and rehydrates persisted state. Wallet
// fields are only restored when the saved session was connected;
// UserDisconnected is always restored. Any of p, balances, names, and disk
// may be nil; the corresponding capability degrades.
func NewStore(p provider.Provider, balances BalanceReader, names NameResolver, disk *persist.Store, logger *zap.Logger) *Store {
	s := &Store{
		provider: p,
		balances: balances,
		names:    names,
		disk:     disk,
		logger:   logger.Named("session"),
		state:    defaultState(),
	}

	if disk != nil {
		var rec persistedSession
		switch err := disk.Load(&rec); {
		case err == nil:
			if rec.State.IsConnected {
				s.state = rec.State
			}
			s.state.UserDisconnected = rec.State.UserDisconnected
		case os.IsNotExist(err):
			// Fresh session
		default:
			s.logger.Warn("failed to load persisted session", zap.Error(err))
		}
	}

	return s
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Watch returns a channel that receives a state snapshot after every
// mutation, plus a release func that detaches the channel. Release is safe to
// call more than once; each mounted view calls it on teardown so watcher
// channels live exactly as long as their view. Slow receivers miss
// intermediate snapshots rather than blocking the store.
func (s *Store) Watch() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 16)
	id := s.nextWatcher
	s.nextWatcher++
	if s.watchers == nil {
		s.watchers = make(map[int]chan State)
	}
	s.watchers[id] = ch

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers, id)
		})
	}
	return ch, release
}

// HasProvider reports whether a wallet provider was detected.
func (s *Store) HasProvider() bool {
	return s.provider != nil
}

// Merge shallow-merges the patch into the session state. No validation; the
// caller is responsible for field consistency.
func (s *Store) Merge(patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch.apply(&s.state)
	s.persistLocked()
	s.notifyLocked()
}

// Reset returns every field to its default, including UserDisconnected.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = defaultState()
	s.persistLocked()
	s.notifyLocked()
}

// Connect requests account access from the wallet provider. This is the only
// operation allowed to trigger the provider's permission prompt. On success
// the full wallet state is replaced in one step and UserDisconnected is
// cleared; on any failure the state is left untouched.
func (s *Store) Connect(ctx context.Context) error {
	if s.provider == nil {
		s.logger.Warn("connect requested without a wallet provider")
		return ErrNoProvider
	}

	var accounts []string
	if err := s.provider.Request(ctx, &accounts, provider.MethodRequestAccounts); err != nil {
		s.logger.Error("wallet connect failed", zap.Error(err))
		return err
	}
	if len(accounts) == 0 {
		err := errors.New("wallet returned no accounts")
		s.logger.Error("wallet connect failed", zap.Error(err))
		return err
	}

	return s.reconcile(ctx, accounts[0], "")
}

// Refresh silently reconciles the session with the given account, never
// triggering a permission prompt. chainID may be empty, in which case the
// provider's current chain is queried. Used for provider-originated account
// and chain change notifications and the initial silent-session check.
func (s *Store) Refresh(ctx context.Context, address, chainID string) error {
	if address == "" {
		return nil
	}
	return s.reconcile(ctx, address, chainID)
}

func (s *Store) reconcile(ctx context.Context, address, chainID string) error {
	address = strings.ToLower(address)

	if chainID == "" {
		if s.provider == nil {
			return ErrNoProvider
		}
		if err := s.provider.Request(ctx, &chainID, provider.MethodChainID); err != nil {
			s.logger.Error("chain id query failed", zap.Error(err))
			return err
		}
	}

	// Balance and ENS lookups degrade rather than fail; only after both
	// complete is the state replaced, so no partial write is observable.
	balance := s.balanceFor(ctx, address, chainID)
	info := s.ensFor(ctx, address, chainID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Address = address
	s.state.ChainID = chainID
	s.state.IsConnected = true
	s.state.Balance = balance
	s.state.ENSName = info.Name
	s.state.ENSAvatar = info.Avatar
	s.state.UserDisconnected = false
	s.persistLocked()
	s.notifyLocked()

	s.logger.Info("session updated",
		zap.String("address", FormatAddress(address)),
		zap.String("chain_id", chainID),
	)
	return nil
}

// Disconnect clears the session locally and sets the sticky UserDisconnected
// flag, which suppresses silent auto-reconnect until the next explicit
// connect. Wallet providers expose no programmatic disconnect, so the
// provider is not called.
func (s *Store) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = defaultState()
	s.state.UserDisconnected = true
	s.persistLocked()
	s.notifyLocked()

	s.logger.Info("session disconnected by user")
}

// SwitchNetwork asks the provider to switch to the named network. When the
// provider does not know the chain (error code 4902) the network descriptor
// is submitted via wallet_addEthereumChain and the session is refreshed.
// A switch with no connected address leaves the session as is.
func (s *Store) SwitchNetwork(ctx context.Context, key string) error {
	if s.provider == nil {
		s.logger.Warn("network switch requested without a wallet provider")
		return ErrNoProvider
	}

	network, ok := chain.ByKey(key)
	if !ok {
		return fmt.Errorf("unknown network: %s", key)
	}

	err := s.provider.Request(ctx, nil, provider.MethodSwitchChain, provider.SwitchChainParams{ChainID: network.ChainID})
	if err != nil {
		if provider.ErrorCode(err) != provider.CodeChainUnrecognized {
			s.logger.Error("network switch failed", zap.String("network", key), zap.Error(err))
			return err
		}

		s.logger.Info("chain not known to wallet, requesting add", zap.String("network", key))
		if err := s.provider.Request(ctx, nil, provider.MethodAddChain, network.AddChainParams()); err != nil {
			s.logger.Error("add chain failed", zap.String("network", key), zap.Error(err))
			return err
		}
	}

	addr := s.Snapshot().Address
	if addr == "" {
		return nil
	}
	return s.Refresh(ctx, addr, network.ChainID)
}

// Balance returns the native-currency balance of an address on the current
// chain as a decimal ether-denominated string. Any failure, including
// provider absence, degrades to "0".
func (s *Store) Balance(ctx context.Context, address string) string {
	chainID := s.Snapshot().ChainID
	if chainID == "" && s.provider != nil {
		if err := s.provider.Request(ctx, &chainID, provider.MethodChainID); err != nil {
			s.logger.Debug("chain id query failed", zap.Error(err))
			return "0"
		}
	}
	if chainID == "" {
		return "0"
	}
	return s.balanceFor(ctx, address, chainID)
}

func (s *Store) balanceFor(ctx context.Context, address, chainID string) string {
	if address == "" {
		return "0"
	}

	if s.balances != nil {
		wei, err := s.balances.BalanceAt(ctx, chainID, common.HexToAddress(address))
		if err == nil {
			return weiToEther(wei)
		}
		s.logger.Debug("balance lookup failed", zap.String("chain_id", chainID), zap.Error(err))
	}

	// Chains without a descriptor fall back to the wallet bridge itself.
	if s.provider != nil {
		var raw hexutil.Big
		err := s.provider.Request(ctx, &raw, provider.MethodGetBalance, address, "latest")
		if err == nil {
			return weiToEther((*big.Int)(&raw))
		}
		s.logger.Debug("balance fallback failed", zap.Error(err))
	}

	return "0"
}

// ENSInfo returns the reverse-resolved name and avatar for an address.
// Resolution only happens on mainnet; chainID is taken from the argument or,
// when empty, from a live provider query. Any failure returns empty values.
func (s *Store) ENSInfo(ctx context.Context, address, chainID string) (name, avatar string) {
	if chainID == "" && s.provider != nil {
		if err := s.provider.Request(ctx, &chainID, provider.MethodChainID); err != nil {
			s.logger.Debug("chain id query failed", zap.Error(err))
			return "", ""
		}
	}

	info := s.ensFor(ctx, address, chainID)
	return info.Name, info.Avatar
}

func (s *Store) ensFor(ctx context.Context, address, chainID string) ens.Info {
	if s.names == nil || address == "" || !chain.IsMainnet(chainID) {
		return ens.Info{}
	}

	info, err := s.names.Resolve(ctx, address)
	if err != nil {
		s.logger.Debug("ens lookup failed", zap.Error(err))
		return ens.Info{}
	}
	return info
}

// CurrentNetwork returns the descriptor matching the session's chain id, or
// nil when disconnected or on a network without a descriptor.
func (s *Store) CurrentNetwork() *chain.Network {
	return chain.ByChainID(s.Snapshot().ChainID)
}

// persistLocked saves the on-disk projection: full fields when connected,
// defaults plus the sticky flag when not. Caller holds s.mu.
func (s *Store) persistLocked() {
	if s.disk == nil {
		return
	}

	snap := s.state
	if !snap.IsConnected {
		userDisconnected := snap.UserDisconnected
		snap = defaultState()
		snap.UserDisconnected = userDisconnected
	}

	if err := s.disk.Save(persistedSession{Version: 1, State: snap}); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
}

// notifyLocked pushes the current state to watchers. Caller holds s.mu.
func (s *Store) notifyLocked() {
	for _, ch := range s.watchers {
		select {
		case ch <- s.state:
		default:
		}
	}
}
