package testutil

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/yolodolo42/wconn/internal/chain"
	"github.com/yolodolo42/wconn/internal/ens"
	"github.com/yolodolo42/wconn/internal/provider"
)

// RPCError is a scriptable wallet error carrying an EIP-1193 error code.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string  { return e.Message }
func (e *RPCError) ErrorCode() int { return e.Code }

// FakeProvider is an in-process wallet provider for tests. Responses come
// from its exported fields; events are emitted synchronously through the
// embedded hub via EmitAccountsChanged and EmitChainChanged.
type FakeProvider struct {
	provider.Hub

	mu          sync.Mutex
	Accounts    []string
	ChainID     string
	Balances    map[string]*big.Int // keyed by lowercase address
	Errors      map[string]error    // per-method scripted failures
	KnownChains map[string]bool     // chains the wallet can switch to
	AddedChains []chain.AddChainParams
	Calls       []string
}

// NewFakeProvider creates a fake wallet with a single authorized account on
// the given chain.
func NewFakeProvider(account, chainID string) *FakeProvider {
	accounts := []string{}
	if account != "" {
		accounts = append(accounts, account)
	}
	return &FakeProvider{
		Accounts:    accounts,
		ChainID:     chainID,
		Balances:    make(map[string]*big.Int),
		Errors:      make(map[string]error),
		KnownChains: map[string]bool{chainID: true},
	}
}

// SetBalance scripts the wei balance returned for an address.
func (f *FakeProvider) SetBalance(address string, wei *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Balances[strings.ToLower(address)] = wei
}

// Fail scripts an error for a method.
func (f *FakeProvider) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[method] = err
}

// CallCount returns how often a method was requested.
func (f *FakeProvider) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, call := range f.Calls {
		if call == method {
			n++
		}
	}
	return n
}

func (f *FakeProvider) Request(_ context.Context, result any, method string, params ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, method)

	if err := f.Errors[method]; err != nil {
		return err
	}

	switch method {
	case provider.MethodRequestAccounts, provider.MethodAccounts:
		out, ok := result.(*[]string)
		if !ok {
			return fmt.Errorf("unexpected result type %T for %s", result, method)
		}
		*out = append([]string(nil), f.Accounts...)

	case provider.MethodChainID:
		out, ok := result.(*string)
		if !ok {
			return fmt.Errorf("unexpected result type %T for %s", result, method)
		}
		*out = f.ChainID

	case provider.MethodGetBalance:
		out, ok := result.(*hexutil.Big)
		if !ok {
			return fmt.Errorf("unexpected result type %T for %s", result, method)
		}
		address, _ := params[0].(string)
		wei := f.Balances[strings.ToLower(address)]
		if wei == nil {
			wei = big.NewInt(0)
		}
		*out = hexutil.Big(*wei)

	case provider.MethodSwitchChain:
		req, ok := params[0].(provider.SwitchChainParams)
		if !ok {
			return fmt.Errorf("unexpected params type %T for %s", params[0], method)
		}
		if !f.KnownChains[req.ChainID] {
			return &RPCError{Code: provider.CodeChainUnrecognized, Message: "unrecognized chain"}
		}
		f.ChainID = req.ChainID

	case provider.MethodAddChain:
		req, ok := params[0].(chain.AddChainParams)
		if !ok {
			return fmt.Errorf("unexpected params type %T for %s", params[0], method)
		}
		f.AddedChains = append(f.AddedChains, req)
		f.KnownChains[req.ChainID] = true
		f.ChainID = req.ChainID

	default:
		return fmt.Errorf("unsupported method: %s", method)
	}

	return nil
}

func (f *FakeProvider) Close() {}

// StaticBalances is a session.BalanceReader over a fixed table keyed by
// "chainID/lowercase-address".
type StaticBalances struct {
	Wei map[string]*big.Int
}

// Set records the wei balance for an address on a chain.
func (b *StaticBalances) Set(chainID, address string, wei *big.Int) {
	if b.Wei == nil {
		b.Wei = make(map[string]*big.Int)
	}
	b.Wei[balanceKey(chainID, address)] = wei
}

func (b *StaticBalances) BalanceAt(_ context.Context, chainID string, address common.Address) (*big.Int, error) {
	wei, ok := b.Wei[balanceKey(chainID, address.Hex())]
	if !ok {
		return nil, fmt.Errorf("no balance scripted for %s on %s", address.Hex(), chainID)
	}
	return wei, nil
}

func balanceKey(chainID, address string) string {
	return chainID + "/" + strings.ToLower(address)
}

// StaticNames is a session.NameResolver over a fixed table keyed by
// lowercase address.
type StaticNames struct {
	Info map[string]ens.Info
	Err  error
}

func (n *StaticNames) Resolve(_ context.Context, address string) (ens.Info, error) {
	if n.Err != nil {
		return ens.Info{}, n.Err
	}
	return n.Info[strings.ToLower(address)], nil
}
