package provider

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/rpc"
)

// Wallet RPC methods understood by every provider implementation.
const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAccounts        = "eth_accounts"
	MethodChainID         = "eth_chainId"
	MethodGetBalance      = "eth_getBalance"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
)

// EIP-1193 provider error codes.
const (
	// CodeUserRejected is returned when the user declines a permission
	// prompt or a network switch.
	CodeUserRejected = 4001

	// CodeChainUnrecognized is returned by wallet_switchEthereumChain when
	// the wallet has no configuration for the requested chain. Callers are
	// expected to follow up with wallet_addEthereumChain.
	CodeChainUnrecognized = 4902
)

// ErrNotConnected is returned by Request after the provider has been closed.
var ErrNotConnected = errors.New("provider: not connected")

// Provider is the wallet provider consumed by the session store and the
// connection controller. Request follows the rpc.Client.CallContext shape:
// result must be a pointer (or nil for notification-style calls).
//
// Account and chain events are delivered through subscriptions. A handler
// registered via Subscribe* stays registered until its Subscription is
// released, which gives callers exactly-once register/deregister semantics
// per mount cycle.
type Provider interface {
	Request(ctx context.Context, result any, method string, params ...any) error
	SubscribeAccountsChanged(fn func(accounts []string)) Subscription
	SubscribeChainChanged(fn func(chainID string)) Subscription
	Close()
}

// Subscription is a handle to a registered event handler.
type Subscription interface {
	// Unsubscribe removes the handler. Safe to call more than once.
	Unsubscribe()
}

// ErrorCode extracts the EIP-1193 error code from a provider error.
// Returns 0 when the error carries no code.
func ErrorCode(err error) int {
	var re rpc.Error
	if errors.As(err, &re) {
		return re.ErrorCode()
	}
	return 0
}

// SwitchChainParams is the wallet_switchEthereumChain request payload.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}
