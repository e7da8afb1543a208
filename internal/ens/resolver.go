package ens

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/yolodolo42/wconn/internal/chain"
)

// ENS registry function selectors
var (
	// resolver(bytes32)
	resolverSelector = common.Hex2Bytes("0178b8bf")
	// name(bytes32)
	nameSelector = common.Hex2Bytes("691f3431")
	// text(bytes32,string)
	textSelector = common.Hex2Bytes("59d1d43c")
)

// registryAddress is the ENS registry, identical on mainnet and the testnets
// that carry an ENS deployment.
var registryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

const avatarTextKey = "avatar"

// ContractCaller is the subset of the chain facade the resolver needs.
type ContractCaller interface {
	CallContract(ctx context.Context, chainID string, msg ethereum.CallMsg) ([]byte, error)
}

// Info is a resolved reverse record.
type Info struct {
	Name   string
	Avatar string
}

// Resolver performs reverse ENS lookups against mainnet. Results are cached
// so that repeated silent state refreshes do not hammer the registry.
type Resolver struct {
	caller ContractCaller
	cache  *cache.Cache
	logger *zap.Logger
}

// NewResolver creates a resolver over the given contract caller. cacheTTL <= 0
// disables expiry.
func NewResolver(caller ContractCaller, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	if cacheTTL <= 0 {
		cacheTTL = cache.NoExpiration
	}
	return &Resolver{
		caller: caller,
		cache:  cache.New(cacheTTL, 2*cacheTTL),
		logger: logger.Named("ens"),
	}
}

// Resolve returns the reverse-resolved name and avatar for an address.
// An address without a reverse record resolves to an empty Info, not an
// error. Avatar lookup failures degrade to an empty avatar.
func (r *Resolver) Resolve(ctx context.Context, address string) (Info, error) {
	key := strings.ToLower(address)
	if hit, found := r.cache.Get(key); found {
		if info, ok := hit.(Info); ok {
			return info, nil
		}
	}

	info, err := r.resolve(ctx, key)
	if err != nil {
		return Info{}, err
	}

	r.cache.Set(key, info, cache.DefaultExpiration)
	return info, nil
}

func (r *Resolver) resolve(ctx context.Context, address string) (Info, error) {
	reverseName := strings.TrimPrefix(address, "0x") + ".addr.reverse"
	node := Namehash(reverseName)

	resolverAddr, err := r.resolverFor(ctx, node)
	if err != nil {
		return Info{}, fmt.Errorf("failed to look up reverse resolver: %w", err)
	}
	if resolverAddr == (common.Address{}) {
		return Info{}, nil
	}

	name, err := r.nameOf(ctx, resolverAddr, node)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read reverse name: %w", err)
	}
	if name == "" {
		return Info{}, nil
	}

	info := Info{Name: name}
	avatar, err := r.avatarOf(ctx, name)
	if err != nil {
		// Avatar resolution is best-effort; the name stands on its own.
		r.logger.Debug("avatar lookup failed", zap.String("name", name), zap.Error(err))
		return info, nil
	}
	info.Avatar = avatar

	return info, nil
}

// resolverFor asks the registry which resolver owns a node.
func (r *Resolver) resolverFor(ctx context.Context, node common.Hash) (common.Address, error) {
	callData := make([]byte, 36)
	copy(callData[:4], resolverSelector)
	copy(callData[4:], node.Bytes())

	to := registryAddress
	result, err := r.caller.CallContract(ctx, chain.MainnetChainID, ethereum.CallMsg{To: &to, Data: callData})
	if err != nil {
		return common.Address{}, err
	}
	if len(result) < 32 {
		return common.Address{}, nil
	}

	return common.BytesToAddress(result[12:32]), nil
}

func (r *Resolver) nameOf(ctx context.Context, resolverAddr common.Address, node common.Hash) (string, error) {
	callData := make([]byte, 36)
	copy(callData[:4], nameSelector)
	copy(callData[4:], node.Bytes())

	result, err := r.caller.CallContract(ctx, chain.MainnetChainID, ethereum.CallMsg{To: &resolverAddr, Data: callData})
	if err != nil {
		return "", err
	}

	return decodeString(result), nil
}

// avatarOf reads the avatar text record through the name's own resolver.
func (r *Resolver) avatarOf(ctx context.Context, name string) (string, error) {
	node := Namehash(name)

	resolverAddr, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", err
	}
	if resolverAddr == (common.Address{}) {
		return "", nil
	}

	callData := encodeTextCall(node, avatarTextKey)
	result, err := r.caller.CallContract(ctx, chain.MainnetChainID, ethereum.CallMsg{To: &resolverAddr, Data: callData})
	if err != nil {
		return "", err
	}

	return decodeString(result), nil
}

// encodeTextCall builds the calldata for text(bytes32,string).
func encodeTextCall(node common.Hash, key string) []byte {
	padded := len(key)
	if rem := padded % 32; rem != 0 {
		padded += 32 - rem
	}

	data := make([]byte, 4+32+32+32+padded)
	copy(data[:4], textSelector)
	copy(data[4:36], node.Bytes())
	// Offset of the string argument, relative to the start of the arguments.
	data[67] = 64
	big.NewInt(int64(len(key))).FillBytes(data[68:100])
	copy(data[100:], key)

	return data
}

// Namehash implements the EIP-137 recursive name hash.
func Namehash(name string) common.Hash {
	node := make([]byte, 32)
	if name == "" {
		return common.BytesToHash(node)
	}

	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256(node, labelHash)
	}

	return common.BytesToHash(node)
}

// decodeString decodes an ABI-encoded string
func decodeString(data []byte) string {
	if len(data) < 64 {
		return strings.TrimRight(string(data), "\x00")
	}

	// Standard ABI encoding: offset (32 bytes) + length (32 bytes) + data
	length := new(big.Int).SetBytes(data[32:64]).Int64()
	if length == 0 || int(length) > len(data)-64 {
		return ""
	}

	return strings.TrimRight(string(data[64:64+length]), "\x00")
}
