package ens

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAddress = "0x742d35cc6634c0532925a3b844bc9e7595f0beb1"

var (
	reverseResolverAddr = common.HexToAddress("0x0000000000000000000000000000000000001111")
	forwardResolverAddr = common.HexToAddress("0x0000000000000000000000000000000000002222")
)

// fakeCaller scripts contract call responses keyed by target address plus the
// first 36 bytes of calldata (selector + node).
type fakeCaller struct {
	responses map[string][]byte
	calls     int
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{responses: make(map[string][]byte)}
}

func (f *fakeCaller) respond(to common.Address, selector []byte, node common.Hash, result []byte) {
	f.responses[callKey(to, selector, node)] = result
}

func (f *fakeCaller) CallContract(_ context.Context, _ string, msg ethereum.CallMsg) ([]byte, error) {
	f.calls++
	if msg.To == nil || len(msg.Data) < 36 {
		return nil, fmt.Errorf("malformed call")
	}
	result, ok := f.responses[callKey(*msg.To, msg.Data[:4], common.BytesToHash(msg.Data[4:36]))]
	if !ok {
		return nil, fmt.Errorf("no response scripted for %s", msg.To.Hex())
	}
	return result, nil
}

func callKey(to common.Address, selector []byte, node common.Hash) string {
	return to.Hex() + "/" + common.Bytes2Hex(selector) + "/" + node.Hex()
}

func abiAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

func abiString(s string) []byte {
	padded := len(s)
	if rem := padded % 32; rem != 0 {
		padded += 32 - rem
	}
	data := make([]byte, 64+padded)
	data[31] = 32
	data[63] = byte(len(s))
	copy(data[64:], s)
	return data
}

// scriptReverseRecord wires the full happy path: registry lookup, reverse
// name, and the avatar text record on the forward resolver.
func scriptReverseRecord(caller *fakeCaller, name, avatar string) {
	reverseNode := Namehash(testAddress[2:] + ".addr.reverse")
	caller.respond(registryAddress, resolverSelector, reverseNode, abiAddress(reverseResolverAddr))
	caller.respond(reverseResolverAddr, nameSelector, reverseNode, abiString(name))

	forwardNode := Namehash(name)
	caller.respond(registryAddress, resolverSelector, forwardNode, abiAddress(forwardResolverAddr))
	if avatar != "" {
		caller.respond(forwardResolverAddr, textSelector, forwardNode, abiString(avatar))
	}
}

func TestNamehash(t *testing.T) {
	// Vectors from EIP-137.
	t.Run("empty name", func(t *testing.T) {
		assert.Equal(t, common.Hash{}, Namehash(""))
	})

	t.Run("eth", func(t *testing.T) {
		assert.Equal(t,
			"0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae",
			Namehash("eth").Hex())
	})

	t.Run("foo.eth", func(t *testing.T) {
		assert.Equal(t,
			"0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f",
			Namehash("foo.eth").Hex())
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, Namehash("foo.eth"), Namehash("FOO.eth"))
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves name and avatar", func(t *testing.T) {
		caller := newFakeCaller()
		scriptReverseRecord(caller, "tester.eth", "https://example.org/avatar.png")
		resolver := NewResolver(caller, time.Minute, zap.NewNop())

		info, err := resolver.Resolve(ctx, testAddress)
		require.NoError(t, err)
		assert.Equal(t, "tester.eth", info.Name)
		assert.Equal(t, "https://example.org/avatar.png", info.Avatar)
	})

	t.Run("no reverse resolver means no record", func(t *testing.T) {
		caller := newFakeCaller()
		reverseNode := Namehash(testAddress[2:] + ".addr.reverse")
		caller.respond(registryAddress, resolverSelector, reverseNode, abiAddress(common.Address{}))
		resolver := NewResolver(caller, time.Minute, zap.NewNop())

		info, err := resolver.Resolve(ctx, testAddress)
		require.NoError(t, err)
		assert.Empty(t, info.Name)
		assert.Empty(t, info.Avatar)
	})

	t.Run("avatar failure degrades to name only", func(t *testing.T) {
		caller := newFakeCaller()
		scriptReverseRecord(caller, "tester.eth", "") // no text record scripted
		resolver := NewResolver(caller, time.Minute, zap.NewNop())

		info, err := resolver.Resolve(ctx, testAddress)
		require.NoError(t, err)
		assert.Equal(t, "tester.eth", info.Name)
		assert.Empty(t, info.Avatar)
	})

	t.Run("registry failure propagates", func(t *testing.T) {
		caller := newFakeCaller() // nothing scripted at all
		resolver := NewResolver(caller, time.Minute, zap.NewNop())

		_, err := resolver.Resolve(ctx, testAddress)
		assert.Error(t, err)
	})

	t.Run("results are cached", func(t *testing.T) {
		caller := newFakeCaller()
		scriptReverseRecord(caller, "tester.eth", "https://example.org/avatar.png")
		resolver := NewResolver(caller, time.Minute, zap.NewNop())

		_, err := resolver.Resolve(ctx, testAddress)
		require.NoError(t, err)
		callsAfterFirst := caller.calls

		_, err = resolver.Resolve(ctx, testAddress)
		require.NoError(t, err)
		assert.Equal(t, callsAfterFirst, caller.calls)
	})

	t.Run("mixed-case address hits the same cache entry", func(t *testing.T) {
		caller := newFakeCaller()
		scriptReverseRecord(caller, "tester.eth", "")
		resolver := NewResolver(caller, time.Minute, zap.NewNop())

		_, err := resolver.Resolve(ctx, testAddress)
		require.NoError(t, err)
		callsAfterFirst := caller.calls

		info, err := resolver.Resolve(ctx, "0x742D35CC6634C0532925A3B844BC9E7595F0BEB1")
		require.NoError(t, err)
		assert.Equal(t, "tester.eth", info.Name)
		assert.Equal(t, callsAfterFirst, caller.calls)
	})
}

func TestDecodeString(t *testing.T) {
	t.Run("empty data", func(t *testing.T) {
		assert.Equal(t, "", decodeString(nil))
	})

	t.Run("short data (non-ABI format)", func(t *testing.T) {
		assert.Equal(t, "tester.eth", decodeString([]byte("tester.eth\x00\x00")))
	})

	t.Run("ABI-encoded string", func(t *testing.T) {
		assert.Equal(t, "tester.eth", decodeString(abiString("tester.eth")))
	})

	t.Run("handles length overflow", func(t *testing.T) {
		data := make([]byte, 64)
		data[31] = 32
		data[63] = 255
		assert.Equal(t, "", decodeString(data))
	})

	t.Run("handles zero length", func(t *testing.T) {
		data := make([]byte, 64)
		data[31] = 32
		assert.Equal(t, "", decodeString(data))
	})
}

func TestEncodeTextCall(t *testing.T) {
	node := Namehash("tester.eth")
	data := encodeTextCall(node, "avatar")

	require.Len(t, data, 4+32+32+32+32)
	assert.Equal(t, textSelector, data[:4])
	assert.Equal(t, node.Bytes(), data[4:36])
	// Offset word points past the two argument words.
	assert.Equal(t, byte(64), data[67])
	// Length word holds len("avatar").
	assert.Equal(t, byte(6), data[99])
	assert.Equal(t, "avatar", string(data[100:106]))
}
