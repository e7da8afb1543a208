package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the read-only RPC facade over the supported networks. It dials
// each network lazily, walking the descriptor's RPC URLs in order and keeping
// the first endpoint that answers with the expected chain id.
type Client struct {
	networks map[string]*Network
	clients  map[string]*ethclient.Client
	mu       sync.Mutex
}

// NewClient creates a facade over the default network table.
func NewClient() *Client {
	return &Client{
		networks: Networks(),
		clients:  make(map[string]*ethclient.Client),
	}
}

// getClient returns an ethclient for the given network key, creating one if
// needed. Acquires the lock upfront to prevent duplicate connection creation
// under contention; connection creation is not a hot path.
func (c *Client) getClient(key string) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	network, ok := c.networks[key]
	if !ok {
		return nil, fmt.Errorf("unknown network: %s", key)
	}

	if client, exists := c.clients[key]; exists {
		return client, nil
	}

	var lastErr error
	for _, rpcURL := range network.RPCURLs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err != nil {
			lastErr = err
			continue
		}

		// Verify chain ID
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		chainID, err := client.ChainID(ctx)
		cancel()

		if err != nil {
			client.Close()
			lastErr = err
			continue
		}

		if chainID.Int64() != network.ChainIDInt {
			client.Close()
			lastErr = fmt.Errorf("chain ID mismatch: expected %d, got %s", network.ChainIDInt, chainID.String())
			continue
		}

		c.clients[key] = client
		return client, nil
	}

	return nil, fmt.Errorf("failed to connect to %s: %w", key, lastErr)
}

// BalanceAt returns the native-currency balance in wei for an address on the
// network identified by the given hex chain id.
func (c *Client) BalanceAt(ctx context.Context, chainID string, address common.Address) (*big.Int, error) {
	network := ByChainID(chainID)
	if network == nil {
		return nil, fmt.Errorf("no descriptor for chain id %s", chainID)
	}

	client, err := c.getClient(network.Key)
	if err != nil {
		return nil, err
	}

	return client.BalanceAt(ctx, address, nil)
}

// CallContract executes a read-only contract call on the network identified
// by the given hex chain id.
func (c *Client) CallContract(ctx context.Context, chainID string, msg ethereum.CallMsg) ([]byte, error) {
	network := ByChainID(chainID)
	if network == nil {
		return nil, fmt.Errorf("no descriptor for chain id %s", chainID)
	}

	client, err := c.getClient(network.Key)
	if err != nil {
		return nil, err
	}

	return client.CallContract(ctx, msg, nil)
}

// Close closes all client connections.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		client.Close()
	}
	c.clients = make(map[string]*ethclient.Client)
}
