package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MainnetChainID is the hex chain id of Ethereum mainnet. ENS resolution is
// only meaningful on this chain.
const MainnetChainID = "0x1"

// Currency describes the native currency of a network. The json tags match
// the nativeCurrency object of a wallet_addEthereumChain request.
type Currency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// Network holds the static description of a supported network.
// Invariant: ChainID and ChainIDInt must always represent the same value.
// ChainIDInt exists for YAML serialization; ChainID is the hex form used on
// the wallet wire.
type Network struct {
	Key         string   `yaml:"-"`
	Name        string   `yaml:"name"`
	ChainID     string   `yaml:"-"`        // Hex, e.g. "0x38"
	ChainIDInt  int64    `yaml:"chain_id"` // YAML serialization
	Currency    Currency `yaml:"currency"`
	RPCURLs     []string `yaml:"rpc_urls"` // Ordered, first preferred
	ExplorerURL string   `yaml:"explorer_url"`
	IsTestnet   bool     `yaml:"is_testnet"`
}

// AddChainParams is the wallet_addEthereumChain request payload built from a
// network descriptor.
type AddChainParams struct {
	ChainID           string   `json:"chainId"`
	ChainName         string   `json:"chainName"`
	NativeCurrency    Currency `json:"nativeCurrency"`
	RPCURLs           []string `json:"rpcUrls"`
	BlockExplorerURLs []string `json:"blockExplorerUrls,omitempty"`
}

// AddChainParams returns the add-chain payload for the network.
func (n *Network) AddChainParams() AddChainParams {
	p := AddChainParams{
		ChainID:        n.ChainID,
		ChainName:      n.Name,
		NativeCurrency: n.Currency,
		RPCURLs:        n.RPCURLs,
	}
	if n.ExplorerURL != "" {
		p.BlockExplorerURLs = []string{n.ExplorerURL}
	}
	return p
}

// Networks returns the supported network descriptors keyed by symbolic name.
func Networks() map[string]*Network {
	return map[string]*Network{
		"ethereum": {
			Key:         "ethereum",
			Name:        "Ethereum Mainnet",
			ChainID:     "0x1",
			ChainIDInt:  1,
			Currency:    Currency{Name: "Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:     []string{"https://eth.llamarpc.com", "https://rpc.ankr.com/eth"},
			ExplorerURL: "https://etherscan.io",
			IsTestnet:   false,
		},
		"bsc": {
			Key:         "bsc",
			Name:        "BNB Smart Chain",
			ChainID:     "0x38",
			ChainIDInt:  56,
			Currency:    Currency{Name: "BNB", Symbol: "BNB", Decimals: 18},
			RPCURLs:     []string{"https://bsc-dataseed.binance.org", "https://bsc.llamarpc.com"},
			ExplorerURL: "https://bscscan.com",
			IsTestnet:   false,
		},
		"sepolia": {
			Key:         "sepolia",
			Name:        "Sepolia Testnet",
			ChainID:     "0xaa36a7",
			ChainIDInt:  11155111,
			Currency:    Currency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:     []string{"https://rpc.sepolia.org", "https://sepolia.drpc.org"},
			ExplorerURL: "https://sepolia.etherscan.io",
			IsTestnet:   true,
		},
	}
}

// ByKey returns the descriptor for a symbolic network name.
func ByKey(key string) (*Network, bool) {
	n, ok := Networks()[key]
	return n, ok
}

// ByChainID returns the descriptor whose chain id matches the given hex id,
// or nil when no supported network matches. Chain ids are unique across the
// descriptor table.
func ByChainID(chainID string) *Network {
	want, err := ParseChainID(chainID)
	if err != nil {
		return nil
	}
	for _, n := range Networks() {
		if n.ChainIDInt == want.Int64() {
			return n
		}
	}
	return nil
}

// ParseChainID decodes a hex-prefixed chain id.
func ParseChainID(chainID string) (*big.Int, error) {
	return hexutil.DecodeBig(chainID)
}

// FormatChainID encodes a chain id in the hex-prefixed wire form.
func FormatChainID(id int64) string {
	return hexutil.EncodeBig(big.NewInt(id))
}

// IsMainnet reports whether the given hex chain id is Ethereum mainnet.
func IsMainnet(chainID string) bool {
	id, err := ParseChainID(chainID)
	if err != nil {
		return false
	}
	return id.Int64() == 1
}
