// Package chains knows the EVM networks grants can be claimed on.
package chains

import (
	"fmt"
	"strings"
)

const (
	Mainnet         int64 = 1
	Optimism        int64 = 10
	OptimismSepolia int64 = 11155420
	Sepolia         int64 = 11155111
	ZKsync          int64 = 324
	ZKsyncSepolia   int64 = 300
	Base            int64 = 8453
	BaseSepolia     int64 = 84532
)

// Chain is a network the claim contract is deployed on.
type Chain struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	ExplorerURL string `json:"explorerUrl" yaml:"explorer_url"`
}

var known = map[int64]Chain{
	Mainnet:         {ID: Mainnet, Name: "Ethereum", ExplorerURL: "https://etherscan.io"},
	Optimism:        {ID: Optimism, Name: "OP Mainnet", ExplorerURL: "https://optimistic.etherscan.io"},
	OptimismSepolia: {ID: OptimismSepolia, Name: "OP Sepolia", ExplorerURL: "https://sepolia-optimism.etherscan.io"},
	Sepolia:         {ID: Sepolia, Name: "Sepolia", ExplorerURL: "https://sepolia.etherscan.io"},
	ZKsync:          {ID: ZKsync, Name: "ZKsync Era", ExplorerURL: "https://era.zksync.network"},
	ZKsyncSepolia:   {ID: ZKsyncSepolia, Name: "ZKsync Sepolia Testnet", ExplorerURL: "https://sepolia-era.zksync.network"},
	Base:            {ID: Base, Name: "Base", ExplorerURL: "https://basescan.org"},
	BaseSepolia:     {ID: BaseSepolia, Name: "Base Sepolia", ExplorerURL: "https://sepolia.basescan.org"},
}

// Lookup returns the chain registered for id.
func Lookup(id int64) (Chain, bool) {
	c, ok := known[id]
	return c, ok
}

// Name returns a display name for id, falling back to the numeric id for
// networks outside the table.
func Name(id int64) string {
	if c, ok := known[id]; ok {
		return c.Name
	}
	return fmt.Sprintf("chain %d", id)
}

// TxURL builds the block explorer link for a transaction hash.
func TxURL(id int64, txHash string) (string, error) {
	c, ok := known[id]
	if !ok {
		return "", fmt.Errorf("chains: no explorer for chain %d", id)
	}
	if strings.TrimSpace(txHash) == "" {
		return "", fmt.Errorf("chains: empty transaction hash")
	}
	return c.ExplorerURL + "/tx/" + txHash, nil
}
