// Package claims models claim eligibility and serves the mock proof provider
// used until the hosted proof service is wired in.
package claims

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gitcoinco/grant-claims/internal/apperr"
)

// Claim is the eligibility of one wallet for one grant. Proof is set only
// when CanClaim is true; Amount is in token base units.
type Claim struct {
	CanClaim bool     `json:"canClaim"`
	Proof    []string `json:"proof,omitempty"`
	Amount   string   `json:"amount"`
}

// Hashes decodes the proof into 32-byte hashes, preserving order.
func (c Claim) Hashes() ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(c.Proof))
	for i, raw := range c.Proof {
		b, err := hexutil.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("claims: proof[%d]: %w", i, err)
		}
		if len(b) != common.HashLength {
			return nil, fmt.Errorf("claims: proof[%d]: want %d bytes, got %d", i, common.HashLength, len(b))
		}
		out = append(out, common.BytesToHash(b))
	}
	return out, nil
}

// Provider answers whether address may claim the grant identified by uuid.
type Provider interface {
	Lookup(ctx context.Context, uuid, address string) (Claim, error)
}

// EligibleAmount is what the mock hands to eligible wallets: one token at
// 18 decimals.
const EligibleAmount = "1000000000000000000"

var mockProof = []string{
	"0x1f14d0d899eb52d9467e3d3888cc2741d4d915ff13e29a1aac99dfcfea6a0d0f",
	"0x54ada740ae82a2249e2ce9827394e765937e62a128f25045605c255ea7d42f24",
	"0xbf3ee7814439a23ac477953252877c633372fe8c7fde8c0d2ece57a4eca3904f",
	"0x5db1bea240bf7d6de115167e18e2d88e070e79e859a326b6bf7b4e21947a8302",
}

// MockProvider decides eligibility by coin flip.
type MockProvider struct {
	draw func() float64
}

// NewMockProvider returns a provider drawing from draw, a source of values in
// [0, 1). A nil draw uses the process-wide random source.
func NewMockProvider(draw func() float64) *MockProvider {
	if draw == nil {
		draw = rand.Float64
	}
	return &MockProvider{draw: draw}
}

func (p *MockProvider) Lookup(_ context.Context, uuid, address string) (Claim, error) {
	if strings.TrimSpace(address) == "" {
		return Claim{}, apperr.New(apperr.CodeValidation, "address is required")
	}
	if strings.TrimSpace(uuid) == "" {
		return Claim{}, apperr.New(apperr.CodeValidation, "uuid is required")
	}
	if p.draw() > 0.5 {
		proof := make([]string, len(mockProof))
		copy(proof, mockProof)
		return Claim{CanClaim: true, Proof: proof, Amount: EligibleAmount}, nil
	}
	return Claim{CanClaim: false, Amount: "0"}, nil
}
