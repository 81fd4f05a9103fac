// Package features holds the whitelabel feature matrix. A deployment picks
// one variant at startup; the resolved Features value is read-only from then
// on and is handed to every consumer explicitly.
package features

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gitcoinco/grant-claims/internal/chains"
)

type Variant string

const (
	Optimism Variant = "OPTIMISM"
	ZKSync   Variant = "ZK_SYNC"
	Sunny    Variant = "SUNNY"
	Base     Variant = "BASE"
)

// Theme carries the brand colours used by the claim card.
type Theme struct {
	ClaimCardHeaderBg     string `json:"bgClaimcardHeader,omitempty" yaml:"claim_card_header_bg,omitempty"`
	PrimaryAction         string `json:"primaryAction,omitempty" yaml:"primary_action,omitempty"`
	PrimaryActionButtonBg string `json:"primaryActionButtonBg,omitempty" yaml:"primary_action_button_bg,omitempty"`
}

type Features struct {
	Variant                      Variant `json:"variant" yaml:"variant"`
	AppName                      string  `json:"appName" yaml:"app_name"`
	BackgroundImage              string  `json:"bgImage" yaml:"bg_image"`
	DelegationRequired           bool    `json:"delegationRequired" yaml:"delegation_required"`
	DelegationEnabled            bool    `json:"delegationEnabled" yaml:"delegation_enabled"`
	DelegatesURL                 string  `json:"delegatesUrl,omitempty" yaml:"delegates_url,omitempty"`
	ConfirmationCheckmarkColor   string  `json:"confirmationCheckmarkBgColor" yaml:"confirmation_checkmark_bg_color"`
	IntroText                    string  `json:"introText" yaml:"intro_text"`
	OnlyShowClaimable            bool    `json:"onlyShowClaimable" yaml:"only_show_claimable"`
	ConfirmationSubheader        string  `json:"confirmationSubheader" yaml:"confirmation_subheader"`
	ConfirmationSecondButtonText string  `json:"confirmationSecondButtonText" yaml:"confirmation_second_button_text"`
	ConfirmationSecondButtonLink string  `json:"confirmationSecondButtonLink" yaml:"confirmation_second_button_link"`
	ClaimFee                     bool    `json:"claimFee" yaml:"claim_fee"`
	Theme                        Theme   `json:"theme" yaml:"theme"`
	ChainIDs                     []int64 `json:"chainIds" yaml:"chain_ids"`
	KYCAlias                     string  `json:"kycAlias" yaml:"kyc_alias"`

	// OptionalDelegatee sends the delegate address with the claim when
	// delegation is enabled but not required and the user typed one in.
	OptionalDelegatee bool `json:"optionalDelegatee" yaml:"optional_delegatee"`
}

var matrix = map[Variant]Features{
	Optimism: {
		Variant:                      Optimism,
		AppName:                      "OP Claim Tool",
		BackgroundImage:              "/optimism-bg-img.svg",
		DelegatesURL:                 "https://vote.optimism.io/delegates",
		ConfirmationCheckmarkColor:   "#68DFDC",
		IntroText:                    "Explore all grants from the OP Citizen Grants Council and who they've delegated to. For grantees, this claiming tool offers a self-serve interface to claim and delegate your grant.",
		ConfirmationSubheader:        "We strongly encourage you to set a delegate to represent you in Optimism governance.",
		ConfirmationSecondButtonText: "Choose your representative",
		ConfirmationSecondButtonLink: "https://vote.optimism.io/delegates",
		Theme: Theme{
			ClaimCardHeaderBg:     "#fecaca",
			PrimaryAction:         "#ef4444",
			PrimaryActionButtonBg: "#dc2626",
		},
		ChainIDs: []int64{chains.Mainnet, chains.Optimism, chains.OptimismSepolia, chains.Sepolia},
		KYCAlias: "OPTIMISM",
	},
	ZKSync: {
		Variant:                    ZKSync,
		AppName:                    "ZKsync Claim Tool",
		BackgroundImage:            "/zksync-bg-img.svg",
		DelegationRequired:         true,
		DelegationEnabled:          true,
		DelegatesURL:               "https://vote.zknation.io/dao/delegates",
		ConfirmationCheckmarkColor: "black",
		IntroText:                  "Explore the grants you are eligible from the ZKsync foundation and who they've delegated to. For grantees, this claiming tool offers a self-serve interface to claim and delegate your grant.",
		OnlyShowClaimable:          true,
		ClaimFee:                   true,
		Theme: Theme{
			ClaimCardHeaderBg:     "#bfdbfe",
			PrimaryAction:         "#3b82f6",
			PrimaryActionButtonBg: "#1e3a8a",
		},
		ChainIDs: []int64{chains.Mainnet, chains.ZKsync, chains.ZKsyncSepolia},
		KYCAlias: "ZK_SYNC",
	},
	Sunny: {
		Variant:                    Sunny,
		AppName:                    "The Sunny Awards",
		DelegatesURL:               "https://vote.zknation.io/dao/delegates",
		ConfirmationCheckmarkColor: "black",
		IntroText:                  "Celebrate onchain Summer 2024 and explore the grants from the Sunny Awards. For grantees, this claiming tool offers a self-serve interface to claim your grant.",
		ClaimFee:                   true,
		ChainIDs:                   []int64{chains.Mainnet, chains.Optimism, chains.OptimismSepolia, chains.Sepolia},
		KYCAlias:                   "SUNNY",
	},
	Base: {
		Variant:                    Base,
		AppName:                    "Base Claim Tool",
		DelegationEnabled:          true,
		ConfirmationCheckmarkColor: "#0d5af9",
		IntroText:                  "Explore the grants from Base. For grantees, this claiming tool offers a self-serve interface to verify your identity, appoint a delegate and claim your grant.",
		Theme: Theme{
			ClaimCardHeaderBg:     "#eff0f3",
			PrimaryAction:         "#0d5af9",
			PrimaryActionButtonBg: "#0d5af9",
		},
		ChainIDs:          []int64{chains.Mainnet, chains.Base, chains.BaseSepolia},
		KYCAlias:          "BASE",
		OptionalDelegatee: true,
	},
}

// Variants lists every supported variant in a stable order.
func Variants() []Variant {
	return []Variant{Optimism, ZKSync, Sunny, Base}
}

// ParseVariant maps the WHITELABEL_ENV value onto a known variant.
func ParseVariant(raw string) (Variant, error) {
	v := Variant(strings.ToUpper(strings.TrimSpace(raw)))
	if v == "" {
		return "", fmt.Errorf("WHITELABEL_ENV is not set")
	}
	if _, ok := matrix[v]; !ok {
		return "", fmt.Errorf("unknown whitelabel variant %q (supported: OPTIMISM|ZK_SYNC|SUNNY|BASE)", raw)
	}
	return v, nil
}

// Lookup returns a copy of the feature set for v.
func Lookup(v Variant) (Features, error) {
	f, ok := matrix[v]
	if !ok {
		return Features{}, fmt.Errorf("unknown whitelabel variant %q", v)
	}
	f.ChainIDs = slices.Clone(f.ChainIDs)
	return f, nil
}

// Resolve parses raw and returns its feature set.
func Resolve(raw string) (Features, error) {
	v, err := ParseVariant(raw)
	if err != nil {
		return Features{}, err
	}
	return Lookup(v)
}

// Delegatee decides whether a delegate address accompanies the claim.
func (f Features) Delegatee(address string) (string, bool) {
	address = strings.TrimSpace(address)
	if f.DelegationRequired {
		return address, true
	}
	if f.OptionalDelegatee && f.DelegationEnabled && address != "" {
		return address, true
	}
	return "", false
}

// SupportsChain reports whether the variant is deployed on chainID.
func (f Features) SupportsChain(chainID int64) bool {
	return slices.Contains(f.ChainIDs, chainID)
}

// Chains resolves the variant's chain ids into display entries.
func (f Features) Chains() []chains.Chain {
	out := make([]chains.Chain, 0, len(f.ChainIDs))
	for _, id := range f.ChainIDs {
		if c, ok := chains.Lookup(id); ok {
			out = append(out, c)
		}
	}
	return out
}
