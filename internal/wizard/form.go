package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gitcoinco/grant-claims/internal/apperr"
	"github.com/gitcoinco/grant-claims/internal/chains"
	"github.com/gitcoinco/grant-claims/internal/claims"
	"github.com/gitcoinco/grant-claims/internal/features"
	"github.com/gitcoinco/grant-claims/internal/grants"
)

type Phase string

const (
	PhaseForm         Phase = "form"
	PhaseConfirmation Phase = "confirmation"
)

type Token struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Decimals int32  `json:"decimals"`
}

// Proof is the grantee's inclusion proof and claim window. A nil bound
// leaves that side of the window open.
type Proof struct {
	Hashes    []string   `json:"hashes"`
	Amount    string     `json:"amount"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Grant is what the claim flow operates on.
type Grant struct {
	UUID    string `json:"uuid"`
	Title   string `json:"title"`
	Address string `json:"address"`
	ChainID int64  `json:"chainId"`
	Token   *Token `json:"token,omitempty"`
	Proof   *Proof `json:"proof,omitempty"`
}

// NewGrant joins a directory row with the claim looked up for it. The proof
// is attached only when the wallet can claim.
func NewGrant(row grants.Row, claim claims.Claim, chainID int64, token *Token) Grant {
	g := Grant{
		UUID:    row.UUID,
		Title:   row.Title,
		Address: row.Address,
		ChainID: chainID,
		Token:   token,
	}
	if claim.CanClaim && len(claim.Proof) > 0 {
		g.Proof = &Proof{Hashes: claim.Proof, Amount: claim.Amount}
	}
	return g
}

// ClaimRequest is the claim-and-delegate call. Delegatee is empty when no
// delegation accompanies the claim.
type ClaimRequest struct {
	Delegatee    string
	Proof        []string
	Amount       string
	TokenAddress string
	TokenName    string
}

type Receipt struct {
	TxHash string
}

// Claimer submits the on-chain claim.
type Claimer interface {
	ClaimAndDelegate(ctx context.Context, req ClaimRequest) (Receipt, error)
}

// ClaimForm is the claim step. Submit is safe to call concurrently; at most
// one submission runs at a time.
type ClaimForm struct {
	features features.Features
	grant    Grant
	delegate string

	pending atomic.Bool

	mu     sync.Mutex
	phase  Phase
	txHash string
}

func NewClaimForm(f features.Features, grant Grant, delegate string) *ClaimForm {
	return &ClaimForm{
		features: f,
		grant:    grant,
		delegate: strings.TrimSpace(delegate),
		phase:    PhaseForm,
	}
}

func (f *ClaimForm) Validate() error {
	return validateDelegate(f.features, f.delegate)
}

// Delegatee is the address sent with the claim, if any.
func (f *ClaimForm) Delegatee() (string, bool) {
	return f.features.Delegatee(f.delegate)
}

func (f *ClaimForm) Pending() bool { return f.pending.Load() }

func (f *ClaimForm) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *ClaimForm) TxHash() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txHash
}

// Submit validates the grant and calls c. Failures come back as a
// notification; nothing is returned as an error.
func (f *ClaimForm) Submit(ctx context.Context, c Claimer) Notification {
	if f.grant.Proof == nil || len(f.grant.Proof.Hashes) == 0 {
		return failure("Claim not found")
	}
	token := f.grant.Token
	if token == nil || strings.TrimSpace(token.Address) == "" || strings.TrimSpace(token.Name) == "" {
		return failure("Token not found")
	}
	if err := f.Validate(); err != nil {
		return ErrorNotification(err)
	}
	if !f.pending.CompareAndSwap(false, true) {
		return failure("A claim is already pending")
	}
	defer f.pending.Store(false)
	if f.Phase() == PhaseConfirmation {
		return failure("Rewards already claimed")
	}

	req := ClaimRequest{
		Proof:        append([]string(nil), f.grant.Proof.Hashes...),
		Amount:       f.grant.Proof.Amount,
		TokenAddress: token.Address,
		TokenName:    token.Name,
	}
	if d, ok := f.Delegatee(); ok {
		req.Delegatee = d
	}

	receipt, err := c.ClaimAndDelegate(ctx, req)
	if err == nil && receipt.TxHash == "" {
		err = errors.New("claim returned no transaction")
	}
	if err != nil {
		log.Printf("wizard: claim %s failed: %v", f.grant.UUID, err)
		return ClassifyTxError(err)
	}

	f.mu.Lock()
	f.txHash = receipt.TxHash
	f.phase = PhaseConfirmation
	f.mu.Unlock()
	return success("Rewards claimed successfully")
}

func (f *ClaimForm) window(now time.Time) (started, ended bool) {
	started, ended = true, false
	if p := f.grant.Proof; p != nil {
		if p.StartDate != nil {
			started = p.StartDate.Before(now)
		}
		if p.EndDate != nil {
			ended = !p.EndDate.After(now)
		}
	}
	return started, ended
}

// CanSubmit reports whether the submit action is enabled.
func (f *ClaimForm) CanSubmit(now time.Time, chainID int64) bool {
	started, ended := f.window(now)
	return chainID == f.grant.ChainID &&
		f.Validate() == nil &&
		!f.Pending() &&
		f.Phase() == PhaseForm &&
		started && !ended
}

// ButtonLabel is the submit button's text.
func (f *ClaimForm) ButtonLabel(now time.Time, chainID int64) string {
	started, ended := f.window(now)
	switch {
	case !started:
		days := math.Ceil(f.grant.Proof.StartDate.Sub(now).Hours() / 24)
		return fmt.Sprintf("Claim starts in %d days", int(days))
	case ended:
		return "Claim period ended"
	case f.Pending():
		return "Claiming..."
	case chainID != f.grant.ChainID:
		return fmt.Sprintf("Switch to %s to claim", chains.Name(f.grant.ChainID))
	}
	if _, ok := f.Delegatee(); ok {
		return "Delegate and claim"
	}
	return "Claim"
}

// Confirmation is what the user sees after a successful claim.
type Confirmation struct {
	TxHash           string `json:"txHash"`
	ExplorerURL      string `json:"explorerUrl"`
	CheckmarkColor   string `json:"checkmarkColor"`
	SecondButtonText string `json:"secondButtonText,omitempty"`
	SecondButtonLink string `json:"secondButtonLink,omitempty"`
}

func (f *ClaimForm) Confirmation() (Confirmation, error) {
	f.mu.Lock()
	phase, txHash := f.phase, f.txHash
	f.mu.Unlock()
	if phase != PhaseConfirmation {
		return Confirmation{}, apperr.New(apperr.CodeValidation, "claim has not been submitted")
	}
	url, err := chains.TxURL(f.grant.ChainID, txHash)
	if err != nil {
		return Confirmation{}, fmt.Errorf("wizard: confirmation: %w", err)
	}
	c := Confirmation{
		TxHash:         txHash,
		ExplorerURL:    url,
		CheckmarkColor: f.features.ConfirmationCheckmarkColor,
	}
	if f.features.ConfirmationSecondButtonText != "" {
		c.SecondButtonText = f.features.ConfirmationSecondButtonText
		c.SecondButtonLink = f.features.ConfirmationSecondButtonLink
	}
	return c, nil
}
