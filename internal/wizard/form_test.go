package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gitcoinco/grant-claims/internal/chains"
	"github.com/gitcoinco/grant-claims/internal/claims"
	"github.com/gitcoinco/grant-claims/internal/features"
	"github.com/gitcoinco/grant-claims/internal/grants"
)

const delegateAddr = "0x52908400098527886E0F7030069857D2E4169EE7"

type stubClaimer struct {
	receipt Receipt
	err     error
	calls   atomic.Int32
	last    ClaimRequest
	block   chan struct{}
}

func (s *stubClaimer) ClaimAndDelegate(ctx context.Context, req ClaimRequest) (Receipt, error) {
	s.calls.Add(1)
	s.last = req
	if s.block != nil {
		<-s.block
	}
	return s.receipt, s.err
}

func testGrant() Grant {
	return Grant{
		UUID:    "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f",
		Title:   "Project",
		Address: "0xde709f2102306220921060314715629080e2fb77",
		ChainID: chains.Optimism,
		Token:   &Token{Address: "0x4200000000000000000000000000000000000042", Name: "Optimism", Ticker: "OP", Decimals: 18},
		Proof:   &Proof{Hashes: []string{"0x1f14d0d899eb52d9467e3d3888cc2741d4d915ff13e29a1aac99dfcfea6a0d0f"}, Amount: claims.EligibleAmount},
	}
}

func TestSubmitWithoutProofNeverClaims(t *testing.T) {
	g := testGrant()
	g.Proof = nil
	c := &stubClaimer{receipt: Receipt{TxHash: "0x1"}}
	n := NewClaimForm(mustFeatures(t, features.Optimism), g, "").Submit(context.Background(), c)
	if n.Description != "Claim not found" || !n.Failed() {
		t.Fatalf("expected Claim not found, got %+v", n)
	}
	if c.calls.Load() != 0 {
		t.Fatalf("claimer called %d times", c.calls.Load())
	}
}

func TestSubmitWithoutTokenNeverClaims(t *testing.T) {
	for _, tok := range []*Token{nil, {Name: "OP"}, {Address: "0x4200000000000000000000000000000000000042"}} {
		g := testGrant()
		g.Token = tok
		c := &stubClaimer{receipt: Receipt{TxHash: "0x1"}}
		n := NewClaimForm(mustFeatures(t, features.Optimism), g, "").Submit(context.Background(), c)
		if n.Description != "Token not found" {
			t.Fatalf("expected Token not found for %+v, got %+v", tok, n)
		}
		if c.calls.Load() != 0 {
			t.Fatal("claimer must not be called")
		}
	}
}

func TestSubmitSuccessMovesToConfirmation(t *testing.T) {
	c := &stubClaimer{receipt: Receipt{TxHash: "0xfeed"}}
	form := NewClaimForm(mustFeatures(t, features.Optimism), testGrant(), "")
	n := form.Submit(context.Background(), c)
	if n.Description != "Rewards claimed successfully" || n.Failed() {
		t.Fatalf("unexpected notification %+v", n)
	}
	if form.Phase() != PhaseConfirmation || form.TxHash() != "0xfeed" {
		t.Fatalf("expected confirmation with hash, got %s %q", form.Phase(), form.TxHash())
	}
	if c.last.TokenName != "Optimism" || len(c.last.Proof) != 1 || c.last.Delegatee != "" {
		t.Fatalf("unexpected request %+v", c.last)
	}

	again := form.Submit(context.Background(), c)
	if !again.Failed() || c.calls.Load() != 1 {
		t.Fatalf("second submit after confirmation should not claim: %+v (%d calls)", again, c.calls.Load())
	}
}

func TestSubmitFailureKeepsPhase(t *testing.T) {
	c := &stubClaimer{err: fmt.Errorf("send: %w", &UserRejectedError{})}
	form := NewClaimForm(mustFeatures(t, features.Optimism), testGrant(), "")
	n := form.Submit(context.Background(), c)
	if n.Title != "Transaction Failed" || n.Description != "User rejected the transaction" {
		t.Fatalf("unexpected notification %+v", n)
	}
	if form.Phase() != PhaseForm || form.Pending() {
		t.Fatalf("expected form phase and no pending submission, got %s %v", form.Phase(), form.Pending())
	}
}

func TestSubmitEmptyReceiptIsFailure(t *testing.T) {
	form := NewClaimForm(mustFeatures(t, features.Optimism), testGrant(), "")
	n := form.Submit(context.Background(), &stubClaimer{})
	if !n.Failed() || form.Phase() != PhaseForm {
		t.Fatalf("expected failure without tx hash, got %+v", n)
	}
}

func TestSubmitAtMostOneInFlight(t *testing.T) {
	c := &stubClaimer{receipt: Receipt{TxHash: "0xfeed"}, block: make(chan struct{})}
	form := NewClaimForm(mustFeatures(t, features.Optimism), testGrant(), "")

	done := make(chan Notification)
	go func() { done <- form.Submit(context.Background(), c) }()

	deadline := time.Now().Add(2 * time.Second)
	for !form.Pending() {
		if time.Now().After(deadline) {
			t.Fatal("first submission never started")
		}
		time.Sleep(time.Millisecond)
	}
	if form.CanSubmit(time.Now(), chains.Optimism) {
		t.Fatal("submit must be disabled while pending")
	}
	if label := form.ButtonLabel(time.Now(), chains.Optimism); label != "Claiming..." {
		t.Fatalf("expected Claiming..., got %q", label)
	}

	n := form.Submit(context.Background(), c)
	if !n.Failed() || !strings.Contains(n.Description, "pending") {
		t.Fatalf("expected pending notification, got %+v", n)
	}

	close(c.block)
	if first := <-done; first.Failed() {
		t.Fatalf("first submission failed: %+v", first)
	}
	if c.calls.Load() != 1 {
		t.Fatalf("expected 1 claim call, got %d", c.calls.Load())
	}
}

func TestDelegateeSelection(t *testing.T) {
	cases := []struct {
		variant  features.Variant
		delegate string
		want     string
		label    string
	}{
		{features.ZKSync, delegateAddr, delegateAddr, "Delegate and claim"},
		{features.Base, delegateAddr, delegateAddr, "Delegate and claim"},
		{features.Base, "", "", "Claim"},
		{features.Optimism, delegateAddr, "", "Claim"},
		{features.Sunny, "", "", "Claim"},
	}
	for _, tc := range cases {
		f := mustFeatures(t, tc.variant)
		g := testGrant()
		g.ChainID = f.ChainIDs[1]
		c := &stubClaimer{receipt: Receipt{TxHash: "0x1"}}
		form := NewClaimForm(f, g, tc.delegate)
		if label := form.ButtonLabel(time.Now(), g.ChainID); label != tc.label {
			t.Errorf("%s/%q: label %q, want %q", tc.variant, tc.delegate, label, tc.label)
		}
		form.Submit(context.Background(), c)
		if c.last.Delegatee != tc.want {
			t.Errorf("%s/%q: delegatee %q, want %q", tc.variant, tc.delegate, c.last.Delegatee, tc.want)
		}
	}
}

func TestRequiredDelegationBlocksInvalidAddress(t *testing.T) {
	f := mustFeatures(t, features.ZKSync)
	g := testGrant()
	g.ChainID = chains.ZKsync
	for _, bad := range []string{"", "0x123", "52908400098527886E0F7030069857D2E4169EE7"} {
		c := &stubClaimer{receipt: Receipt{TxHash: "0x1"}}
		form := NewClaimForm(f, g, bad)
		if form.Validate() == nil {
			t.Errorf("expected %q to fail validation", bad)
		}
		if form.CanSubmit(time.Now(), chains.ZKsync) {
			t.Errorf("expected submit disabled for %q", bad)
		}
		if n := form.Submit(context.Background(), c); n.Description != "Invalid Ethereum address" {
			t.Errorf("expected invalid address notification for %q, got %+v", bad, n)
		}
		if c.calls.Load() != 0 {
			t.Errorf("claimer called for %q", bad)
		}
	}
}

func TestButtonLabelAndWindow(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(36 * time.Hour)
	end := now.Add(30 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	g := testGrant()
	g.Proof.StartDate = &start
	g.Proof.EndDate = &end
	f := mustFeatures(t, features.Optimism)
	form := NewClaimForm(f, g, "")
	if label := form.ButtonLabel(now, chains.Optimism); label != "Claim starts in 2 days" {
		t.Fatalf("unexpected label %q", label)
	}
	if form.CanSubmit(now, chains.Optimism) {
		t.Fatal("submit must be disabled before the window opens")
	}

	g.Proof.StartDate = &past
	g.Proof.EndDate = &past
	form = NewClaimForm(f, g, "")
	if label := form.ButtonLabel(now, chains.Optimism); label != "Claim period ended" {
		t.Fatalf("unexpected label %q", label)
	}
	if form.CanSubmit(now, chains.Optimism) {
		t.Fatal("submit must be disabled after the window closes")
	}

	g.Proof.EndDate = &end
	form = NewClaimForm(f, g, "")
	if label := form.ButtonLabel(now, chains.Mainnet); label != "Switch to OP Mainnet to claim" {
		t.Fatalf("unexpected label %q", label)
	}
	if form.CanSubmit(now, chains.Mainnet) {
		t.Fatal("submit must be disabled on the wrong chain")
	}
	if !form.CanSubmit(now, chains.Optimism) {
		t.Fatal("submit should be enabled inside the window on the right chain")
	}
	if label := form.ButtonLabel(now, chains.Optimism); label != "Claim" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestNoBoundsMeansOpenWindow(t *testing.T) {
	form := NewClaimForm(mustFeatures(t, features.Optimism), testGrant(), "")
	if !form.CanSubmit(time.Now(), chains.Optimism) {
		t.Fatal("grant without bounds should be claimable")
	}
}

func TestClassifyTxError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ContractRevertedError{Reason: "Already claimed"}, "Already claimed"},
		{fmt.Errorf("wrap: %w", &ContractRevertedError{ErrorName: "InvalidProof"}), "InvalidProof"},
		{&ContractExecutionError{ShortMessage: "gas estimation failed"}, "gas estimation failed"},
		{&ContractExecutionError{ShortMessage: "outer", Cause: &ContractRevertedError{Reason: "inner reason"}}, "outer"},
		{fmt.Errorf("send: %w", &ContractExecutionError{Cause: &ContractRevertedError{Reason: "inner"}}), "An unknown error occurred"},
		{&UserRejectedError{}, "User rejected the transaction"},
		{fmt.Errorf("send: %w", &InsufficientFundsError{}), "Insufficient funds"},
		{errors.New("boom"), "An unknown error occurred"},
		{&ContractRevertedError{}, "An unknown error occurred"},
	}
	for _, tc := range cases {
		n := ClassifyTxError(tc.err)
		if n.Description != tc.want {
			t.Errorf("ClassifyTxError(%v) = %q, want %q", tc.err, n.Description, tc.want)
		}
		if n.Title != "Transaction Failed" || !n.Failed() {
			t.Errorf("unexpected notification shape %+v", n)
		}
	}
}

func TestConfirmationRequiresSubmit(t *testing.T) {
	form := NewClaimForm(mustFeatures(t, features.Base), testGrant(), "")
	if _, err := form.Confirmation(); err == nil {
		t.Fatal("expected error before submission")
	}
}

func TestNewGrant(t *testing.T) {
	row := grants.Row{UUID: "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f", Title: "P", Address: "0xabc"}
	tok := &Token{Address: "0x4200000000000000000000000000000000000042", Name: "Optimism"}

	g := NewGrant(row, claims.Claim{CanClaim: true, Proof: []string{"0x01"}, Amount: "5"}, chains.Optimism, tok)
	if g.Proof == nil || g.Proof.Amount != "5" || g.Title != "P" {
		t.Fatalf("unexpected grant %+v", g)
	}
	g = NewGrant(row, claims.Claim{Amount: "0"}, chains.Optimism, tok)
	if g.Proof != nil {
		t.Fatal("ineligible claim must not carry a proof")
	}
}

func TestDryRunClaimer(t *testing.T) {
	req := ClaimRequest{
		Proof:        testGrant().Proof.Hashes,
		TokenAddress: "0x4200000000000000000000000000000000000042",
		TokenName:    "Optimism",
	}
	a, err := DryRunClaimer{}.ClaimAndDelegate(context.Background(), req)
	if err != nil {
		t.Fatalf("ClaimAndDelegate: %v", err)
	}
	b, _ := DryRunClaimer{}.ClaimAndDelegate(context.Background(), req)
	if a.TxHash != b.TxHash || len(a.TxHash) != 66 {
		t.Fatalf("expected deterministic 32-byte hash, got %q and %q", a.TxHash, b.TxHash)
	}

	req.Proof = []string{"0x01"}
	_, err = DryRunClaimer{}.ClaimAndDelegate(context.Background(), req)
	var reverted *ContractRevertedError
	if !errors.As(err, &reverted) {
		t.Fatalf("expected revert for malformed proof, got %v", err)
	}
}
