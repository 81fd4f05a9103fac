// Package wizard is the claim flow: identity verification, delegate
// appointment and claim submission, gated step by step.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gitcoinco/grant-claims/internal/features"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusError      Status = "ERROR"
)

// Step indexes.
const (
	StepKYC = iota
	StepDelegate
	StepClaim
)

var (
	ErrStepOutOfRange   = errors.New("wizard: step out of range")
	ErrStepInaccessible = errors.New("wizard: step is not accessible yet")
	ErrNoSession        = errors.New("wizard: no verification session started")
	ErrAlreadyClaimed   = errors.New("wizard: rewards already claimed")
	ErrClaimUnavailable = errors.New("wizard: claim cannot be submitted")
)

type Rules struct {
	IsRequired   bool   `json:"isRequired,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Step is one entry of the flow. Content is whatever the front end renders
// for it and is never inspected here.
type Step struct {
	Status  Status `json:"status"`
	Name    string `json:"name"`
	Content any    `json:"content,omitempty"`
	Rules   *Rules `json:"rules,omitempty"`
}

// Accessible reports whether step i may be viewed given the statuses of
// the steps before it.
func Accessible(statuses []Status, i int) bool {
	switch {
	case i < 0 || i >= len(statuses):
		return false
	case i == StepKYC:
		return true
	case i == StepDelegate:
		return statuses[StepKYC] == StatusCompleted
	default:
		return statuses[StepKYC] == StatusCompleted && statuses[StepDelegate] == StatusCompleted
	}
}

// SessionInitializer opens a hosted identity verification session.
type SessionInitializer interface {
	InitSession(ctx context.Context, alias string) (string, error)
}

// Wizard holds the state of one claim flow. It is not safe for concurrent
// use apart from the claim form's submit guard.
type Wizard struct {
	features  features.Features
	grant     Grant
	steps     []Step
	current   int
	sessionID string
	delegate  string
	form      *ClaimForm
}

func New(f features.Features, grant Grant) *Wizard {
	return &Wizard{
		features: f,
		grant:    grant,
		steps: []Step{
			{Status: StatusPending, Name: "KYC", Rules: &Rules{IsRequired: true, ErrorMessage: "Identity verification is required"}},
			{Status: StatusPending, Name: "Appoint Delegate", Rules: &Rules{IsRequired: f.DelegationRequired, ErrorMessage: "Invalid Ethereum address"}},
			{Status: StatusPending, Name: "Claim"},
		},
	}
}

// Steps returns a copy of the steps.
func (w *Wizard) Steps() []Step {
	out := make([]Step, len(w.steps))
	copy(out, w.steps)
	return out
}

func (w *Wizard) Statuses() []Status {
	out := make([]Status, len(w.steps))
	for i, s := range w.steps {
		out[i] = s.Status
	}
	return out
}

func (w *Wizard) Current() int { return w.current }

func (w *Wizard) Accessible(i int) bool {
	return Accessible(w.Statuses(), i)
}

// Select makes step i the viewed step. Statuses are untouched.
func (w *Wizard) Select(i int) error {
	if i < 0 || i >= len(w.steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, i)
	}
	if !w.Accessible(i) {
		return fmt.Errorf("%w: %s", ErrStepInaccessible, w.steps[i].Name)
	}
	w.current = i
	return nil
}

func (w *Wizard) SetStatus(i int, s Status) error {
	if i < 0 || i >= len(w.steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, i)
	}
	w.steps[i].Status = s
	return nil
}

// Progress is the viewed step's position as a percentage.
func (w *Wizard) Progress() float64 {
	return float64(w.current) / float64(len(w.steps)) * 100
}

func (w *Wizard) SessionID() string { return w.sessionID }

// StartVerification opens a verification session under the variant's KYC
// alias. On failure the step keeps its status.
func (w *Wizard) StartVerification(ctx context.Context, s SessionInitializer) (string, error) {
	id, err := s.InitSession(ctx, w.features.KYCAlias)
	if err != nil {
		return "", fmt.Errorf("wizard: start verification: %w", err)
	}
	w.sessionID = id
	if w.steps[StepKYC].Status != StatusCompleted {
		w.steps[StepKYC].Status = StatusInProgress
	}
	return id, nil
}

// FinishVerification is the hosted flow's completion callback.
func (w *Wizard) FinishVerification() error {
	if w.sessionID == "" {
		return ErrNoSession
	}
	w.steps[StepKYC].Status = StatusCompleted
	return nil
}

// FailVerification records a rejection from the hosted flow. The user may
// start a new session.
func (w *Wizard) FailVerification() error {
	if w.sessionID == "" {
		return ErrNoSession
	}
	w.steps[StepKYC].Status = StatusError
	w.sessionID = ""
	return nil
}

// AppointDelegate completes the delegate step with address, which may be
// empty only when delegation is not required. The delegate is fixed once the
// claim went through.
func (w *Wizard) AppointDelegate(address string) error {
	if !w.Accessible(StepDelegate) {
		return fmt.Errorf("%w: %s", ErrStepInaccessible, w.steps[StepDelegate].Name)
	}
	if w.claimed() {
		return ErrAlreadyClaimed
	}
	address = strings.TrimSpace(address)
	if err := validateDelegate(w.features, address); err != nil {
		return err
	}
	w.delegate = address
	w.steps[StepDelegate].Status = StatusCompleted
	w.form = nil
	return nil
}

func (w *Wizard) Delegate() string { return w.delegate }

// ClaimForm returns the claim step's form, creating it on first use.
func (w *Wizard) ClaimForm() (*ClaimForm, error) {
	if !w.Accessible(StepClaim) {
		return nil, fmt.Errorf("%w: %s", ErrStepInaccessible, w.steps[StepClaim].Name)
	}
	if w.form == nil {
		w.form = NewClaimForm(w.features, w.grant, w.delegate)
	}
	return w.form, nil
}

func (w *Wizard) claimed() bool {
	if w.steps[StepClaim].Status == StatusCompleted {
		return true
	}
	return w.form != nil && w.form.Phase() == PhaseConfirmation
}

// Claim submits the claim form and completes the claim step on success. It
// refuses when the form's submit action is disabled for now and chainID,
// reporting the button label as the reason.
func (w *Wizard) Claim(ctx context.Context, c Claimer, now time.Time, chainID int64) (Notification, error) {
	form, err := w.ClaimForm()
	if err != nil {
		return Notification{}, err
	}
	if w.claimed() {
		return Notification{}, ErrAlreadyClaimed
	}
	if !form.CanSubmit(now, chainID) {
		return Notification{}, fmt.Errorf("%w: %s", ErrClaimUnavailable, form.ButtonLabel(now, chainID))
	}
	n := form.Submit(ctx, c)
	if form.Phase() == PhaseConfirmation {
		w.steps[StepClaim].Status = StatusCompleted
	}
	return n, nil
}
