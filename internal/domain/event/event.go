package event

import (
	"context"
	"time"
)

type Kind string

const (
	LoanStarted          Kind = "loan-started"
	LoanRepaid           Kind = "loan-repaid"
	InstallmentReceived  Kind = "installment-received"
	LoanClaimed          Kind = "loan-claimed"
	NonceUsed            Kind = "nonce-used"
	FeesClaimed          Kind = "fees-claimed"
	FeeRateChanged       Kind = "fee-rate-changed"
	FeeControllerChanged Kind = "fee-controller-changed"
	VerifierAllowed      Kind = "verifier-allowed-changed"
	ApprovalChanged      Kind = "approval-changed"
)

// Event is one audit record. Published best-effort after commit; ledger
// state never depends on delivery.
type Event struct {
	ID     string         `json:"id"`
	Kind   Kind           `json:"kind"`
	At     time.Time      `json:"at"`
	Fields map[string]any `json:"fields,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Noop discards events; handy default for tests.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
