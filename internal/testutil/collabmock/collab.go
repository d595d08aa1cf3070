// Package collabmock holds function-backed mocks for the external
// collaborators the admission controller consults. Only methods you need are
// included; fill in the function fields a test requires.
package collabmock

import (
	"context"

	"loanvault-backend/internal/domain/collab"
)

var (
	_ collab.PredicateVerifier = (*Predicates)(nil)
	_ collab.SignatureChecker  = (*SigCheck)(nil)
)

// Predicates satisfies collab.PredicateVerifier. The default (no fn set)
// accepts every predicate.
type Predicates struct {
	VerifyPredicateFn func(ctx context.Context, verifierRef string, rule []byte, instance string) (bool, error)
}

func (m *Predicates) VerifyPredicate(ctx context.Context, verifierRef string, rule []byte, instance string) (bool, error) {
	if m.VerifyPredicateFn != nil {
		return m.VerifyPredicateFn(ctx, verifierRef, rule, instance)
	}
	return true, nil
}

// SigCheck satisfies collab.SignatureChecker. The default rejects, matching
// a counterparty with no contract-side acceptance logic.
type SigCheck struct {
	IsValidSignatureFn func(ctx context.Context, target string, digest []byte, signature []byte) (bool, error)
}

func (m *SigCheck) IsValidSignature(ctx context.Context, target string, digest []byte, signature []byte) (bool, error) {
	if m.IsValidSignatureFn != nil {
		return m.IsValidSignatureFn(ctx, target, digest, signature)
	}
	return false, nil
}
