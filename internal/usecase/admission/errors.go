package admission

import (
	"errors"
	"fmt"
)

var (
	// ErrCallerIsSigner rejects self-dealing: a loan must be bilaterally
	// proposed, one side acting, the other side having signed.
	ErrCallerIsSigner = errors.New("caller and recovered signer are the same party")
	// ErrCallerNotParticipant rejects a caller on neither side of the terms.
	ErrCallerNotParticipant = errors.New("caller is not a participant on either side")
	// ErrSignerMismatch rejects a signature attributable to neither the
	// counterparty nor any of its delegates.
	ErrSignerMismatch = errors.New("signature recovered from neither counterparty")
)

// PredicateError marks a collateral predicate the container failed.
type PredicateError struct {
	VerifierRef string
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("collateral predicate rejected by verifier %s", e.VerifierRef)
}
