package verifier

import (
	"errors"
	"fmt"
	"time"
)

// ErrBatchLength is returned when a batched whitelist update has mismatched
// slice lengths; the whole batch is rejected.
var ErrBatchLength = errors.New("verifier batch: ids and flags length mismatch")

// UnknownError marks a predicate referencing a verifier that is not
// whitelisted.
type UnknownError struct {
	VerifierID string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("verifier %s is not whitelisted", e.VerifierID)
}

// Verifier is one whitelisted predicate-verifier reference.
type Verifier struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Ref       string    `gorm:"size:32;column:ref;not null;uniqueIndex"`
	Allowed   bool      `gorm:"column:allowed;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Verifier) TableName() string { return "verifiers" }
