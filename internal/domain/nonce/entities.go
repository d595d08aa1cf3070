package nonce

import (
	"fmt"
	"time"
)

// Nonce records one consumed (user, nonce) pair. Once a row exists the pair
// is permanently unusable, which blocks signature replay and lets a user
// cancel an outstanding signature unilaterally.
type Nonce struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	User      string    `gorm:"size:32;column:user;not null;uniqueIndex:ux_nonces_user_nonce,priority:1"`
	Nonce     uint64    `gorm:"column:nonce;not null;uniqueIndex:ux_nonces_user_nonce,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Nonce) TableName() string { return "nonces" }

// UsedError marks an attempt to consume an already-consumed pair.
type UsedError struct {
	User  string
	Nonce uint64
}

func (e *UsedError) Error() string {
	return fmt.Sprintf("nonce %d already used by %s", e.Nonce, e.User)
}
