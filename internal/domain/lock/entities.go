package lock

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Lock marks one collateral item as pledged to exactly one active loan.
// The row exists iff the item is pledged.
type Lock struct {
	Key       string    `gorm:"primaryKey;size:64;column:lock_key"`
	LoanID    uint64    `gorm:"column:loan_id;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Lock) TableName() string { return "collateral_locks" }

// Key derives the lock key from the collateral reference.
func Key(asset string, itemID uint64) string {
	h := sha256.New()
	h.Write([]byte(asset))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], itemID)
	h.Write(buf[:])
	return hex.EncodeToString(h.Sum(nil))
}
