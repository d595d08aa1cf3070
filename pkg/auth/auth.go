// Package auth issues and parses the HS256 access tokens that carry a
// caller's ledger identity and role set. Every role-gated operation takes an
// Actor explicitly; nothing reads ambient global state.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin      = "admin"
	RoleOriginator = "originator"
	RoleRepayer    = "repayer"
	RoleFeeClaimer = "fee-claimer"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrNoActor      = errors.New("auth: token carries no actor id")
	ErrForbidden    = errors.New("auth: actor lacks required role")
)

// Actor is the caller identity injected into every role-gated entrypoint.
type Actor struct {
	ID    string
	Roles []string
}

func (a Actor) Has(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// System returns the service-internal actor used when one component calls
// another on its own authority (e.g. the admission controller opening loans).
func System(id string, roles ...string) Actor { return Actor{ID: id, Roles: roles} }

// Require returns ErrForbidden unless the actor holds the role.
func Require(a Actor, role string) error {
	if !a.Has(role) {
		return ErrForbidden
	}
	return nil
}

type claims struct {
	jwt.RegisteredClaims
	ActorID string   `json:"actor_id"`
	Roles   []string `json:"roles,omitempty"`
}

// Mint signs an access token for the actor.
func Mint(secret []byte, actor Actor, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ActorID: actor.ID,
		Roles:   actor.Roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

// Parse validates a token and extracts the actor.
func Parse(secret []byte, token string) (Actor, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Actor{}, ErrInvalidToken
	}
	if c.ActorID == "" {
		return Actor{}, ErrNoActor
	}
	return Actor{ID: c.ActorID, Roles: c.Roles}, nil
}
