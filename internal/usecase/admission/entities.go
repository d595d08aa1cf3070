package admission

import (
	"encoding/json"
	"time"

	"loanvault-backend/internal/domain/loan"
	"loanvault-backend/pkg/consent"
)

// Predicate is one rule the resolved collateral container must satisfy,
// checked by a whitelisted verifier at admission time.
type Predicate struct {
	VerifierRef string          `json:"verifier_ref" validate:"required,hex32"`
	Rule        json.RawMessage `json:"rule" validate:"required"`
}

// InitializeInput is a proposed loan plus one party's consent signature.
// The caller (the other party) is taken from the authenticated actor.
type InitializeInput struct {
	Terms    loan.Terms
	Borrower string
	Lender   string
	Envelope consent.Envelope
	Nonce    uint64
}

// PermitInput is an offline authorization granting the ledger custody
// account a one-time transfer right over the collateral item.
type PermitInput struct {
	Deadline  time.Time
	Signature []byte
}

// signedTerms is the exact structured payload an InitializeLoan signature
// covers. Field order is part of the wire contract.
type signedTerms struct {
	DurationSecs    uint64 `json:"duration_secs"`
	NumInstallments uint32 `json:"num_installments"`
	RateBps         uint64 `json:"rate_bps"`
	Principal       uint64 `json:"principal"`
	CollateralAsset string `json:"collateral_asset"`
	CollateralID    uint64 `json:"collateral_id"`
	Currency        string `json:"currency"`
	Nonce           uint64 `json:"nonce"`
}

// signedTermsWithItems omits the concrete item id and binds a digest of the
// predicate list instead, so terms can be signed against "any bundle
// satisfying these rules" rather than one frozen at signing time.
type signedTermsWithItems struct {
	DurationSecs    uint64 `json:"duration_secs"`
	NumInstallments uint32 `json:"num_installments"`
	RateBps         uint64 `json:"rate_bps"`
	Principal       uint64 `json:"principal"`
	CollateralAsset string `json:"collateral_asset"`
	Currency        string `json:"currency"`
	PredicatesHash  string `json:"predicates_hash"`
	Nonce           uint64 `json:"nonce"`
}

// TermsDigest is the digest a counterparty signs for the plain path.
// Exported so clients and tests build signatures the same way.
func TermsDigest(t loan.Terms, nonce uint64) ([]byte, error) {
	return consent.Digest(signedTerms{
		DurationSecs:    t.DurationSecs,
		NumInstallments: t.NumInstallments,
		RateBps:         t.RateBps,
		Principal:       t.Principal,
		CollateralAsset: t.CollateralAsset,
		CollateralID:    t.CollateralID,
		Currency:        t.Currency,
		Nonce:           nonce,
	})
}

// TermsWithItemsDigest is the digest for the container/predicates path.
func TermsWithItemsDigest(t loan.Terms, predicates []Predicate, nonce uint64) ([]byte, error) {
	ph, err := consent.Digest(predicates)
	if err != nil {
		return nil, err
	}
	return consent.Digest(signedTermsWithItems{
		DurationSecs:    t.DurationSecs,
		NumInstallments: t.NumInstallments,
		RateBps:         t.RateBps,
		Principal:       t.Principal,
		CollateralAsset: t.CollateralAsset,
		Currency:        t.Currency,
		PredicatesHash:  hexDigest(ph),
		Nonce:           nonce,
	})
}
