// Package identity resolves anonymous actor identities from a client-held
// opaque token plus a one-way-hashed network address. The token is the
// primary identity signal; the address hash is a fallback for callers that
// lost or never received a token. This is a lightweight fraud deterrent,
// not a cryptographic anonymity guarantee.
package identity

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Claim is anything carrying the stored identity of an anonymous actor:
// vote rows and feedback rows both qualify.
type Claim interface {
	// Token returns the actor token recorded on the row.
	Token() string
	// AddressHash returns the one-way hash of the network address recorded on the row.
	AddressHash() string
}

// Resolve returns the effective actor token for a request. A supplied token
// is used as-is; validity is established later by whether it matches a
// stored record. When none is supplied a new random token is issued and
// must be returned to the caller for reuse.
func Resolve(supplied string) (token string, issued bool) {
	if supplied != "" {
		return supplied, false
	}
	return uuid.NewString(), true
}

// Hasher hashes and verifies network addresses with bcrypt at a configurable
// cost. Address hashing runs on the hot anonymous-traffic path, so the cost
// factor is tuned independently from password hashing.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost, clamped to the
// valid bcrypt range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// HashAddress returns the salted one-way hash of a raw network address.
// Stored hashes cannot be reversed to recover the address.
func (h *Hasher) HashAddress(addr string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(addr), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyAddress reports whether addr is the preimage of the stored hash.
func (h *Hasher) VerifyAddress(hash, addr string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(addr)) == nil
}

// Match returns the index of the first claim matching the candidate
// identity, or -1 when none matches.
//
// Token equality always takes precedence over an address-hash match: a
// caller presenting a previously-issued token is identified by that token
// even if their network address changed (addresses are shared by NAT and
// reassigned; tokens are not). Token comparison is cheap, so the full slice
// is scanned for a token match before any bcrypt verification is attempted.
// Address verification costs O(hash-cost) per row; linear scanning is
// acceptable at the bounded per-target cardinality this application sees.
func (h *Hasher) Match(claims []Claim, token, addr string) int {
	if token != "" {
		for i, c := range claims {
			if c.Token() == token {
				return i
			}
		}
	}
	for i, c := range claims {
		if h.VerifyAddress(c.AddressHash(), addr) {
			return i
		}
	}
	return -1
}
