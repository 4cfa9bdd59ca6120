// Package auth verifies bearer tokens and produces the verified identity
// triple the core consumes. Token issuance belongs to the identity
// provider; this side only checks signatures and reads claims.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cleanmap/cleanmap/internal/domain"
)

// ErrBadToken covers every verification failure: missing, malformed,
// wrong signature, expired. Callers map it to 401 without detail.
var ErrBadToken = errors.New("invalid bearer token")

// Claims is the token payload we accept: the registered subject plus a
// display-name claim.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens against a shared secret and classifies
// admins by a subject allow-list.
type Verifier struct {
	secret []byte
	admins map[string]bool
}

// NewVerifier creates a verifier. adminSubjects is the static moderator
// allow-list (typically from the ADMIN_UIDS environment variable).
func NewVerifier(secret []byte, adminSubjects []string) *Verifier {
	admins := make(map[string]bool, len(adminSubjects))
	for _, s := range adminSubjects {
		if s != "" {
			admins[s] = true
		}
	}
	return &Verifier{secret: secret, admins: admins}
}

// Verify parses and validates a raw token and returns the identity triple.
func (v *Verifier) Verify(raw string) (domain.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject", ErrBadToken)
	}

	return domain.Identity{
		Subject: claims.Subject,
		Name:    claims.Name,
		Admin:   v.admins[claims.Subject],
	}, nil
}

// IsAdmin is the predicate injected into the resolution coordinator.
func (v *Verifier) IsAdmin(id domain.Identity) bool {
	return v.admins[id.Subject]
}
