package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers tokens that cannot be parsed as JWTs.
	ErrTokenInvalid = errors.New("invalid access token")
	// ErrTokenExpired is returned when the token's exp claim has passed.
	ErrTokenExpired = errors.New("access token expired")
	// ErrNoIdentity is returned when the claims carry no usable subject.
	ErrNoIdentity = errors.New("token carries no identity")
)

// Identity is the user record decoded from a stored access token. Role may
// legitimately be blank here — the session engine, not the decoder, decides
// what to do about that.
type Identity struct {
	ID       string
	Email    string
	FullName string
	Role     string
	Expires  time.Time
}

type identityClaims struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Decoder extracts identity claims from access tokens without verifying
// the signature (the client holds no key). Leeway softens clock skew on
// the expiry check only.
type Decoder struct {
	leeway time.Duration
	now    func() time.Time
}

func NewDecoder(leeway time.Duration) (*Decoder, error) {
	if leeway < 0 || leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Decoder{leeway: leeway, now: time.Now}, nil
}

// Identity decodes the claims of raw. Expired or structurally invalid
// tokens return an error; a blank role does not, so callers can
// distinguish "token unusable" from "token usable but role missing".
func (d *Decoder) Identity(raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenInvalid
	}

	claims := &identityClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, ErrTokenInvalid
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
		if !d.now().Before(expires.Add(d.leeway)) {
			return nil, ErrTokenExpired
		}
	}

	id := claims.Subject
	if id == "" {
		return nil, ErrNoIdentity
	}

	return &Identity{
		ID:       id,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     strings.TrimSpace(claims.Role),
		Expires:  expires,
	}, nil
}
