// Package session encodes an authenticated identity into a signed bearer
// token and decodes it back.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the cookie the boundary stores the token in.
	CookieName = "session"
	// DefaultTTL is how long a token stays valid.
	DefaultTTL = 24 * time.Hour
	// ContextKey is the echo context key holding the decoded *Identity.
	ContextKey = "session.identity"

	issuer = "notes-api"
)

var ErrIncompleteIdentity = errors.New("session: identity requires id, username and email")

// Identity is the authenticated caller carried by a token.
type Identity struct {
	ID        string
	Username  string
	Email     string
	IsAdmin   bool
	TokenID   string
	ExpiresAt time.Time
}

type claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Codec signs tokens with HS256.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode packs the identity and an absolute expiry into a signed token.
func (c *Codec) Encode(id Identity) (string, time.Time, error) {
	if id.ID == "" || id.Username == "" || id.Email == "" {
		return "", time.Time{}, ErrIncompleteIdentity
	}

	now := c.now()
	exp := now.Add(c.ttl)
	cl := claims{
		UserID:   id.ID,
		Username: id.Username,
		Email:    id.Email,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Decode returns the identity in token, or nil when the token is malformed,
// tampered with, signed with another algorithm or expired.
func (c *Codec) Decode(token string) *Identity {
	if token == "" {
		return nil
	}

	var cl claims
	tkn, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid {
		return nil
	}
	if cl.UserID == "" || cl.ExpiresAt == nil {
		return nil
	}

	return &Identity{
		ID:        cl.UserID,
		Username:  cl.Username,
		Email:     cl.Email,
		IsAdmin:   cl.IsAdmin,
		TokenID:   cl.ID,
		ExpiresAt: cl.ExpiresAt.Time,
	}
}
