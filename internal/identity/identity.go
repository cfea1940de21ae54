package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	identityerrors "breakly/internal/identity/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the external identity provider vouches for.
type Identity struct {
	ID    string
	Email string
	Name  string
}

//go:generate mockgen -source=identity.go -destination=mock/identity_mock.go -package=mock
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with a shared secret. The subject
// claim carries the user id.
type JWTVerifier struct {
	Secret []byte
	Issuer string
	Leeway time.Duration
}

func NewJWTVerifier(secret, issuer string, leeway time.Duration) *JWTVerifier {
	return &JWTVerifier{Secret: []byte(secret), Issuer: issuer, Leeway: leeway}
}

func (v *JWTVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, identityerrors.ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.Leeway),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}

	t, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return v.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, identityerrors.ErrTokenExpired
		}
		return Identity{}, identityerrors.ErrInvalidToken.WithCause(err)
	}

	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Subject == "" {
		return Identity{}, identityerrors.ErrInvalidToken
	}

	return Identity{
		ID:    c.Subject,
		Email: strings.TrimSpace(c.Email),
		Name:  strings.TrimSpace(c.Name),
	}, nil
}

// Issue signs a token for id. Used by local tooling and tests; production
// tokens come from the identity provider.
func (v *JWTVerifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    v.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}
