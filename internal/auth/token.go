package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is returned alongside every issued token
const TokenType = "bearer"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrUnsupportedAlg   = errors.New("unsupported signing algorithm")
	ErrMissingSignature = errors.New("token signing secret not provided")
)

// Claims asserts an authenticated admin and the organization owning it
type Claims struct {
	AdminID string `json:"admin_id"`
	OrgID   string `json:"org_id"`
	OrgName string `json:"org_name"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HMAC JWTs
type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

// NewIssuer accepts the HMAC algorithm tags HS256, HS384 and HS512.
func NewIssuer(secret, algorithm, issuer string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSignature
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, algorithm)
	}
	return &Issuer{
		secret: []byte(secret),
		method: method,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source used for iat, exp and validation.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueToken signs claims valid from now until now+ttl.
func (i *Issuer) IssueToken(claims Claims, ttl time.Duration) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.AdminID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(i.method, &claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the claims.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
