package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSecret is returned when the token service is built without a signing key.
	ErrMissingSecret = errors.New("token signing secret is required")

	// ErrInvalidToken is the common cause of every verification failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenMalformed is returned when the token cannot be parsed or lacks identity claims.
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	// ErrTokenSignature is returned when the signature or algorithm does not match.
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	// ErrTokenExpired is returned once the expiry has elapsed.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Identity is the user information embedded into a session token.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Claims represents JWT claims.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Identity returns the identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.ID, Email: c.Email, Name: c.Name}
}

// TokenService handles session token generation and validation.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// Option customizes a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service signing with secret. Tokens expire
// lifetime after issuance.
func NewTokenService(secret string, lifetime time.Duration, opts ...Option) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}

	s := &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Lifetime returns the configured token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for identity and returns it with its expiry time.
func (s *TokenService) Issue(identity Identity) (string, time.Time, error) {
	if identity.ID == "" {
		return "", time.Time{}, errors.New("issue token: identity id is empty")
	}

	now := s.now()
	expiresAt := now.Add(s.lifetime)
	claims := &Claims{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	// The exp claim has second precision; report the value the token carries.
	return token, claims.ExpiresAt.Time, nil
}

// Verify validates the signature and expiry of token and returns its claims.
// Every failure wraps ErrInvalidToken; callers should not branch on the
// specific reason except for logging.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// Decode returns the claims of token without checking its signature. It is
// meant for local inspection only and must never back an authentication
// decision.
func (s *TokenService) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// IsExpired reports whether token is past its expiry. Tokens that cannot be
// decoded or carry no expiry count as expired.
func (s *TokenService) IsExpired(token string) bool {
	claims, err := s.Decode(token)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}
