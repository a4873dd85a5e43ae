package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoPrivateKey = errors.New("jwt private key not loaded")

// OperatorClaims identify whoever may start and persist autoplay runs.
type OperatorClaims struct {
	Operator string `json:"op"`
	jwt.RegisteredClaims
}

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

func NewJWTFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey) *JWT {
	return &JWT{
		privateKey:    privateKey,
		publicKey:     publicKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: time.Hour * 24 * 30,
	}
}

// NewJWT loads both keys. Use it where tokens are issued.
func NewJWT() (*JWT, error) {
	privateKeyPEM, err := loadSecret("JWT_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT private key: %w", err)
	}

	j, err := NewVerifier()
	if err != nil {
		return nil, err
	}
	j.privateKey = privateKey
	return j, nil
}

// NewVerifier loads only the public key.
func NewVerifier() (*JWT, error) {
	publicKeyPEM, err := loadSecret("JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT public key: %w", err)
	}
	return NewJWTFromKeys(nil, publicKey), nil
}

// JWTEnabled reports whether a public key is configured. Without one the
// service runs unauthenticated.
func JWTEnabled() bool {
	return secretSet("JWT_PUBLIC_KEY")
}

func (j *JWT) Sign(claims jwt.Claims) (string, error) {
	if j.privateKey == nil {
		return "", ErrNoPrivateKey
	}
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) IssueOperatorToken(operator string, now time.Time) (string, error) {
	return j.Sign(OperatorClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenLifetime)),
		},
	})
}

func (j *JWT) ParseWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
}

func (j *JWT) ParseOperator(tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	if _, err := j.ParseWithClaims(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Operator == "" {
		return nil, fmt.Errorf("token has no operator")
	}
	return claims, nil
}
