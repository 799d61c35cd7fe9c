// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// auth service via small interfaces declared on the consumer side.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audiences keep access and refresh tokens from being accepted in place of each other.
const (
	AudienceAccess  = "access"
	AudienceRefresh = "refresh"
)

var (
	// ErrTokenInvalid covers bad signatures, malformed tokens and wrong audiences.
	ErrTokenInvalid = errors.New("sec: token is invalid")

	// ErrTokenExpired is returned for a well-signed token past its expiry.
	ErrTokenExpired = errors.New("sec: token has expired")
)

// Identity is the set of account fields embedded in an access token.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// AccessClaims represents the payload embedded inside a JWT Access Token.
//
// # Why full identity?
//
// The [middleware.Authenticate] can reconstruct the caller without querying
// the account store on every request.
type AccessClaims struct {
	jwt.RegisteredClaims
	Identity
}

// RefreshClaims carries only the account id. Everything else is re-read from
// the store when the token is redeemed.
type RefreshClaims struct {
	jwt.RegisteredClaims
	ID string `json:"id"`
}

// TokenConfig holds the secrets and lifetimes of both token kinds.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string

	// Now overrides the clock used for issuing and validating. Nil means time.Now.
	Now func() time.Time
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("sec: access and refresh secrets are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           now,
	}, nil
}

// RefreshTTL reports the refresh token lifetime. Stores with native expiry use it.
func (service *TokenService) RefreshTTL() time.Duration {
	return service.refreshTTL
}

// IssueAccess signs a short-lived access token carrying the full identity.
func (service *TokenService) IssueAccess(identity Identity) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: service.registered(identity.ID, AudienceAccess, service.accessTTL),
		Identity:         identity,
	}
	return service.sign(claims, service.accessSecret)
}

// IssueRefresh signs a long-lived refresh token carrying only the account id.
func (service *TokenService) IssueRefresh(accountID string) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: service.registered(accountID, AudienceRefresh, service.refreshTTL),
		ID:               accountID,
	}
	return service.sign(claims, service.refreshSecret)
}

// VerifyAccess checks an access token and returns its claims.
func (service *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.verify(tokenString, service.accessSecret, AudienceAccess, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks a refresh token and returns its claims.
func (service *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := service.verify(tokenString, service.refreshSecret, AudienceRefresh, claims); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyToken satisfies the middleware TokenVerifier contract.
func (service *TokenService) VerifyToken(tokenString string) (*AccessClaims, error) {
	return service.VerifyAccess(tokenString)
}

// Verify checks signature and expiry of any token against an explicit secret,
// decoding into claims. Audience is not enforced.
func (service *TokenService) Verify(tokenString string, secret []byte, claims jwt.Claims) error {
	return service.verify(tokenString, secret, "", claims)
}

func (service *TokenService) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	currentTime := service.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    service.issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
	}
}

func (service *TokenService) sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

func (service *TokenService) verify(tokenString string, secret []byte, audience string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	}
	if audience != "" {
		options = append(options, jwt.WithAudience(audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, options...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
