// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidAdminToken  = errors.New("invalid admin token")
)

// AdminTokenTTL is how long an admin bearer token stays valid
const AdminTokenTTL = 12 * time.Hour

const adminIssuer = "quickly-elect"

// AdminClaims are the claims carried by an admin bearer token
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AdminAuthenticator checks the static admin credential and issues signed
// bearer tokens for the administrative API.
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
	signingKey   []byte
	now          func() time.Time
}

func NewAdminAuthenticator(username, passwordHash, signingKey string) *AdminAuthenticator {
	return &AdminAuthenticator{
		username:     strings.ToLower(strings.TrimSpace(username)),
		passwordHash: []byte(passwordHash),
		signingKey:   []byte(signingKey),
		now:          time.Now,
	}
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the credential and returns a signed admin token.
// The username comparison is case-insensitive.
func (a *AdminAuthenticator) Login(username, password string) (string, error) {
	given := strings.ToLower(strings.TrimSpace(username))
	userOK := subtle.ConstantTimeCompare([]byte(given), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}
	return a.issue(given)
}

func (a *AdminAuthenticator) issue(username string) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AdminTokenTTL)),
		},
	})

	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, issuer, and expiry.
func (a *AdminAuthenticator) ValidateToken(tokenString string) (*AdminClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return a.signingKey, nil
	}, jwt.WithIssuer(adminIssuer), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidAdminToken
	}

	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || claims.Username != a.username {
		return nil, ErrInvalidAdminToken
	}
	return claims, nil
}
