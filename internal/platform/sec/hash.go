// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used for account passwords.
const DefaultHashCost = 10

// BcryptHasher hashes and verifies passwords with a fixed bcrypt cost.
//
// The zero value uses [DefaultHashCost].
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using [DefaultHashCost].
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: DefaultHashCost}
}

// Hash returns a salted bcrypt digest of plainTextPassword.
func (hasher *BcryptHasher) Hash(plainTextPassword string) (string, error) {
	cost := hasher.Cost
	if cost == 0 {
		cost = DefaultHashCost
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify reports whether plainTextPassword matches existingHash.
// A malformed digest yields false, never an error.
func (hasher *BcryptHasher) Verify(plainTextPassword, existingHash string) bool {
	return CheckPasswordHash(plainTextPassword, existingHash)
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
