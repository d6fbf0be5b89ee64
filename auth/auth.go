// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrInvalidStudentID = errors.New("invalid student id")
)

// VoterCodeLength is the number of digits in a voter code
const VoterCodeLength = 6

// GenerateID creates a time-ordered UUIDv7 string for database records.
// Sorting IDs ascending gives creation order.
func GenerateID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	return id.String(), nil
}

// GenerateVoterToken creates a random secure token for a verified voter.
// The token scopes ballot calls to one voter until it expires or is revoked.
func GenerateVoterToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate voter token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateVoterCode returns a 6-digit numeric code from a secure random source.
// Leading zeros are kept.
func GenerateVoterCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate voter code: %w", err)
	}
	return fmt.Sprintf("%0*d", VoterCodeLength, n.Int64()), nil
}

// StudentIDPattern returns the LIKE pattern matching every student ID
// issued in year, e.g. "AA-STU-2025-%".
func StudentIDPattern(prefix string, year int) string {
	return fmt.Sprintf("%s-STU-%04d-%%", prefix, year)
}

// FormatStudentID builds PREFIX-STU-YYYY-NNNN.
func FormatStudentID(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-STU-%04d-%04d", prefix, year, seq)
}

// StudentSequence extracts NNNN from a student ID.
func StudentSequence(studentID string) (int, error) {
	i := strings.LastIndex(studentID, "-")
	if i < 0 || i == len(studentID)-1 {
		return 0, ErrInvalidStudentID
	}
	seq, err := strconv.Atoi(studentID[i+1:])
	if err != nil || seq < 0 {
		return 0, ErrInvalidStudentID
	}
	return seq, nil
}

// NextStudentID returns the ID following the highest existing sequence for
// the year of now. existing may contain IDs from any year or prefix; only
// matching ones count.
func NextStudentID(prefix string, now time.Time, existing []string) string {
	year := now.Year()
	stem := strings.TrimSuffix(StudentIDPattern(prefix, year), "%")

	maxSeq := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, stem) {
			continue
		}
		seq, err := StudentSequence(id)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return FormatStudentID(prefix, year, maxSeq+1)
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
