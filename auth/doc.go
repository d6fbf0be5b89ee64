// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation and the admin credential check.

# Record IDs

	id, err := auth.GenerateID() // UUIDv7, sorts in creation order

# Voter Tokens

Voter tokens are random 24-byte (192-bit) secrets issued when a voter code
is verified:

	token, err := auth.GenerateVoterToken()

# Voter Codes and Student IDs

	code, err := auth.GenerateVoterCode()                 // "048213"
	id := auth.NextStudentID("AA", time.Now(), existing)  // "AA-STU-2025-0008"

Student IDs are sequential per year: the highest existing NNNN plus one.

# Admin Authentication

AdminAuthenticator compares the static admin username (case-insensitive) and
a bcrypt password hash, then issues an HS256 bearer token:

	a := auth.NewAdminAuthenticator(user, hash, signingKey)
	token, err := a.Login(username, password)
	claims, err := a.ValidateToken(token)

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256. Stored on ballot records.
*/
package auth
