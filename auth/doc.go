// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens and ID generation.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

Passwords shorter than 8 characters are rejected with ErrPasswordTooShort.

# Sessions

A login session is an HS256-signed JWT carried in the session cookie:

	token, err := auth.IssueSession(user.ID, user.Username, secret, ttl, now)
	claims, err := auth.ParseSession(token, secret, now)

The subject is the user ID. Every token has a random ID (jti) and an
expiry; tokens that are expired, signed with another algorithm or key, or
lack a subject return ErrInvalidToken. The clock is passed in so handlers
and tests agree on "now".

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Votes record a hashed client IP rather than the address itself:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256. When no dedicated
salt is configured, one is derived from the session secret:

	salt := auth.DeriveKey(sessionSecret, "quickly-polls/vote-ip-hash")
*/
package auth
