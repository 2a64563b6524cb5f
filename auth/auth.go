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
	"strings"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing bearer token")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IssueToken creates a bearer token for a user.
// The token is "<base64url(userID)>.<base64url(HMAC(userID))>", so it can be
// verified without storing it.
func IssueToken(userID, salt string) string {
	subject := base64.RawURLEncoding.EncodeToString([]byte(userID))
	return subject + "." + sign(userID, salt)
}

// ValidateToken checks a bearer token and returns the user ID it was issued for
func ValidateToken(token, salt string) (string, error) {
	subject, sig, ok := strings.Cut(token, ".")
	if !ok || subject == "" || sig == "" {
		return "", ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(subject)
	if err != nil {
		return "", ErrInvalidToken
	}
	userID := string(raw)
	if !hmac.Equal([]byte(sig), []byte(sign(userID, salt))) {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func sign(userID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(userID))
	// URL-safe base64 without padding for header-friendly tokens
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
