// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		salt   string
	}{
		{"standard", "user-123", "secret-salt"},
		{"uuid-like id", "8f14e45f-ceea-467f-a0e6-1d1b8c6d3e2a", "salt"},
		{"id with dots", "a.b.c", "salt"},
		{"empty salt", "user-456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := IssueToken(tt.userID, tt.salt)
			if token == "" {
				t.Fatal("IssueToken() returned empty string")
			}

			// Should be deterministic
			if token != IssueToken(tt.userID, tt.salt) {
				t.Error("IssueToken() is not deterministic")
			}

			// Should be header-safe
			if strings.ContainsAny(token, "+/= ") {
				t.Errorf("IssueToken() contains non-URL-safe characters: %s", token)
			}

			userID, err := ValidateToken(token, tt.salt)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if userID != tt.userID {
				t.Errorf("ValidateToken() = %q, want %q", userID, tt.userID)
			}
		})
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	salt := "correct-salt"
	good := IssueToken("user-1", salt)
	subject, _, _ := strings.Cut(good, ".")
	forged := IssueToken("user-2", salt)
	_, forgedSig, _ := strings.Cut(forged, ".")

	tests := []struct {
		name  string
		token string
		salt  string
	}{
		{"wrong salt", good, "wrong-salt"},
		{"empty token", "", salt},
		{"no separator", "abcdef", salt},
		{"empty signature", subject + ".", salt},
		{"swapped signature", subject + "." + forgedSig, salt},
		{"bad base64 subject", "!!!." + forgedSig, salt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.salt)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"bearer abc.def", "abc.def", false},
		{"  Bearer   abc.def  ", "abc.def", false},
		{"Basic dXNlcjpwYXNz", "", true},
		{"Bearer ", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if (err != nil) != tt.wantErr {
			t.Errorf("BearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

type fakeBinder struct {
	token string
	sets  int
	clear int
}

func (f *fakeBinder) SetToken(token string) { f.token = token; f.sets++ }
func (f *fakeBinder) ClearToken()           { f.token = ""; f.clear++ }

func TestSession_SignInSignOut(t *testing.T) {
	binder := &fakeBinder{}
	session := NewSession(binder)

	var events []bool
	session.OnChange(func(id Identity, signedIn bool) {
		events = append(events, signedIn)
		if id.UserID != "u1" {
			t.Errorf("listener got user %q, want u1", id.UserID)
		}
	})

	if session.Authenticated() {
		t.Fatal("new session should not be authenticated")
	}

	session.SignIn(Identity{UserID: "u1", Email: "ana@example.com", Token: "tok"})
	if !session.Authenticated() {
		t.Error("expected session to be authenticated after SignIn")
	}
	if binder.token != "tok" {
		t.Errorf("binder token = %q, want tok", binder.token)
	}
	if id, _ := session.Current(); id.Email != "ana@example.com" {
		t.Errorf("Current().Email = %q", id.Email)
	}

	session.SignOut()
	session.SignOut()
	if session.Authenticated() {
		t.Error("expected session to be signed out")
	}
	if binder.token != "" || binder.clear != 1 {
		t.Errorf("binder not cleared exactly once: token=%q clears=%d", binder.token, binder.clear)
	}
	if len(events) != 2 || !events[0] || events[1] {
		t.Errorf("unexpected events %v", events)
	}
}
