// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil holds shared helpers for handler and integration tests.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/db"
)

// TestTokenSalt signs bearer tokens in tests.
const TestTokenSalt = "test-token-salt"

// SetupTestDB creates a fresh in-memory database with the full schema and
// the demo destinations and vouchers.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.SeedDemo(conn); err != nil {
		t.Fatalf("Failed to seed database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3319,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		TokenSalt:    TestTokenSalt,
	}
}

// CreateTestUser inserts a user with an empty wallet and returns the user
// ID and a bearer token for it.
func CreateTestUser(t *testing.T, conn *sql.DB, email string) (userID, token string) {
	t.Helper()

	userID, _ = auth.GenerateID(12)
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO app_user (id, email, display_name, currency, created_at)
		VALUES ($1, $2, 'Test User', 'USD', $3)
	`, userID, email, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO wallet (user_id, balance_minor, currency, updated_at)
		VALUES ($1, 0, 'USD', $2)
	`, userID, now)
	if err != nil {
		t.Fatalf("Failed to create test wallet: %v", err)
	}

	return userID, auth.IssueToken(userID, TestTokenSalt)
}

// CreateTestItinerary inserts an itinerary for userID and returns its ID.
func CreateTestItinerary(t *testing.T, conn *sql.DB, userID, destinationID, title string) string {
	t.Helper()

	id, _ := auth.GenerateID(12)
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := conn.Exec(`
		INSERT INTO itinerary (id, user_id, destination_id, title, status, start_date, end_date, notes, created_at)
		VALUES ($1, $2, $3, $4, 'planned', $5, $6, '', $7)
	`, id, userID, destinationID, title, start, start.AddDate(0, 0, 7), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test itinerary: %v", err)
	}

	return id
}

// BearerHeader returns request headers carrying token.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
