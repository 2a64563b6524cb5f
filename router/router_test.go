// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/wayfare/middleware"
	"github.com/danielhkuo/wayfare/models"
	"github.com/danielhkuo/wayfare/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("Expected 200 OK, got %d %q", w.Code, w.Body.String())
	}
}

func TestRootAndUnknownRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Body.String() != "wayfare mock API v1" {
		t.Errorf("Unexpected root body %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error != "Not Found" {
		t.Errorf("Expected JSON error envelope, got %q (%v)", w.Body.String(), err)
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	// Private routes answer 401 without a token, public ones 200.
	testCases := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/api/v1/destinations", http.StatusOK},
		{"GET", "/api/v1/destinations/d1", http.StatusOK},
		{"POST", "/api/v1/destinations/d1/save", http.StatusUnauthorized},
		{"GET", "/api/v1/itineraries", http.StatusUnauthorized},
		{"POST", "/api/v1/itineraries", http.StatusUnauthorized},
		{"GET", "/api/v1/itineraries/x", http.StatusUnauthorized},
		{"PATCH", "/api/v1/itineraries/x", http.StatusUnauthorized},
		{"DELETE", "/api/v1/itineraries/x", http.StatusUnauthorized},
		{"GET", "/api/v1/users/me", http.StatusUnauthorized},
		{"PATCH", "/api/v1/users/me", http.StatusUnauthorized},
		{"GET", "/api/v1/wallet", http.StatusUnauthorized},
		{"POST", "/api/v1/wallet/vouchers", http.StatusUnauthorized},
		{"GET", "/api/v1/wallet/transactions", http.StatusUnauthorized},
		{"GET", "/metrics", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tc.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestNewHandler_SignedInFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, token := testutil.CreateTestUser(t, db, "ana@example.com")
	h := NewHandler(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/api/v1/wallet/vouchers", models.RedeemVoucherRequest{Code: "WELCOME10"}, testutil.BearerHeader(token))
	req.Header.Set(middleware.RequestIDHeader, "req-7")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get(middleware.RequestIDHeader) != "req-7" {
		t.Error("Expected request ID to be echoed")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers")
	}
	var wallet models.Wallet
	testutil.AssertJSON(t, w, &wallet)
	if wallet.BalanceMinor != 1000 {
		t.Errorf("Expected balance 1000, got %d", wallet.BalanceMinor)
	}
}
