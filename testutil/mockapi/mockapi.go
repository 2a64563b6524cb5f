// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mockapi runs the Wayfare mock API on an httptest server for
// client-side tests.
package mockapi

import (
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/router"
	"github.com/danielhkuo/wayfare/testutil"
)

// Server is a running mock API backed by a seeded in-memory database.
type Server struct {
	*httptest.Server
	DB  *sql.DB
	Cfg cliparse.Config
}

// Start serves the mock API until the test ends.
func Start(t *testing.T) *Server {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	srv := httptest.NewServer(router.NewHandler(db, cfg))
	t.Cleanup(srv.Close)

	return &Server{Server: srv, DB: db, Cfg: cfg}
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + cliparse.APIVersionPath
}
