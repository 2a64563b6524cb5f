// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/handlers"
	"github.com/danielhkuo/wayfare/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	destinationHandler := handlers.NewDestinationHandler(db, cfg)
	itineraryHandler := handlers.NewItineraryHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, cfg)
	walletHandler := handlers.NewWalletHandler(db, cfg)

	api := cliparse.APIVersionPath
	public := middleware.WithLogging
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(cfg.TokenSalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Session
	mux.HandleFunc("POST "+api+"/auth/signin", public(userHandler.SignIn))
	mux.HandleFunc("GET "+api+"/users/me", private(userHandler.Me))
	mux.HandleFunc("PATCH "+api+"/users/me", private(userHandler.UpdateProfile))

	// Destinations (reads are public, saving requires sign-in)
	mux.HandleFunc("GET "+api+"/destinations", public(destinationHandler.List))
	mux.HandleFunc("GET "+api+"/destinations/{id}", public(destinationHandler.Get))
	mux.HandleFunc("POST "+api+"/destinations/{id}/save", private(destinationHandler.Save))

	// Itineraries
	mux.HandleFunc("GET "+api+"/itineraries", private(itineraryHandler.List))
	mux.HandleFunc("POST "+api+"/itineraries", private(itineraryHandler.Create))
	mux.HandleFunc("GET "+api+"/itineraries/{id}", private(itineraryHandler.Get))
	mux.HandleFunc("PATCH "+api+"/itineraries/{id}", private(itineraryHandler.Update))
	mux.HandleFunc("DELETE "+api+"/itineraries/{id}", private(itineraryHandler.Delete))

	// Wallet
	mux.HandleFunc("GET "+api+"/wallet", private(walletHandler.Get))
	mux.HandleFunc("POST "+api+"/wallet/vouchers", private(walletHandler.RedeemVoucher))
	mux.HandleFunc("GET "+api+"/wallet/transactions", private(walletHandler.Transactions))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wayfare mock API v1"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Route not found")
	})

	return mux
}

// NewHandler wraps the router with CORS, request IDs and tracing, ready to
// serve.
func NewHandler(db *sql.DB, cfg cliparse.Config) http.Handler {
	var h http.Handler = NewRouter(db, cfg)
	h = middleware.WithRequestID(h)
	h = middleware.CORS(h)
	return otelhttp.NewHandler(h, "wayfare-mockapi")
}
