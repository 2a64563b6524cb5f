// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Wayfare mock API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

NewHandler adds request IDs, CORS and OpenTelemetry server spans and is
what the server and integration tests use:

	srv := &http.Server{Handler: router.NewHandler(db, cfg)}

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics

Under /api/v1 (the path clients get from cliparse.ResolveBaseURL):

	POST   /auth/signin             - Sign in, returns bearer token
	GET    /users/me                - Profile (auth)
	PATCH  /users/me                - Update profile (auth)
	GET    /destinations            - List destinations
	GET    /destinations/{id}       - One destination
	POST   /destinations/{id}/save  - Set saved flag (auth)
	GET    /itineraries             - List (auth)
	POST   /itineraries             - Create (auth)
	GET    /itineraries/{id}        - Get (auth)
	PATCH  /itineraries/{id}        - Update (auth)
	DELETE /itineraries/{id}        - Delete, 204 (auth)
	GET    /wallet                  - Balance (auth)
	POST   /wallet/vouchers         - Redeem voucher (auth)
	GET    /wallet/transactions     - Ledger (auth)

Any other path gets a JSON 404.
*/
package router
