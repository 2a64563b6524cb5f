// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Wayfare mock API,
a database-backed stand-in for the travel backend used in development and
tests.

# Handler Types

Each handler is a struct with database and config dependencies:

  - DestinationHandler: Browsing and saving destinations
  - ItineraryHandler: Trip planning (CRUD)
  - UserHandler: Sign-in and profile
  - WalletHandler: Balance, vouchers and the transaction ledger

Handlers are created via constructor functions that accept *sql.DB and Config:

	walletHandler := handlers.NewWalletHandler(db, cfg)

# Authentication

Signed-in routes are wrapped with middleware.RequireAuth and read the user
through middleware.UserID. Destination reads accept an optional token so
that signed-in callers see their saved flags.

	POST /auth/signin → SignIn (returns token and user)

Sign-in creates the account and an empty wallet on first use.

# Destinations

	GET  /destinations            → List (?tag= filter)
	GET  /destinations/{id}       → Get
	POST /destinations/{id}/save  → Save ({"saved": bool})

# Itineraries

	GET    /itineraries       → List (?status= filter)
	POST   /itineraries       → Create
	GET    /itineraries/{id}  → Get
	PATCH  /itineraries/{id}  → Update
	DELETE /itineraries/{id}  → Delete (204, empty body)

# Wallet

	GET  /wallet               → Get
	POST /wallet/vouchers      → RedeemVoucher
	GET  /wallet/transactions  → Transactions

Vouchers are single use. Redemption runs in one transaction, so concurrent
attempts on the same code credit exactly one wallet; the rest get 409.
Unknown codes get 404 "Voucher not found".

# Errors

All errors use the middleware error envelope:

	{"error": "Not Found", "message": "Voucher not found"}

Request bodies are validated with models.Validate; failures are 400 with
the validation message.
*/
package handlers
