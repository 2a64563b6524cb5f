// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package services exposes the travel API resources on top of apiclient and
the syncer cache.

# Wiring

	var session *auth.Session
	client := apiclient.New(baseURL,
		apiclient.OnUnauthorized(func(*apiclient.APIError) { session.SignOut() }),
	)
	session = auth.NewSession(client)
	cache := syncer.NewCache(syncer.WithAuthenticator(session), syncer.WithSink(sink))
	svc := services.New(client, cache, session, logger)

The session binds the bearer token on the client. Signing out, explicitly
or after a 401, drops the user's itineraries, profile and wallet from the
cache.

# Resources

	svc.Destinations.List / Get / ToggleSave
	svc.Itineraries.List / Get / Create / Update / Delete
	svc.Users.SignIn / SignOut / Me / UpdateProfile
	svc.Wallet.Get / RedeemVoucher / Transactions

Reads go through syncer.Query. Writes go through syncer.Mutate: changes
with a known outcome (saved flag, itinerary fields, deletion) are applied
optimistically; the others (new itinerary, voucher) are written once the
server answers. Requests are validated with models.Validate before they are
sent.
*/
package services
