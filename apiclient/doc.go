// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is the JSON transport used by every Wayfare service.

# Creating a Client

	client := apiclient.New("https://api.wayfare.travel/api/v1",
		apiclient.WithTimeout(15*time.Second),
		apiclient.WithCredentials(apiclient.CredentialsInclude),
		apiclient.WithMetrics(apiclient.NewMetrics(prometheus.DefaultRegisterer)),
	)

Relative endpoints are joined to the base URL. Absolute http(s) URLs are
used verbatim.

# Calls

Every verb goes through Send, which normalizes the outcome into either a
*Response or an *APIError:

	var dests []models.Destination
	err := client.Get(ctx, "/destinations", &dests)

	wallet, err := apiclient.PostJSON[models.Wallet](ctx, client,
		"/wallet/vouchers", models.RedeemVoucherRequest{Code: "SUMMER"})

A 204 No Content response is never read; its body is {}.

# Errors

APIError.Status is the HTTP status when the server answered and 0 when no
response was received. Timeouts, cancellations, refused connections, and
DNS failures all report Status 0. For error responses the message is the
body's "message" field, then its "error" field, then the status text.

	switch {
	case apiclient.IsNetwork(err):
		// offline
	case apiclient.IsUnauthorized(err):
		// prompt for sign-in
	}

A 401 also triggers the OnUnauthorized hook. The client never retries.

# Authentication

SetToken binds a bearer token for subsequent requests and ClearToken
removes it. Headers are copied when a request is built. Calls already in
flight keep the token they started with. For explicit per-call identity
use WithIdentity on the context:

	ctx = apiclient.WithIdentity(ctx, apiclient.Identity{Token: tok})
*/
package apiclient
