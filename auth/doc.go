// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides bearer tokens and the client-side identity session.

# Bearer Tokens

Tokens use HMAC-SHA256 over the user ID so they can be verified without a
token table:

	token := auth.IssueToken(userID, salt)
	userID, err := auth.ValidateToken(token, salt)

The format is "<base64url(userID)>.<base64url(mac)>" without padding.
BearerToken extracts the token from an Authorization header value.

# Sessions

Session is the identity provider used by clients. Transports register as
TokenBinders and are bound on sign-in and cleared on sign-out:

	client := apiclient.New(baseURL)
	session := auth.NewSession(client)
	session.SignIn(auth.Identity{UserID: id, Token: token})
	defer session.SignOut()

Session also satisfies syncer.Authenticator, which gates mutations that
require a signed-in user.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
