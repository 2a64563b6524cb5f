// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the
API client, the resource services, and the mock API.

# Request Types

Types serialized as JSON request bodies:

  - SignInRequest: email, display_name
  - UpdateProfileRequest: display_name, home_city, currency (all optional)
  - CreateItineraryRequest: title, destination_id, start_date, end_date, notes
  - UpdateItineraryRequest: title, status, notes (all optional)
  - SaveDestinationRequest: saved
  - RedeemVoucherRequest: code

Request types carry validator tags. Call Validate before sending:

	if err := models.Validate(req); err != nil {
		return err
	}

# Domain Types

  - Destination: browsable destination with the caller's Saved flag
  - Itinerary: a planned trip to one destination
  - UserProfile: the signed-in user
  - Wallet: balance in minor currency units
  - WalletTransaction: wallet ledger line

# Errors

ErrorResponse is the {error, message} envelope returned by the API for
every non-2xx status.

# Constants

Itinerary status values:

	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"

Wallet transaction kinds:

	TxnVoucher = "voucher"
	TxnBooking = "booking"
	TxnRefund  = "refund"
*/
package models
