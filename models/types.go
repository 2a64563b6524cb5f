// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Itinerary status constants
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Wallet transaction kinds
const (
	TxnVoucher = "voucher"
	TxnBooking = "booking"
	TxnRefund  = "refund"
)

// Request types

type SignInRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=80"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=80"`
	HomeCity    *string `json:"home_city,omitempty" validate:"omitempty,max=120"`
	Currency    *string `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
}

type CreateItineraryRequest struct {
	Title         string    `json:"title" validate:"required,max=120"`
	DestinationID string    `json:"destination_id" validate:"required"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Notes         string    `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateItineraryRequest struct {
	Title  *string `json:"title,omitempty" validate:"omitempty,min=1,max=120"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=planned active completed"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type SaveDestinationRequest struct {
	Saved *bool `json:"saved" validate:"required"`
}

type RedeemVoucherRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// Response types

type SignInResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// Domain types

type Destination struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Country     string   `json:"country,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Saved       bool     `json:"saved"`
}

type Itinerary struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DestinationID string    `json:"destination_id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserProfile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	HomeCity    string    `json:"home_city,omitempty"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// Wallet amounts are in minor units (cents) of Currency.
type Wallet struct {
	UserID       string    `json:"user_id"`
	BalanceMinor int64     `json:"balance_minor"`
	Currency     string    `json:"currency"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type WalletTransaction struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	AmountMinor int64     `json:"amount_minor"`
	Reference   string    `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
