// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/middleware"
	"github.com/danielhkuo/wayfare/models"
)

// DefaultCurrency is assigned to new users and their wallets.
const DefaultCurrency = "USD"

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// SignIn handles POST /auth/signin
// The mock API trusts the email: unknown addresses get a new account and an
// empty wallet.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.byEmail(email)
	if err == sql.ErrNoRows {
		user, err = h.register(email, req.DisplayName)
	}
	if err != nil {
		slog.Error("failed to sign in", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	slog.Info("user signed in", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SignInResponse{
		Token: auth.IssueToken(user.ID, h.cfg.TokenSalt),
		User:  user,
	})
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.load(w, middleware.UserID(r.Context()))
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, ok := h.load(w, middleware.UserID(r.Context()))
	if !ok {
		return
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.HomeCity != nil {
		user.HomeCity = *req.HomeCity
	}
	if req.Currency != nil {
		user.Currency = *req.Currency
	}

	_, err := h.db.Exec(`
		UPDATE app_user SET display_name = $1, home_city = $2, currency = $3
		WHERE id = $4
	`, user.DisplayName, user.HomeCity, user.Currency, user.ID)
	if err != nil {
		slog.Error("failed to update profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	slog.Info("profile updated", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, user)
}

const userColumns = `SELECT id, email, display_name, home_city, currency, created_at FROM app_user`

func scanUser(row rowScanner) (models.UserProfile, error) {
	var u models.UserProfile
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.HomeCity, &u.Currency, &u.CreatedAt)
	return u, err
}

func (h *UserHandler) byEmail(email string) (models.UserProfile, error) {
	return scanUser(h.db.QueryRow(userColumns+` WHERE email = $1`, email))
}

func (h *UserHandler) register(email, displayName string) (models.UserProfile, error) {
	id, err := auth.GenerateID(12)
	if err != nil {
		return models.UserProfile{}, err
	}
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}
	user := models.UserProfile{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		Currency:    DefaultCurrency,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := h.db.Begin()
	if err != nil {
		return models.UserProfile{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO app_user (id, email, display_name, home_city, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.DisplayName, user.HomeCity, user.Currency, user.CreatedAt)
	if err != nil {
		return models.UserProfile{}, err
	}
	_, err = tx.Exec(`
		INSERT INTO wallet (user_id, balance_minor, currency, updated_at)
		VALUES ($1, 0, $2, $3)
	`, user.ID, user.Currency, user.CreatedAt)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.UserProfile{}, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (h *UserHandler) load(w http.ResponseWriter, userID string) (models.UserProfile, bool) {
	user, err := scanUser(h.db.QueryRow(userColumns+` WHERE id = $1`, userID))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return models.UserProfile{}, false
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.UserProfile{}, false
	}
	return user, true
}
