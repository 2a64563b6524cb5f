// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/middleware"
	"github.com/danielhkuo/wayfare/models"
)

type DestinationHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewDestinationHandler(db *sql.DB, cfg cliparse.Config) *DestinationHandler {
	return &DestinationHandler{db: db, cfg: cfg}
}

const destinationColumns = `
	SELECT d.id, d.name, d.country, d.description, d.image_url, d.rating, d.tags,
		CASE WHEN s.user_id IS NULL THEN 0 ELSE 1 END
	FROM destination d
	LEFT JOIN saved_destination s ON s.destination_id = d.id AND s.user_id = $1
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDestination(row rowScanner) (models.Destination, error) {
	var (
		d     models.Destination
		tags  string
		saved int
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Country, &d.Description, &d.ImageURL, &d.Rating, &tags, &saved); err != nil {
		return models.Destination{}, err
	}
	if tags != "" {
		d.Tags = strings.Split(tags, ",")
	}
	d.Saved = saved == 1
	return d, nil
}

// List handles GET /destinations
// Anonymous callers see saved=false everywhere. ?tag= filters by tag.
func (h *DestinationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := optionalUserID(r, h.cfg.TokenSalt)
	tag := r.URL.Query().Get("tag")

	rows, err := h.db.Query(destinationColumns+` ORDER BY d.name`, userID)
	if err != nil {
		slog.Error("failed to query destinations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	destinations := []models.Destination{}
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			slog.Error("failed to scan destination", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if tag != "" && !slices.Contains(d.Tags, tag) {
			continue
		}
		destinations = append(destinations, d)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate destinations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, destinations)
}

// Get handles GET /destinations/{id}
func (h *DestinationHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, optionalUserID(r, h.cfg.TokenSalt), r.PathValue("id"))
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, d)
}

// Save handles POST /destinations/{id}/save
// Sets the caller's saved flag to the requested value and returns the
// destination as stored.
func (h *DestinationHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	destinationID := r.PathValue("id")

	var req models.SaveDestinationRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if _, ok := h.load(w, userID, destinationID); !ok {
		return
	}

	var err error
	if *req.Saved {
		_, err = h.db.Exec(`
			INSERT INTO saved_destination (user_id, destination_id, saved_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, destination_id) DO NOTHING
		`, userID, destinationID, time.Now().UTC())
	} else {
		_, err = h.db.Exec(`
			DELETE FROM saved_destination WHERE user_id = $1 AND destination_id = $2
		`, userID, destinationID)
	}
	if err != nil {
		slog.Error("failed to update saved destination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save destination")
		return
	}

	slog.Info("destination saved flag updated", "user_id", userID, "destination_id", destinationID, "saved", *req.Saved)

	d, ok := h.load(w, userID, destinationID)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, d)
}

// load fetches one destination, writing a 404 or 500 on failure.
func (h *DestinationHandler) load(w http.ResponseWriter, userID, id string) (models.Destination, bool) {
	d, err := scanDestination(h.db.QueryRow(destinationColumns+` WHERE d.id = $2`, userID, id))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Destination not found")
		return models.Destination{}, false
	}
	if err != nil {
		slog.Error("failed to query destination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Destination{}, false
	}
	return d, true
}
