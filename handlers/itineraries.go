// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/middleware"
	"github.com/danielhkuo/wayfare/models"
)

type ItineraryHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewItineraryHandler(db *sql.DB, cfg cliparse.Config) *ItineraryHandler {
	return &ItineraryHandler{db: db, cfg: cfg}
}

const itineraryColumns = `
	SELECT id, user_id, destination_id, title, status, start_date, end_date, notes, created_at
	FROM itinerary
`

func scanItinerary(row rowScanner) (models.Itinerary, error) {
	var it models.Itinerary
	err := row.Scan(&it.ID, &it.UserID, &it.DestinationID, &it.Title, &it.Status,
		&it.StartDate, &it.EndDate, &it.Notes, &it.CreatedAt)
	return it, err
}

// List handles GET /itineraries
// ?status= filters by status.
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	status := r.URL.Query().Get("status")

	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = h.db.Query(itineraryColumns+` WHERE user_id = $1 AND status = $2 ORDER BY start_date, id`, userID, status)
	} else {
		rows, err = h.db.Query(itineraryColumns+` WHERE user_id = $1 ORDER BY start_date, id`, userID)
	}
	if err != nil {
		slog.Error("failed to query itineraries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	itineraries := []models.Itinerary{}
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			slog.Error("failed to scan itinerary", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		itineraries = append(itineraries, it)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate itineraries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, itineraries)
}

// Create handles POST /itineraries
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req models.CreateItineraryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	var exists int
	err := h.db.QueryRow(`SELECT COUNT(*) FROM destination WHERE id = $1`, req.DestinationID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check destination", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists == 0 {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "Unknown destination")
		return
	}

	id, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate itinerary ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create itinerary")
		return
	}

	it := models.Itinerary{
		ID:            id,
		UserID:        userID,
		DestinationID: req.DestinationID,
		Title:         req.Title,
		Status:        models.StatusPlanned,
		StartDate:     req.StartDate.UTC(),
		EndDate:       req.EndDate.UTC(),
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	_, err = h.db.Exec(`
		INSERT INTO itinerary (id, user_id, destination_id, title, status, start_date, end_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, it.ID, it.UserID, it.DestinationID, it.Title, it.Status, it.StartDate, it.EndDate, it.Notes, it.CreatedAt)
	if err != nil {
		slog.Error("failed to insert itinerary", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create itinerary")
		return
	}

	slog.Info("itinerary created", "itinerary_id", it.ID, "user_id", userID)
	middleware.JSONResponse(w, http.StatusCreated, it)
}

// Get handles GET /itineraries/{id}
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, ok := h.load(w, middleware.UserID(r.Context()), r.PathValue("id"))
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, it)
}

// Update handles PATCH /itineraries/{id}
// Only the fields present in the body change.
func (h *ItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req models.UpdateItineraryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	it, ok := h.load(w, userID, r.PathValue("id"))
	if !ok {
		return
	}
	if req.Title != nil {
		it.Title = *req.Title
	}
	if req.Status != nil {
		it.Status = *req.Status
	}
	if req.Notes != nil {
		it.Notes = *req.Notes
	}

	_, err := h.db.Exec(`
		UPDATE itinerary SET title = $1, status = $2, notes = $3
		WHERE id = $4 AND user_id = $5
	`, it.Title, it.Status, it.Notes, it.ID, userID)
	if err != nil {
		slog.Error("failed to update itinerary", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update itinerary")
		return
	}

	slog.Info("itinerary updated", "itinerary_id", it.ID, "status", it.Status)
	middleware.JSONResponse(w, http.StatusOK, it)
}

// Delete handles DELETE /itineraries/{id}
// Responds 204 with no body.
func (h *ItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := r.PathValue("id")

	res, err := h.db.Exec(`DELETE FROM itinerary WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		slog.Error("failed to delete itinerary", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete itinerary")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Itinerary not found")
		return
	}

	slog.Info("itinerary deleted", "itinerary_id", id, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItineraryHandler) load(w http.ResponseWriter, userID, id string) (models.Itinerary, bool) {
	it, err := scanItinerary(h.db.QueryRow(itineraryColumns+` WHERE id = $1 AND user_id = $2`, id, userID))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Itinerary not found")
		return models.Itinerary{}, false
	}
	if err != nil {
		slog.Error("failed to query itinerary", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Itinerary{}, false
	}
	return it, true
}
