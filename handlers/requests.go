// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/middleware"
	"github.com/danielhkuo/wayfare/models"
)

// decodeRequest parses and validates a JSON body. On failure it writes a
// 400 response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := middleware.ParseJSONBody(r, v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	if err := models.Validate(v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// optionalUserID returns the caller's user ID when a valid bearer token is
// present, and "" for anonymous callers.
func optionalUserID(r *http.Request, salt string) string {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return ""
	}
	userID, err := auth.ValidateToken(token, salt)
	if err != nil {
		return ""
	}
	return userID
}
