// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions for the
mock travel API.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms).

# Request IDs

WithRequestID echoes the caller's X-Request-ID or generates a UUID, and
stores it in the context for RequestID.

# Authentication

RequireAuth validates "Authorization: Bearer <token>" against the token
salt and exposes the user through UserID:

	mux.HandleFunc("GET /users/me", middleware.RequireAuth(salt, h.Me))

Missing or invalid tokens get 401 with the standard error envelope.

# CORS Middleware

Allows methods GET, POST, PUT, PATCH, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Request-ID.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "Voucher not found")

Errors are written as {"error": "<status text>", "message": "<detail>"}.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
