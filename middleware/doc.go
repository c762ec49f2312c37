// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(handler))

Logs request start (request_id, method, path, client_ip) and completion
(status, duration_ms). The request id is taken from X-Request-ID when the
client sends one and generated otherwise; it is echoed in the response. The
wrapped writer supports hijacking so websocket routes can be logged too.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.WriteError(w, http.StatusConflict, "session_full", "message", models.RetryRefetch)

Parse JSON request bodies (capped at 1 MiB):

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON", models.RetryFixRequest)
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
