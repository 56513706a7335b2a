package handlers

import (
	"encoding/json"
	"mime"
	"net/http"

	"taskManager/internal/identity"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == target
}

// decodeJSON checks the content type and decodes the body into dst. It writes
// the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: malformed JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: bad task id",
			zap.String("id", chi.URLParam(r, "id")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

// callerFrom returns the authenticated viewer. A userEmail query parameter
// fills in the email when the token carries none.
func callerFrom(w http.ResponseWriter, r *http.Request) (identity.Viewer, bool) {
	v, ok := middleware.ViewerFromContext(r.Context())
	if !ok || v.ID == "" {
		responseWithError(w, http.StatusUnauthorized, "unauthenticated")
		return identity.Viewer{}, false
	}
	if v.Email == "" {
		v.Email = r.URL.Query().Get("userEmail")
	}
	return v, true
}
