package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskManager/internal/files"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadFiles = 10

type FileHandler struct {
	Storage *files.Storage
}

func NewFileHandler(storage *files.Storage) *FileHandler {
	return &FileHandler{Storage: storage}
}

// Upload stores every part of the multipart "files" field and returns their URLs.
// The first invalid part aborts the request and removes the parts saved before it.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.Storage.MaxSize()*maxUploadFiles + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.Storage.MaxSize()); err != nil {
		logger.Warn("HTTP: bad multipart upload", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		responseWithError(w, http.StatusBadRequest, "no files provided")
		return
	}

	saved := make([]string, 0, len(headers))
	fail := func(code int, err error, op string) {
		h.discard(saved)
		if code != 0 {
			responseWithError(w, code, err.Error())
			return
		}
		handleError(w, r, err, op)
	}

	for _, fh := range headers {
		if fh.Size == 0 {
			continue
		}
		if fh.Size > h.Storage.MaxSize() {
			fail(http.StatusBadRequest, fmt.Errorf("%w: %s", files.ErrTooLarge, fh.Filename), "")
			return
		}

		f, err := fh.Open()
		if err != nil {
			fail(0, err, "upload_file")
			return
		}
		name, err := h.Storage.Save(fh.Filename, fh.Header.Get("Content-Type"), f)
		f.Close()
		if err != nil {
			if errors.Is(err, files.ErrInvalidType) || errors.Is(err, files.ErrTooLarge) {
				fail(http.StatusBadRequest, err, "")
				return
			}
			fail(0, err, "upload_file")
			return
		}
		saved = append(saved, name)
	}

	stored := make([]string, 0, len(saved))
	for _, name := range saved {
		stored = append(stored, files.URLPrefix+name)
	}
	responseWithData(w, http.StatusOK, dto.UploadResponse{Files: stored})
}

func (h *FileHandler) discard(names []string) {
	for _, name := range names {
		if err := h.Storage.Delete(name); err != nil {
			logger.Warn("HTTP: removing partial upload", zap.String("name", name), zap.Error(err))
		}
	}
}

func (h *FileHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, contentType, err := h.Storage.Open(name)
	if err != nil {
		h.fileError(w, r, err, "get_file")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	if _, err := io.Copy(w, f); err != nil {
		logger.Warn("HTTP: streaming file", zap.String("name", name), zap.Error(err))
	}
}

func (h *FileHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Storage.Delete(chi.URLParam(r, "name")); err != nil {
		h.fileError(w, r, err, "delete_file")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("message", "file deleted"))
}

func (h *FileHandler) fileError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, files.ErrNotFound):
		responseWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, files.ErrInvalidName):
		responseWithError(w, http.StatusBadRequest, err.Error())
	default:
		handleError(w, r, err, op)
	}
}
