package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/robin/questkeeper/internal/api/dto"
	"github.com/robin/questkeeper/internal/api/middleware"
	"github.com/robin/questkeeper/internal/uploads"
)

type UploadHandler struct {
	store *uploads.Store
}

func NewUploadHandler(store *uploads.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadResponse represents a stored file in API responses
type UploadResponse struct {
	Filename string `json:"filename"`
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size"`
}

// Upload handles POST /api/v1/uploads/file
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	// Cap the request body at the file limit plus multipart framing room.
	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxSize()+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "File too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "No file provided"})
		return
	}
	defer file.Close()

	if header.Size > h.store.MaxSize() {
		writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "File too large"})
		return
	}

	info, err := h.store.Save(userID, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrUnsupportedType):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "File type not allowed. Allowed types: pdf, mp3, wav, txt, md"})
		case errors.Is(err, uploads.ErrFileTooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "File too large"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save file"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Filename: header.Filename,
		FileID:   info.FileID,
		FileSize: info.Size,
	})
}

// Download handles GET /api/v1/uploads/file/:fileID
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	fileID := chi.URLParam(r, "fileID")

	f, err := h.store.Open(userID, fileID)
	if err != nil {
		if errors.Is(err, uploads.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "File not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to read file"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileID+`"`)
	if _, err := io.Copy(w, f); err != nil {
		// Response already partially written; nothing left to do but log
		// at the middleware layer.
		return
	}
}

// Delete handles DELETE /api/v1/uploads/file/:fileID
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	fileID := chi.URLParam(r, "fileID")

	if err := h.store.Remove(userID, fileID); err != nil {
		if errors.Is(err, uploads.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "File not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete file"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "File deleted successfully"})
}

// ListFilesResponse wraps the file listing
type ListFilesResponse struct {
	Files []uploads.FileInfo `json:"files"`
}

// List handles GET /api/v1/uploads/files
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	files, err := h.store.List(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list files"})
		return
	}

	writeJSON(w, http.StatusOK, ListFilesResponse{Files: files})
}
