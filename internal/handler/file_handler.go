package handler

import (
	"errors"
	"net/http"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// maxUploadBytes bounds multipart uploads.
const maxUploadBytes = 10 << 20

// FileHandler handles object storage HTTP requests.
type FileHandler struct {
	service service.FileService
	logger  zerolog.Logger
}

// NewFileHandler creates a new file handler.
func NewFileHandler(service service.FileService, logger zerolog.Logger) *FileHandler {
	return &FileHandler{
		service: service,
		logger:  logger.With().Str("handler", "file").Logger(),
	}
}

// formFile reads the "file" part of a multipart request. The returned close
// func must be called once the upload has been consumed.
func (h *FileHandler) formFile(w http.ResponseWriter, r *http.Request) (model.Upload, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, model.ErrCodeFileTooLarge, "El archivo es demasiado grande", h.logger)
			return model.Upload{}, nil, false
		}
		writeError(w, http.StatusBadRequest, model.ErrFileRequired.Code, model.ErrFileRequired.Message, h.logger)
		return model.Upload{}, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upload := model.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}
	return upload, func() { _ = file.Close() }, true
}

// UploadProfile handles POST /files/upload-profile requests.
func (h *FileHandler) UploadProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	upload, done, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer done()

	url, err := h.service.UploadProfilePicture(r.Context(), id, upload)
	if err != nil {
		respondError(w, err, "Failed to upload profile picture", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, model.UploadResponse{Message: "Profile picture updated successfully", URL: url})
}

// UploadProduct handles POST /files/upload-product/{productId} requests.
func (h *FileHandler) UploadProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathUUID(w, r, "productId", h.logger)
	if !ok {
		return
	}
	upload, done, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer done()

	url, err := h.service.UploadProductImage(r.Context(), id, productID, upload)
	if err != nil {
		respondError(w, err, "Failed to upload product picture", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, model.UploadResponse{Message: "Product image updated successfully", URL: url})
}

// Delete handles DELETE /files/delete-file requests.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.DeleteFileRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.Delete(r.Context(), id, req.Key); err != nil {
		respondError(w, err, "Failed to delete file", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "File deleted successfully, and references cleaned if existed")
}

// SignedURL handles GET /files/signed-url?key= requests.
func (h *FileHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := caller(w, r, h.logger); !ok {
		return
	}

	url, err := h.service.SignedURL(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		respondError(w, err, "Failed to generate signed URL", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.SignedURLResponse{URL: url})
}
