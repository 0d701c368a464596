// Package handler provides HTTP handlers for image uploads.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventcraft_backend/internal/uploads/service"
	"eventcraft_backend/platform/httpkit"
)

// Handler handles HTTP requests for uploads.
type Handler struct {
	svc *service.Service
}

// New creates a new uploads handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// UploadImage accepts a multipart image under the "image" field.
// POST /api/upload/image
func (h *Handler) UploadImage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Image file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Image file is unreadable", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.UploadImage(c.Request.Context(), identity, service.UploadParams{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
