package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
	"github.com/cliniqa/clinicsign-server/internal/service"
)

// SignatureResponse is the wire form of a stored signature.
type SignatureResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	SignatureType string `json:"signatureType"`
	ImageData     string `json:"imageData"`
	UploadedAt    string `json:"uploadedAt"`
}

func toSignatureResponse(s model.Signature) SignatureResponse {
	return SignatureResponse{
		ID:            s.ID.String(),
		UserID:        s.OwnerID.String(),
		SignatureType: string(s.Type),
		ImageData:     s.ImageData,
		UploadedAt:    s.UploadedAt.Format(time.RFC3339Nano),
	}
}

// Signature exposes signature management over HTTP.
type Signature struct {
	service        *service.Signature
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewSignature(service *service.Signature, contextManager model.ContextManager, logger *logger.Logger) *Signature {
	return &Signature{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Upload handles POST /api/signatures. Expects a multipart form with a
// "file" part and a "signature_type" field.
func (h *Signature) Upload(c *gin.Context) {
	ownerID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	data, mimeType, size, err := readUploadedFile(c)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	signature, err := h.service.Upload(c.Request.Context(), model.UploadParams{
		OwnerID:  ownerID,
		Type:     model.SignatureType(c.PostForm("signature_type")),
		MimeType: mimeType,
		Size:     size,
		Data:     data,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toSignatureResponse(signature))
}

// List handles GET /api/signatures.
func (h *Signature) List(c *gin.Context) {
	ownerID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	signatures, err := h.service.List(c.Request.Context(), ownerID)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	out := make([]SignatureResponse, 0, len(signatures))
	for _, s := range signatures {
		out = append(out, toSignatureResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

// GetByType handles GET /api/signatures/types/:type.
func (h *Signature) GetByType(c *gin.Context) {
	ownerID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	signature, err := h.service.GetByType(c.Request.Context(), ownerID, model.SignatureType(c.Param("type")))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toSignatureResponse(signature))
}

// Update handles PUT /api/signatures/:id. The signature type is taken from
// the stored record, never from the request.
func (h *Signature) Update(c *gin.Context) {
	ownerID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature id"})
		return
	}

	data, mimeType, size, err := readUploadedFile(c)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	signature, err := h.service.Update(c.Request.Context(), ownerID, id, data, mimeType, size)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toSignatureResponse(signature))
}

// Delete handles DELETE /api/signatures/:id.
func (h *Signature) Delete(c *gin.Context) {
	ownerID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), ownerID, id); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /api/signatures.
func (h *Signature) Clear(c *gin.Context) {
	ownerID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.service.Clear(c.Request.Context(), ownerID); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func readUploadedFile(c *gin.Context) (data []byte, mimeType string, size int64, err error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", 0, model.ErrReadFailed
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", 0, model.ErrReadFailed
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", 0, model.ErrReadFailed
	}

	return data, fileHeader.Header.Get("Content-Type"), fileHeader.Size, nil
}

func writeServiceError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PNG and JPEG images are accepted"})
	case errors.Is(err, model.ErrInvalidSignatureType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown signature type"})
	case errors.Is(err, model.ErrReadFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
	case errors.Is(err, model.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "signature image exceeds the size limit"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
	default:
		log.Error("signature request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
