package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docchat/docchat/internal/pkg/errcode"
	"github.com/docchat/docchat/internal/pkg/response"
	"github.com/docchat/docchat/internal/service"
)

type UploadHandler struct {
	ingest *service.IngestService
}

func NewUploadHandler(ingest *service.IngestService) *UploadHandler {
	return &UploadHandler{ingest: ingest}
}

// UploadPDF accepts a multipart form with a single "file" field.
func (h *UploadHandler) UploadPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file field is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "cannot read uploaded file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "cannot read uploaded file")
		return
	}

	result, err := h.ingest.IngestPDF(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
