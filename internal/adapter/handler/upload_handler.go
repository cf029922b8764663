package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/handler/dto/request"
	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/handler/dto/response"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/httputil"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/upload"
)

type UploadHandler struct {
	uploadSvc UploadService
}

func NewUploadHandler(uploadSvc UploadService) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc}
}

func (h *UploadHandler) Sign(c *gin.Context) {
	var req request.SignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.ValidationError(c, err)
		return
	}

	result, err := h.uploadSvc.Sign(c.Request.Context(), upload.SignInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.SizeBytes,
		Kind:        req.Kind,
		EntitySlug:  req.EntitySlug,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.Created(c, response.SignResultToResponse(result))
}

func (h *UploadHandler) Complete(c *gin.Context) {
	uploadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.ErrorWithCode(c, http.StatusBadRequest, "INVALID_ID", "invalid upload id")
		return
	}

	var req request.CompleteUploadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.ValidationError(c, err)
			return
		}
	}

	result, err := h.uploadSvc.Complete(c.Request.Context(), upload.CompleteInput{
		UploadID: uploadID,
		Alt:      req.Alt,
		Format:   req.Format,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.Created(c, response.CompleteResultToResponse(result))
}

func (h *UploadHandler) Cancel(c *gin.Context) {
	uploadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.ErrorWithCode(c, http.StatusBadRequest, "INVALID_ID", "invalid upload id")
		return
	}

	if err := h.uploadSvc.Cancel(c.Request.Context(), uploadID); err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.NoContent(c)
}
