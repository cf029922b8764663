package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/httputil"
)

// DirectUploadHandler is the PUT target issued by local storage. Other drivers
// hand out URLs that point straight at the object store.
type DirectUploadHandler struct {
	uploader DirectUploader
}

func NewDirectUploadHandler(uploader DirectUploader) *DirectUploadHandler {
	return &DirectUploadHandler{uploader: uploader}
}

func (h *DirectUploadHandler) Put(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	token := c.Query("token")
	if key == "" || token == "" {
		httputil.ErrorWithCode(c, http.StatusBadRequest, "INVALID_TARGET", "key and token are required")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, valueobject.MaxUploadBytes)
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.ErrorWithCode(c, http.StatusRequestEntityTooLarge, "TOO_LARGE", "upload exceeds the size limit")
			return
		}
		httputil.ErrorWithCode(c, http.StatusBadRequest, "INVALID_BODY", "could not read upload body")
		return
	}

	if err := h.uploader.AcceptSignedPut(c.Request.Context(), key, token, c.ContentType(), data); err != nil {
		httputil.HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
