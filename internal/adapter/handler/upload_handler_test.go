package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/handler"
	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
	"github.com/marcos-nsantos/asset-pipeline/internal/mocks"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/upload"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testAsset() *entity.ImageAsset {
	base := "assets/category/sofas/abc"
	return entity.NewImageAsset(entity.NewImageAssetParams{
		Bucket:     "assets",
		MimeType:   "image/jpeg",
		Format:     valueobject.CodecWebP,
		BlurHash:   "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		AvgColor:   "#336699",
		Alt:        "sofa",
		Kind:       "category",
		EntitySlug: "sofas",
		Derivatives: []entity.Derivative{
			{Key: base + ".webp", URL: "http://cdn/" + base + ".webp", Width: 4000, Height: 3000, Size: 900, Suffix: "original"},
			{Key: base + "__1920w.webp", URL: "http://cdn/" + base + "__1920w.webp", Width: 1920, Height: 1440, Size: 400, Suffix: "1920w"},
		},
	})
}

func TestUploadHandler_Sign(t *testing.T) {
	t.Run("signs upload successfully", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.POST("/uploads/sign", h.Sign)

		uploadID := uuid.New()
		uploadSvc.EXPECT().Sign(gomock.Any(), upload.SignInput{
			Filename:    "sofa.jpg",
			ContentType: "image/jpeg",
			Size:        3000000,
			Kind:        "category",
			EntitySlug:  "sofas",
		}).Return(&upload.SignResult{
			UploadID: uploadID,
			Target: &storage.UploadTarget{
				URL:       "https://bucket.s3/incoming/x.jpg?X-Amz-Signature=abc",
				Method:    "PUT",
				Headers:   map[string]string{"Content-Type": "image/jpeg"},
				ExpiresAt: time.Now().Add(15 * time.Minute),
			},
			ExpiresAt: time.Now().Add(30 * time.Minute),
		}, nil)

		body := `{"filename":"sofa.jpg","content_type":"image/jpeg","size_bytes":3000000,"kind":"category","entity_slug":"sofas"}`
		req := httptest.NewRequest(http.MethodPost, "/uploads/sign", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, uploadID.String(), resp["upload_id"])
		target := resp["upload_target"].(map[string]any)
		assert.Equal(t, "PUT", target["method"])
		assert.Equal(t, "image/jpeg", target["headers"].(map[string]any)["Content-Type"])
	})

	t.Run("returns validation error for rejected declaration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.POST("/uploads/sign", h.Sign)

		uploadSvc.EXPECT().Sign(gomock.Any(), gomock.Any()).
			Return(nil, domain.NewValidationError("content_type", `content type "image/gif" is not allowed`))

		body := `{"filename":"a.gif","content_type":"image/gif","size_bytes":10,"kind":"category","entity_slug":"sofas"}`
		req := httptest.NewRequest(http.MethodPost, "/uploads/sign", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		assert.Contains(t, w.Body.String(), "content_type")
	})

	t.Run("returns validation error for missing fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.POST("/uploads/sign", h.Sign)

		req := httptest.NewRequest(http.MethodPost, "/uploads/sign", bytes.NewBufferString(`{"filename":"a.jpg"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUploadHandler_Complete(t *testing.T) {
	t.Run("completes upload successfully", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.POST("/uploads/:id/complete", h.Complete)

		uploadID := uuid.New()
		asset := testAsset()
		uploadSvc.EXPECT().Complete(gomock.Any(), upload.CompleteInput{
			UploadID: uploadID,
			Alt:      "sofa",
			Format:   "webp",
		}).Return(&upload.CompleteResult{Asset: asset, Warnings: []string{"skipped sizes 1280w"}}, nil)

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/uploads/%s/complete", uploadID),
			bytes.NewBufferString(`{"alt":"sofa","format":"webp"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		img := resp["image_asset"].(map[string]any)
		assert.Equal(t, asset.ID.String(), img["id"])
		assert.Equal(t, float64(4000), img["width"])
		assert.Equal(t, "webp", img["format"])
		assert.Equal(t, "#336699", img["avg_color"])
		derivatives := img["derivatives"].(map[string]any)
		assert.Equal(t, "assets/category/sofas/abc.webp", derivatives["original"].(map[string]any)["key"])
		sizes := derivatives["sizes"].([]any)
		require.Len(t, sizes, 1)
		assert.Equal(t, "1920w", sizes[0].(map[string]any)["suffix"])
		assert.Len(t, resp["warnings"], 1)
	})

	t.Run("accepts an empty body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.POST("/uploads/:id/complete", h.Complete)

		uploadID := uuid.New()
		uploadSvc.EXPECT().Complete(gomock.Any(), upload.CompleteInput{UploadID: uploadID}).
			Return(&upload.CompleteResult{Asset: testAsset()}, nil)

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/uploads/%s/complete", uploadID), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "warnings")
	})

	t.Run("maps domain errors", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
		}{
			{"session consumed", domain.ErrUploadSessionNotFound, http.StatusNotFound},
			{"bytes missing", domain.ErrUploadNotReceived, http.StatusConflict},
			{"undecodable", fmt.Errorf("processing image: %w", domain.ErrDecode), http.StatusUnprocessableEntity},
			{"storage down", fmt.Errorf("%w: put", domain.ErrStorage), http.StatusBadGateway},
			{"encode failure", fmt.Errorf("processing image: %w", domain.ErrEncode), http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				uploadSvc := mocks.NewMockUploadService(ctrl)
				h := handler.NewUploadHandler(uploadSvc)

				router := setupRouter()
				router.POST("/uploads/:id/complete", h.Complete)

				uploadSvc.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil, tt.err)

				req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/uploads/%s/complete", uuid.New()), nil)
				w := httptest.NewRecorder()

				router.ServeHTTP(w, req)

				assert.Equal(t, tt.status, w.Code)
			})
		}
	})

	t.Run("returns bad request for invalid id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.POST("/uploads/:id/complete", h.Complete)

		req := httptest.NewRequest(http.MethodPost, "/uploads/not-a-uuid/complete", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_ID")
	})
}

func TestUploadHandler_Cancel(t *testing.T) {
	t.Run("cancels upload successfully", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.DELETE("/uploads/:id", h.Cancel)

		uploadID := uuid.New()
		uploadSvc.EXPECT().Cancel(gomock.Any(), uploadID).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/uploads/"+uploadID.String(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("returns not found for unknown upload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uploadSvc := mocks.NewMockUploadService(ctrl)
		h := handler.NewUploadHandler(uploadSvc)

		router := setupRouter()
		router.DELETE("/uploads/:id", h.Cancel)

		uploadSvc.EXPECT().Cancel(gomock.Any(), gomock.Any()).Return(domain.ErrUploadSessionNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/uploads/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
