package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/handler"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/mocks"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/pagination"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/upload"
)

func TestAssetHandler_Get(t *testing.T) {
	t.Run("returns asset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		assetSvc := mocks.NewMockAssetService(ctrl)
		h := handler.NewAssetHandler(assetSvc)

		router := setupRouter()
		router.GET("/assets/:id", h.Get)

		asset := testAsset()
		assetSvc.EXPECT().Get(gomock.Any(), asset.ID).Return(asset, nil)

		req := httptest.NewRequest(http.MethodGet, "/assets/"+asset.ID.String(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, asset.ID.String(), resp["id"])
		assert.Equal(t, float64(900), resp["bytes"])
		assert.Equal(t, "LEHV6nWB2yk8pyo0adR*.7kCMdnj", resp["blurhash"])
	})

	t.Run("returns not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		assetSvc := mocks.NewMockAssetService(ctrl)
		h := handler.NewAssetHandler(assetSvc)

		router := setupRouter()
		router.GET("/assets/:id", h.Get)

		assetSvc.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrAssetNotFound)

		req := httptest.NewRequest(http.MethodGet, "/assets/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "asset not found")
	})
}

func TestAssetHandler_List(t *testing.T) {
	t.Run("lists assets with filters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		assetSvc := mocks.NewMockAssetService(ctrl)
		h := handler.NewAssetHandler(assetSvc)

		router := setupRouter()
		router.GET("/assets", h.List)

		assets := []entity.ImageAsset{*testAsset(), *testAsset()}
		assetSvc.EXPECT().List(gomock.Any(), upload.ListInput{
			Kind:       "category",
			EntitySlug: "sofas",
			Page:       2,
			PerPage:    2,
		}).Return(assets, pagination.NewParams(2, 2).Info(6), nil)

		req := httptest.NewRequest(http.MethodGet, "/assets?kind=category&entity_slug=sofas&page=2&per_page=2", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Len(t, resp["assets"], 2)
		page := resp["pagination"].(map[string]any)
		assert.Equal(t, float64(3), page["total_pages"])
		assert.Equal(t, true, page["has_next"])
	})

	t.Run("rejects oversized page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		assetSvc := mocks.NewMockAssetService(ctrl)
		h := handler.NewAssetHandler(assetSvc)

		router := setupRouter()
		router.GET("/assets", h.List)

		req := httptest.NewRequest(http.MethodGet, "/assets?per_page=1000", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAssetHandler_Delete(t *testing.T) {
	t.Run("deletes asset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		assetSvc := mocks.NewMockAssetService(ctrl)
		h := handler.NewAssetHandler(assetSvc)

		router := setupRouter()
		router.DELETE("/assets/:id", h.Delete)

		id := uuid.New()
		assetSvc.EXPECT().Delete(gomock.Any(), id).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/assets/"+id.String(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("returns not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		assetSvc := mocks.NewMockAssetService(ctrl)
		h := handler.NewAssetHandler(assetSvc)

		router := setupRouter()
		router.DELETE("/assets/:id", h.Delete)

		assetSvc.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(domain.ErrAssetNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/assets/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
