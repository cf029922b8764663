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

type AssetHandler struct {
	assetSvc AssetService
}

func NewAssetHandler(assetSvc AssetService) *AssetHandler {
	return &AssetHandler{assetSvc: assetSvc}
}

func (h *AssetHandler) Get(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.ErrorWithCode(c, http.StatusBadRequest, "INVALID_ID", "invalid asset id")
		return
	}

	asset, err := h.assetSvc.Get(c.Request.Context(), assetID)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.OK(c, response.ImageAssetFromEntity(asset))
}

func (h *AssetHandler) List(c *gin.Context) {
	var req request.ListAssetsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.ValidationError(c, err)
		return
	}

	assets, pageInfo, err := h.assetSvc.List(c.Request.Context(), upload.ListInput{
		Kind:       req.Kind,
		EntitySlug: req.EntitySlug,
		Page:       req.Page,
		PerPage:    req.PerPage,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.OK(c, response.AssetsListResponse{
		Assets:     response.ImageAssetsFromEntities(assets),
		Pagination: response.PaginationFromInfo(pageInfo),
	})
}

func (h *AssetHandler) Delete(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.ErrorWithCode(c, http.StatusBadRequest, "INVALID_ID", "invalid asset id")
		return
	}

	if err := h.assetSvc.Delete(c.Request.Context(), assetID); err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.NoContent(c)
}
