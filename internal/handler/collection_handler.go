package handler

import (
	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/middleware"
	"github.com/colexalia/colexalia-backend/internal/pricing"
	"github.com/colexalia/colexalia-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// CollectionHandler serves the signed-in user's collection
type CollectionHandler struct {
	pricing pricing.Client
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(client pricing.Client) *CollectionHandler {
	return &CollectionHandler{pricing: client}
}

// List handles GET /api/v1/collection
// @Summary 컬렉션 조회
// @Tags collection
// @Produce json
// @Success 200 {object} common.V2Response{data=[]domain.CollectionItem}
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /collection [get]
func (h *CollectionHandler) List(c *gin.Context) {
	collection := middleware.GetWorkspace(c).Collection()
	if err := collection.Err(); err != nil {
		writeError(c, err)
		return
	}
	items := collection.List()
	common.V2SuccessWithMeta(c, items, &common.V2Meta{Total: int64(len(items))})
}

// Add handles POST /api/v1/collection
// @Summary 컬렉션 추가
// @Tags collection
// @Accept json
// @Produce json
// @Param request body domain.CollectionInput true "owned copy"
// @Success 201 {object} common.V2Response{data=domain.CollectionItem}
// @Failure 400 {object} common.V2Response
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /collection [post]
func (h *CollectionHandler) Add(c *gin.Context) {
	var req domain.CollectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := middleware.GetWorkspace(c).Collection().Add(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Created(c, item)
}

// Update handles PATCH /api/v1/collection/:id
// @Summary 컬렉션 항목 수정
// @Tags collection
// @Accept json
// @Produce json
// @Param id path string true "collection item id"
// @Param request body domain.CollectionItemPatch true "fields to change"
// @Success 200 {object} common.V2Response{data=domain.CollectionItem}
// @Failure 400 {object} common.V2Response
// @Failure 404 {object} common.V2Response
// @Security BearerAuth
// @Router /collection/{id} [patch]
func (h *CollectionHandler) Update(c *gin.Context) {
	var req domain.CollectionItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := middleware.GetWorkspace(c).Collection().Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, item)
}

// Remove handles DELETE /api/v1/collection/:id
// @Summary 컬렉션 항목 삭제
// @Tags collection
// @Produce json
// @Param id path string true "collection item id"
// @Success 200 {object} common.V2Response
// @Security BearerAuth
// @Router /collection/{id} [delete]
func (h *CollectionHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	if err := middleware.GetWorkspace(c).Collection().Remove(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, gin.H{"id": id, "removed": true})
}

// UpdatePrices handles PUT /api/v1/collection/:id/prices
// @Summary 현재 시세 스냅샷 수정
// @Tags collection
// @Accept json
// @Produce json
// @Param id path string true "collection item id"
// @Param request body domain.PriceSnapshot true "snapshot fields to set"
// @Success 200 {object} common.V2Response{data=domain.CollectionItem}
// @Failure 404 {object} common.V2Response
// @Security BearerAuth
// @Router /collection/{id}/prices [put]
func (h *CollectionHandler) UpdatePrices(c *gin.Context) {
	var req domain.PriceSnapshot
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := middleware.GetWorkspace(c).Collection().UpdatePriceSnapshot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, item)
}

// RefreshPrices handles POST /api/v1/collection/:id/refresh-prices
// @Summary 현재 시세로 스냅샷 갱신
// @Description Looks the item's product up and stores its three prices as the new snapshot.
// @Tags collection
// @Produce json
// @Param id path string true "collection item id"
// @Success 200 {object} common.V2Response{data=domain.CollectionItem}
// @Failure 404 {object} common.V2Response
// @Failure 502 {object} common.V2Response
// @Security BearerAuth
// @Router /collection/{id}/refresh-prices [post]
func (h *CollectionHandler) RefreshPrices(c *gin.Context) {
	collection := middleware.GetWorkspace(c).Collection()
	id := c.Param("id")
	current, ok := collection.Get(id)
	if !ok {
		writeError(c, common.ErrNotFound)
		return
	}

	product, err := h.pricing.GetByID(c.Request.Context(), current.ProductID)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Str("product_id", current.ProductID).Msg("price refresh lookup failed")
		writeError(c, err)
		return
	}

	item, err := collection.UpdatePriceSnapshot(c.Request.Context(), id, domain.SnapshotFromProduct(*product))
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, item)
}

// Value handles GET /api/v1/collection/value
// @Summary 컬렉션 가치 합계
// @Tags collection
// @Produce json
// @Success 200 {object} common.V2Response{data=domain.CollectionValue}
// @Security BearerAuth
// @Router /collection/value [get]
func (h *CollectionHandler) Value(c *gin.Context) {
	collection := middleware.GetWorkspace(c).Collection()
	if err := collection.Err(); err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, collection.AggregateValue())
}
