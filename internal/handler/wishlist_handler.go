package handler

import (
	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/middleware"
	"github.com/colexalia/colexalia-backend/internal/pricing"
	"github.com/gin-gonic/gin"
)

// WishlistHandler serves the signed-in user's wishlist
type WishlistHandler struct {
	pricing pricing.Client
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(client pricing.Client) *WishlistHandler {
	return &WishlistHandler{pricing: client}
}

// AlertRequest sets a price-drop alert threshold
type AlertRequest struct {
	Percentage float64 `json:"percentage" binding:"required,gt=0,lte=100"`
}

// List handles GET /api/v1/wishlist
// @Summary 위시리스트 조회
// @Tags wishlist
// @Produce json
// @Success 200 {object} common.V2Response{data=[]domain.WishlistItem}
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	wishlist := middleware.GetWorkspace(c).Wishlist()
	if err := wishlist.Err(); err != nil {
		writeError(c, err)
		return
	}
	items := wishlist.List()
	common.V2SuccessWithMeta(c, items, &common.V2Meta{Total: int64(len(items))})
}

// Add handles POST /api/v1/wishlist
// @Summary 위시리스트 추가
// @Tags wishlist
// @Accept json
// @Produce json
// @Param request body domain.WishlistInput true "product snapshot"
// @Success 201 {object} common.V2Response{data=domain.WishlistItem}
// @Failure 400 {object} common.V2Response
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /wishlist [post]
func (h *WishlistHandler) Add(c *gin.Context) {
	var req domain.WishlistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := middleware.GetWorkspace(c).Wishlist().Add(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Created(c, item)
}

// Remove handles DELETE /api/v1/wishlist/:id
// @Summary 위시리스트 삭제
// @Tags wishlist
// @Produce json
// @Param id path string true "wishlist item id"
// @Success 200 {object} common.V2Response
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /wishlist/{id} [delete]
func (h *WishlistHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	if err := middleware.GetWorkspace(c).Wishlist().Remove(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, gin.H{"id": id, "removed": true})
}

// Contains handles GET /api/v1/wishlist/contains/:productId
// @Summary 위시리스트 포함 여부
// @Tags wishlist
// @Produce json
// @Param productId path string true "product id"
// @Success 200 {object} common.V2Response
// @Security BearerAuth
// @Router /wishlist/contains/{productId} [get]
func (h *WishlistHandler) Contains(c *gin.Context) {
	productID := c.Param("productId")
	common.V2Success(c, gin.H{
		"product_id": productID,
		"contains":   middleware.GetWorkspace(c).Wishlist().Contains(productID),
	})
}

// SetAlert handles PUT /api/v1/wishlist/:id/alert
// @Summary 가격 하락 알림 기준 설정
// @Tags wishlist
// @Accept json
// @Produce json
// @Param id path string true "wishlist item id"
// @Param request body AlertRequest true "threshold percentage"
// @Success 200 {object} common.V2Response{data=domain.WishlistItem}
// @Failure 400 {object} common.V2Response
// @Failure 404 {object} common.V2Response
// @Security BearerAuth
// @Router /wishlist/{id}/alert [put]
func (h *WishlistHandler) SetAlert(c *gin.Context) {
	var req AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := middleware.GetWorkspace(c).Wishlist().SetAlertThreshold(c.Request.Context(), c.Param("id"), req.Percentage)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, item)
}

// Alerts handles GET /api/v1/wishlist/alerts
// @Summary 가격 하락 알림 조회
// @Description Looks up current prices of every item that has a threshold and reports the ones that dropped past it.
// @Tags wishlist
// @Produce json
// @Success 200 {object} common.V2Response{data=[]domain.PriceDropAlert}
// @Failure 502 {object} common.V2Response
// @Security BearerAuth
// @Router /wishlist/alerts [get]
func (h *WishlistHandler) Alerts(c *gin.Context) {
	wishlist := middleware.GetWorkspace(c).Wishlist()
	if err := wishlist.Err(); err != nil {
		writeError(c, err)
		return
	}

	seen := map[string]bool{}
	var ids []string
	for _, item := range wishlist.List() {
		if item.AlertPercentage != nil && !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	if len(ids) == 0 {
		common.V2SuccessWithMeta(c, []domain.PriceDropAlert{}, &common.V2Meta{Total: 0})
		return
	}

	products, err := h.pricing.GetBatch(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	current := make(map[string]domain.Product, len(products))
	for i, p := range products {
		current[ids[i]] = p
	}

	alerts := wishlist.PriceDrops(current)
	common.V2SuccessWithMeta(c, alerts, &common.V2Meta{Total: int64(len(alerts))})
}
