package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/pricing"
	"github.com/colexalia/colexalia-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

const maxHistoryMonths = 120

// ProductHandler serves price lookups
type ProductHandler struct {
	pricing     pricing.Client
	affiliateID string
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(client pricing.Client, affiliateID string) *ProductHandler {
	return &ProductHandler{pricing: client, affiliateID: affiliateID}
}

// ProductDetail is a product with its marketplace link
type ProductDetail struct {
	domain.Product
	AffiliateURL string `json:"affiliate_url"`
}

// BatchRequest is the body of POST /products/batch
type BatchRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=50,dive,required"`
}

// Search handles GET /api/v1/products
// @Summary 상품 시세 검색
// @Description Searches products by name. Filters compare platform and genre exactly and price bounds against the loose price.
// @Tags products
// @Produce json
// @Param q query string true "search query"
// @Param platform query string false "platform"
// @Param genre query string false "genre"
// @Param price_min query number false "minimum loose price"
// @Param price_max query number false "maximum loose price"
// @Success 200 {object} common.V2Response{data=[]domain.Product}
// @Failure 400 {object} common.V2Response
// @Failure 502 {object} common.V2Response
// @Router /products [get]
func (h *ProductHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		common.V2ErrorResponse(c, http.StatusBadRequest, "Query parameter q is required", nil)
		return
	}

	filters := domain.SearchFilters{
		Platform: c.Query("platform"),
		Genre:    c.Query("genre"),
	}
	var err error
	if filters.PriceMin, err = ginutil.QueryFloatPtr(c, "price_min"); err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "Invalid price_min", err)
		return
	}
	if filters.PriceMax, err = ginutil.QueryFloatPtr(c, "price_max"); err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "Invalid price_max", err)
		return
	}

	products, err := h.pricing.Search(c.Request.Context(), query, filters)
	if err != nil {
		writeError(c, err)
		return
	}
	simulated := h.pricing.Simulated()
	common.V2SuccessWithMeta(c, products, &common.V2Meta{Total: int64(len(products)), Simulated: &simulated})
}

// GetByID handles GET /api/v1/products/:id
// @Summary 상품 상세 조회
// @Tags products
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} common.V2Response{data=ProductDetail}
// @Failure 404 {object} common.V2Response
// @Failure 502 {object} common.V2Response
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	product, err := h.pricing.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, ProductDetail{
		Product:      *product,
		AffiliateURL: pricing.BuildAffiliateURL(product.Name, product.Platform, h.affiliateID),
	})
}

// GetBatch handles POST /api/v1/products/batch
// @Summary 상품 일괄 조회
// @Description Looks every id up concurrently. One failed lookup fails the whole batch.
// @Tags products
// @Accept json
// @Produce json
// @Param request body BatchRequest true "product ids"
// @Success 200 {object} common.V2Response{data=[]domain.Product}
// @Failure 400 {object} common.V2Response
// @Failure 502 {object} common.V2Response
// @Router /products/batch [post]
func (h *ProductHandler) GetBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	products, err := h.pricing.GetBatch(c.Request.Context(), req.IDs)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2SuccessWithMeta(c, products, &common.V2Meta{Total: int64(len(products))})
}

// GetPriceHistory handles GET /api/v1/products/:id/history
// @Summary 시세 추이 (synthetic)
// @Tags products
// @Produce json
// @Param id path string true "product id"
// @Param months query int false "number of months (1-120)" default(12)
// @Success 200 {object} common.V2Response{data=[]domain.PricePoint}
// @Failure 400 {object} common.V2Response
// @Router /products/{id}/history [get]
func (h *ProductHandler) GetPriceHistory(c *gin.Context) {
	months := pricing.DefaultHistoryMonths
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryMonths {
			common.V2ErrorResponse(c, http.StatusBadRequest, "months must be between 1 and 120", err)
			return
		}
		months = n
	}

	points, err := h.pricing.GetPriceHistory(c.Request.Context(), c.Param("id"), months)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2SuccessWithMeta(c, points, &common.V2Meta{Total: int64(len(points))})
}

// Affiliate handles GET /api/v1/affiliate
// @Summary 마켓플레이스 제휴 링크 생성
// @Tags products
// @Produce json
// @Param name query string true "product name"
// @Param platform query string false "platform"
// @Success 200 {object} common.V2Response
// @Failure 400 {object} common.V2Response
// @Router /affiliate [get]
func (h *ProductHandler) Affiliate(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		common.V2ErrorResponse(c, http.StatusBadRequest, "Query parameter name is required", nil)
		return
	}
	common.V2Success(c, gin.H{
		"url": pricing.BuildAffiliateURL(name, c.Query("platform"), h.affiliateID),
	})
}
