package handler

import (
	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const dashboardRecentItems = 3

// DashboardHandler 대시보드 요약
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// DashboardResponse summarizes both lists of the signed-in user
type DashboardResponse struct {
	User       *domain.SessionUser `json:"user"`
	Wishlist   WishlistSummary     `json:"wishlist"`
	Collection CollectionSummary   `json:"collection"`
}

// WishlistSummary wishlist count and the first items
type WishlistSummary struct {
	Count  int                   `json:"count"`
	Recent []domain.WishlistItem `json:"recent"`
}

// CollectionSummary collection count and value
type CollectionSummary struct {
	Count int                    `json:"count"`
	Value domain.CollectionValue `json:"value"`
}

// Get handles GET /api/v1/dashboard
// @Summary 대시보드
// @Tags dashboard
// @Produce json
// @Success 200 {object} common.V2Response{data=DashboardResponse}
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	wishlist, collection := ws.Wishlist(), ws.Collection()
	for _, err := range []error{wishlist.Err(), collection.Err()} {
		if err != nil {
			writeError(c, err)
			return
		}
	}

	wished := wishlist.List()
	recent := wished
	if len(recent) > dashboardRecentItems {
		recent = recent[:dashboardRecentItems]
	}

	common.V2Success(c, DashboardResponse{
		User: ws.Holder.CurrentUser(),
		Wishlist: WishlistSummary{
			Count:  len(wished),
			Recent: recent,
		},
		Collection: CollectionSummary{
			Count: len(collection.List()),
			Value: collection.AggregateValue(),
		},
	})
}
