package handler

import (
	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// PremiumHandler serves the premium plan catalog. There is no checkout.
type PremiumHandler struct{}

// NewPremiumHandler creates a new PremiumHandler
func NewPremiumHandler() *PremiumHandler {
	return &PremiumHandler{}
}

// Plans handles GET /api/v1/premium/plans
// @Summary 프리미엄 요금제 목록
// @Tags premium
// @Produce json
// @Success 200 {object} common.V2Response{data=[]domain.Plan}
// @Router /premium/plans [get]
func (h *PremiumHandler) Plans(c *gin.Context) {
	plans := domain.PremiumPlans()
	common.V2SuccessWithMeta(c, plans, &common.V2Meta{Total: int64(len(plans))})
}
