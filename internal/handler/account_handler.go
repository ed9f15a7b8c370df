package handler

import (
	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves profile changes. None of them reach the identity provider;
// responses carry persisted=false so clients can tell.
type AccountHandler struct{}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// DisplayNameRequest display name change
type DisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=100"`
}

// EmailRequest email change
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordRequest password change
type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// UpdateDisplayName handles PUT /api/v1/account/display-name
// @Summary 닉네임 변경 (세션 한정)
// @Tags account
// @Accept json
// @Produce json
// @Param request body DisplayNameRequest true "new display name"
// @Success 200 {object} common.V2Response
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /account/display-name [put]
func (h *AccountHandler) UpdateDisplayName(c *gin.Context) {
	var req DisplayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	holder := middleware.GetWorkspace(c).Holder
	if err := holder.UpdateDisplayName(req.DisplayName); err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, gin.H{"user": holder.CurrentUser(), "persisted": false})
}

// UpdateEmail handles PUT /api/v1/account/email
// @Summary 이메일 변경 (세션 한정)
// @Tags account
// @Accept json
// @Produce json
// @Param request body EmailRequest true "new email"
// @Success 200 {object} common.V2Response
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /account/email [put]
func (h *AccountHandler) UpdateEmail(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	holder := middleware.GetWorkspace(c).Holder
	if err := holder.UpdateEmail(req.Email); err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, gin.H{"user": holder.CurrentUser(), "persisted": false})
}

// UpdatePassword handles PUT /api/v1/account/password
// @Summary 비밀번호 변경 (미저장)
// @Tags account
// @Accept json
// @Produce json
// @Param request body PasswordRequest true "new password"
// @Success 200 {object} common.V2Response
// @Failure 401 {object} common.V2Response
// @Security BearerAuth
// @Router /account/password [put]
func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := middleware.GetWorkspace(c).Holder.UpdatePassword(req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, gin.H{"persisted": false})
}
