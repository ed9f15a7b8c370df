package handler

import (
	"net/http"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/middleware"
	"github.com/colexalia/colexalia-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"

// AuthHandler handles sign-up, sign-in and session endpoints
type AuthHandler struct {
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the refresh cookie HTTPS-only.
func NewAuthHandler(secureCookie bool) *AuthHandler {
	return &AuthHandler{secureCookie: secureCookie}
}

// CredentialsRequest email/password sign-up or login request
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the ID token issued by the OAuth broker
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// RefreshRequest refresh token request. The refresh_token cookie is used when the body is empty.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by every successful sign-in
type AuthResponse struct {
	User         *domain.SessionUser `json:"user"`
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	TokenType    string              `json:"token_type"`
	ExpiresIn    int64               `json:"expires_in"`
}

// SignUp handles POST /api/v1/auth/signup
// @Summary 회원가입
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "email and password"
// @Success 201 {object} common.V2Response{data=AuthResponse}
// @Failure 400 {object} common.V2Response
// @Failure 409 {object} common.V2Response
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ws := middleware.GetWorkspace(c)
	user, err := ws.Holder.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.V2Response{Success: true, Data: h.issue(c, user, ws.Session.Tokens())})
}

// Login handles POST /api/v1/auth/login
// @Summary 로그인
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "email and password"
// @Success 200 {object} common.V2Response{data=AuthResponse}
// @Failure 401 {object} common.V2Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ws := middleware.GetWorkspace(c)
	user, err := ws.Holder.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, h.issue(c, user, ws.Session.Tokens()))
}

// LoginWithGoogle handles POST /api/v1/auth/google
// @Summary Google 로그인
// @Description Signs in with a Google ID token minted by the OAuth broker. Unknown accounts are created; a password account with the same email is linked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "ID token"
// @Success 200 {object} common.V2Response{data=AuthResponse}
// @Failure 401 {object} common.V2Response
// @Router /auth/google [post]
func (h *AuthHandler) LoginWithGoogle(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ws := middleware.GetWorkspace(c)
	user, err := ws.Holder.LogInWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		writeError(c, err)
		return
	}
	common.V2Success(c, h.issue(c, user, ws.Session.Tokens()))
}

// Logout handles POST /api/v1/auth/logout
// @Summary 로그아웃
// @Tags auth
// @Produce json
// @Success 200 {object} common.V2Response
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.GetWorkspace(c).Holder.LogOut(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	h.setRefreshCookie(c, "", -1)
	common.V2Success(c, gin.H{"signed_out": true})
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary 토큰 재발급
// @Description Exchanges a refresh token for a new token pair. The presented refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "refresh token (falls back to the refresh_token cookie)"
// @Success 200 {object} common.V2Response{data=AuthResponse}
// @Failure 401 {object} common.V2Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(refreshCookie)
	}
	if token == "" {
		common.V2ErrorResponse(c, http.StatusBadRequest, "Refresh token is required", nil)
		return
	}

	ws := middleware.GetWorkspace(c)
	pair, err := ws.Session.Refresh(c.Request.Context(), token)
	if err != nil {
		h.setRefreshCookie(c, "", -1)
		writeError(c, err)
		return
	}
	common.V2Success(c, h.issue(c, ws.Session.CurrentUser(), pair))
}

// Session handles GET /api/v1/auth/session
// @Summary 세션 상태 조회
// @Tags auth
// @Produce json
// @Success 200 {object} common.V2Response
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	holder := middleware.GetWorkspace(c).Holder
	user := holder.CurrentUser()
	common.V2Success(c, gin.H{
		"state":     holder.State().String(),
		"signed_in": user != nil,
		"user":      user,
	})
}

func (h *AuthHandler) issue(c *gin.Context, user *domain.SessionUser, pair *jwt.TokenPair) AuthResponse {
	resp := AuthResponse{User: user, TokenType: "Bearer"}
	if pair == nil {
		return resp
	}
	resp.AccessToken = pair.AccessToken
	resp.RefreshToken = pair.RefreshToken
	resp.ExpiresIn = int64(time.Until(pair.AccessExpiresAt).Seconds())
	if pair.RefreshToken != "" {
		h.setRefreshCookie(c, pair.RefreshToken, int(time.Until(pair.RefreshExpiresAt).Seconds()))
	}
	return resp
}

// setRefreshCookie sets the httpOnly refresh cookie; maxAge < 0 clears it
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, token, maxAge, "/api/v1/auth", "", h.secureCookie, true)
}
