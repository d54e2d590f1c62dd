package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

type NonceRequest struct {
	Address string `json:"address" binding:"required,wallet_address"`
}

type VerifyRequest struct {
	Address   string `json:"address" binding:"required,wallet_address"`
	Signature string `json:"signature" binding:"required,hexadecimal"`
}

func NewAuthHandler(public *gin.RouterGroup, authUC domain.AuthUsecase, limit gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC}

	authGroup := public.Group("/auth")
	authGroup.Use(limit)
	{
		authGroup.POST("/nonce", handler.Nonce)
		authGroup.POST("/verify", handler.Verify)
	}
}

// Nonce godoc
// @Summary      Sign-in challenge
// @Description  Returns a message for an external wallet to sign with personal_sign
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      NonceRequest  true  "Wallet address"
// @Success      200   {object}  response.Response{data=domain.SignInChallenge}
// @Failure      400   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /auth/nonce [post]
func (h *AuthHandler) Nonce(c *gin.Context) {
	var req NonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("A valid wallet address is required"))
		return
	}

	challenge, err := h.authUC.Challenge(c.Request.Context(), req.Address)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Sign this message with your wallet", challenge)
}

// Verify godoc
// @Summary      Verify sign-in signature
// @Description  Exchanges a personal_sign signature of the challenge for a read-only viewer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      VerifyRequest  true  "Address and signature"
// @Success      200   {object}  response.Response{data=domain.AuthToken}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Address and signature are required"))
		return
	}

	token, err := h.authUC.Verify(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Signed in", token)
}
