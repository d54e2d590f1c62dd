package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
)

type AccessHandler struct {
	accessUC domain.AccessUsecase
}

type GrantRequest struct {
	Viewer string `json:"viewer" binding:"required"`
}

// AccessChange is the refreshed grant list after a mutation. Grants is
// null when the reload failed; the transaction was still sent.
type AccessChange struct {
	Grants []domain.AccessGrant `json:"grants"`
	Tx     *domain.TxResult     `json:"tx"`
}

func NewAccessHandler(protected *gin.RouterGroup, session gin.HandlerFunc, accessUC domain.AccessUsecase) {
	handler := &AccessHandler{accessUC: accessUC}

	access := protected.Group("/access")
	access.Use(session)
	{
		access.GET("", handler.List)
		access.POST("", handler.Grant)
		access.DELETE("/:viewer", handler.Revoke)
	}
}

// List godoc
// @Summary      Access list
// @Description  Addresses the connected wallet shared its files with, including revoked ones
// @Tags         access
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.AccessGrant}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /access [get]
// @Security     BearerAuth
func (h *AccessHandler) List(c *gin.Context) {
	grants, err := h.accessUC.Load(c.Request.Context(), walletAddress(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Access list retrieved", grants)
}

// Grant godoc
// @Summary      Grant access
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        body  body      GrantRequest  true  "Viewer address"
// @Success      200   {object}  response.Response{data=AccessChange}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /access [post]
// @Security     BearerAuth
func (h *AccessHandler) Grant(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Viewer address is required"))
		return
	}

	grants, tx, err := h.accessUC.Grant(c.Request.Context(), walletAddress(c), req.Viewer)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, txMessage(tx, "Access granted"), AccessChange{Grants: grants, Tx: tx})
}

// Revoke godoc
// @Summary      Revoke access
// @Tags         access
// @Produce      json
// @Param        viewer  path      string  true  "Viewer address"
// @Success      200     {object}  response.Response{data=AccessChange}
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /access/{viewer} [delete]
// @Security     BearerAuth
func (h *AccessHandler) Revoke(c *gin.Context) {
	grants, tx, err := h.accessUC.Revoke(c.Request.Context(), walletAddress(c), c.Param("viewer"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, txMessage(tx, "Access revoked"), AccessChange{Grants: grants, Tx: tx})
}

func txMessage(tx *domain.TxResult, done string) string {
	if tx != nil && tx.Pending {
		return "Transaction sent, confirmation is still pending"
	}
	return done
}
