package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/wallet"
)

type WalletHandler struct {
	session domain.WalletSession
	authUC  domain.AuthUsecase
}

// ConnectResponse is the session state plus the bearer token bound to it.
type ConnectResponse struct {
	Wallet domain.WalletState `json:"wallet"`
	Token  *domain.AuthToken  `json:"token"`
}

func NewWalletHandler(public *gin.RouterGroup, session domain.WalletSession, authUC domain.AuthUsecase) {
	handler := &WalletHandler{session: session, authUC: authUC}

	wallets := public.Group("/wallet")
	{
		wallets.GET("", handler.Get)
		wallets.POST("/connect", handler.Connect)
		wallets.POST("/disconnect", handler.Disconnect)
	}
}

// Get godoc
// @Summary      Wallet session state
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.WalletState}
// @Router       /wallet [get]
func (h *WalletHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, "Wallet state", h.session.Current())
}

// Connect godoc
// @Summary      Connect the wallet
// @Description  Requests account authorization from the wallet provider and returns a session token
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  response.Response{data=ConnectResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /wallet/connect [post]
func (h *WalletHandler) Connect(c *gin.Context) {
	state, err := h.session.Connect(c.Request.Context())
	if err != nil {
		if errors.Is(err, wallet.ErrUserRejected) {
			c.Error(apperror.Forbidden("Connection request was rejected"))
			return
		}
		if errors.Is(err, wallet.ErrNoAccounts) {
			c.Error(apperror.ServiceUnavailable("The wallet has no accounts"))
			return
		}
		c.Error(err)
		return
	}

	token, err := h.authUC.IssueSessionToken(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Wallet connected", ConnectResponse{Wallet: state, Token: token})
}

// Disconnect godoc
// @Summary      Disconnect the wallet
// @Description  Clears the session; retrieval flows of the previous account are cancelled
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.WalletState}
// @Router       /wallet/disconnect [post]
func (h *WalletHandler) Disconnect(c *gin.Context) {
	h.session.Disconnect()
	response.Success(c, http.StatusOK, "Wallet disconnected", h.session.Current())
}
