package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/auth"
	"chamba-onchain-backend/pkg/security"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware accepts session and viewer tokens. A session token is only
// valid while its address is still the connected account of the wallet
// session, so an account switch invalidates it immediately.
func AuthMiddleware(tokens TokenParser, session domain.WalletSession) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenString == authHeader {
			response.Error(c, http.StatusUnauthorized, "Connect your wallet to continue", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrInvalidToken) && strings.Contains(err.Error(), "expired") {
				msg = "Token expired"
			}
			security.DefaultLogger().LogTokenRejected(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), err.Error())
			response.Error(c, http.StatusUnauthorized, msg, nil)
			c.Abort()
			return
		}

		if claims.Kind == domain.TokenKindSession {
			st := session.Current()
			if !st.Connected || !strings.EqualFold(st.Address, claims.Address) {
				security.DefaultLogger().LogTokenRejected(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), "wallet_changed")
				response.Error(c, http.StatusUnauthorized, "The connected wallet changed. Connect again to continue", nil)
				c.Abort()
				return
			}
		}

		c.Set(string(domain.KeyWalletAddress), claims.Address)
		c.Set(string(domain.KeyTokenKind), claims.Kind)
		c.Next()
	}
}

// RequireSession restricts a route to tokens bound to the wallet session,
// the only account able to sign transactions.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(domain.KeyTokenKind)) != domain.TokenKindSession {
			response.Error(c, http.StatusForbidden, "This action requires the connected wallet", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
