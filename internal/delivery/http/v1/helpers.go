package v1

import (
	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/domain"
)

// walletAddress is the address proven by the bearer token.
func walletAddress(c *gin.Context) string {
	return c.GetString(string(domain.KeyWalletAddress))
}
