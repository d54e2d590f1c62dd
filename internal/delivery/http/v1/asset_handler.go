package v1

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/logger"
)

// maxWait bounds GET /assets?wait=true so retries cannot hold a request forever.
const maxWait = 30 * time.Second

// UploadLimiter throttles uploads per wallet.
type UploadLimiter interface {
	AllowUpload(ctx context.Context, wallet string) (bool, int, error)
}

type AssetHandler struct {
	assetUC  domain.AssetUsecase
	limiter  UploadLimiter
	maxBytes int64
}

func NewAssetHandler(protected *gin.RouterGroup, session gin.HandlerFunc, assetUC domain.AssetUsecase, limiter UploadLimiter, maxBytes int64) {
	handler := &AssetHandler{assetUC: assetUC, limiter: limiter, maxBytes: maxBytes}

	assets := protected.Group("/assets")
	{
		assets.GET("", handler.Retrieve)
		assets.POST("/refresh", handler.Refresh)
		assets.POST("", session, handler.Upload)
	}
}

// ownerParam defaults to the caller's own address.
func ownerParam(c *gin.Context) string {
	if owner := c.Query("owner"); owner != "" {
		return owner
	}
	return walletAddress(c)
}

// Retrieve godoc
// @Summary      Files shared by an owner
// @Description  Snapshot of the retrieval flow for (caller, owner). With wait=true blocks until the flow leaves loading.
// @Tags         assets
// @Produce      json
// @Param        owner  query     string  false  "Owner address, defaults to the caller"
// @Param        wait   query     bool    false  "Block until ready or error"
// @Success      200    {object}  response.Response{data=domain.RetrievalSnapshot}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /assets [get]
// @Security     BearerAuth
func (h *AssetHandler) Retrieve(c *gin.Context) {
	wait, _ := strconv.ParseBool(c.Query("wait"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), maxWait)
	defer cancel()

	snap, err := h.assetUC.Retrieve(ctx, walletAddress(c), ownerParam(c), wait)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Files retrieved", snap)
}

// Refresh godoc
// @Summary      Reload shared files
// @Description  Restarts the retrieval flow, cancelling any attempt or pending retry
// @Tags         assets
// @Produce      json
// @Param        owner  query     string  false  "Owner address, defaults to the caller"
// @Success      202    {object}  response.Response{data=domain.RetrievalSnapshot}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /assets/refresh [post]
// @Security     BearerAuth
func (h *AssetHandler) Refresh(c *gin.Context) {
	snap, err := h.assetUC.Refresh(c.Request.Context(), walletAddress(c), ownerParam(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusAccepted, "Reloading files", snap)
}

// Upload godoc
// @Summary      Upload a PDF
// @Description  Stores the file on the configured backend, then records its URL on-chain
// @Tags         assets
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "PDF document"
// @Success      201   {object}  response.Response{data=domain.UploadResult}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Failure      502   {object}  response.Response
// @Router       /assets [post]
// @Security     BearerAuth
func (h *AssetHandler) Upload(c *gin.Context) {
	owner := walletAddress(c)

	if h.limiter != nil {
		allowed, retryAfter, err := h.limiter.AllowUpload(c.Request.Context(), owner)
		if err != nil && allowed {
			logger.Log.Debug("upload limiter degraded", "error", err)
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Error(apperror.TooManyRequests("Too many uploads. Please try again later."))
			return
		}
	}

	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("Select a PDF file to upload"))
		return
	}
	if fileHeader.Size > h.maxBytes {
		c.Error(apperror.BadRequest("File is too large"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Could not read the uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		c.Error(apperror.BadRequest("Could not read the uploaded file"))
		return
	}

	res, err := h.assetUC.Upload(c.Request.Context(), owner, fileHeader.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "File uploaded", res)
}
