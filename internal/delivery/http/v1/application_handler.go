package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := protected.Group("/applications")
	{
		applications.GET("", handler.ListMyApplications)
		applications.PATCH("/:id", handler.UpdateApplicationStatus)
	}
}

// ListMyApplications godoc
// @Summary      List my applications
// @Description  Applications of the authenticated wallet joined with job details, newest first
// @Tags         applications
// @Produce      json
// @Param        status  query     string  false  "Applied | In Review | Accepted | Rejected"
// @Success      200     {object}  response.Response{data=[]domain.JobApplication}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	apps, err := h.applicationUC.GetMyApplications(c.Request.Context(), walletAddress(c), c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// UpdateStatusRequest is the request payload for updating application status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,application_status"`
}

// UpdateApplicationStatus godoc
// @Summary      Update application status
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Application ID"
// @Param        body  body      UpdateStatusRequest  true  "Status update"
// @Success      200   {object}  response.Response{data=domain.JobApplication}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/{id} [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Status must be one of Applied, In Review, Accepted, Rejected"))
		return
	}

	app, err := h.applicationUC.UpdateApplicationStatus(c.Request.Context(), walletAddress(c), c.Param("id"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", app)
}
