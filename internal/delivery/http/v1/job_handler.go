package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
)

type JobHandler struct {
	jobUC domain.JobUsecase
	appUC domain.ApplicationUsecase
}

// JobDetail is a job plus whether the caller already applied.
type JobDetail struct {
	*domain.Job
	HasApplied bool `json:"has_applied"`
}

func NewJobHandler(public *gin.RouterGroup, protected *gin.RouterGroup, jobUC domain.JobUsecase, appUC domain.ApplicationUsecase) {
	handler := &JobHandler{jobUC: jobUC, appUC: appUC}

	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.List)
		publicJobs.GET("/:id", handler.GetDetails)
	}

	protectedJobs := protected.Group("/jobs")
	{
		protectedJobs.GET("/:id/status", handler.ApplicationStatus)
		protectedJobs.POST("/:id/apply", handler.Apply)
	}
}

// List godoc
// @Summary      List jobs
// @Description  Static job catalog filtered by search term and job type
// @Tags         jobs
// @Produce      json
// @Param        q     query     string  false  "Search in title, company, description and requirements"
// @Param        type  query     string  false  "Full-time | Part-time | Contract | Internship | All"
// @Success      200   {object}  response.Response{data=[]domain.Job}
// @Failure      400   {object}  response.Response
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobUC.ListJobs(c.Request.Context(), c.Query("q"), c.Query("type"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}

// GetDetails godoc
// @Summary      Job detail
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetDetails(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}

// ApplicationStatus godoc
// @Summary      Job detail with application flag
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=JobDetail}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id}/status [get]
// @Security     BearerAuth
func (h *JobHandler) ApplicationStatus(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	applied, err := h.appUC.HasApplied(c.Request.Context(), walletAddress(c), job.ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", JobDetail{Job: job, HasApplied: applied})
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Records one application per wallet and job; a repeat fails with 409
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      201  {object}  response.Response{data=domain.JobApplication}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /jobs/{id}/apply [post]
// @Security     BearerAuth
func (h *JobHandler) Apply(c *gin.Context) {
	app, err := h.appUC.ApplyToJob(c.Request.Context(), walletAddress(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted", app)
}
