package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/apperror"
	"chamba-onchain-backend/pkg/validation"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

// ProfileRequest carries the editable profile fields.
type ProfileRequest struct {
	Description string `json:"description"`
	Github      string `json:"github"`
	Linkedin    string `json:"linkedin"`
	Portfolio   string `json:"portfolio"`
	Website     string `json:"website"`
	Email       string `json:"email"`
}

func (r ProfileRequest) toDomain(address string) *domain.StudentProfile {
	return &domain.StudentProfile{
		Address:     address,
		Description: r.Description,
		Github:      r.Github,
		Linkedin:    r.Linkedin,
		Portfolio:   r.Portfolio,
		Website:     r.Website,
		Email:       r.Email,
	}
}

func NewProfileHandler(public *gin.RouterGroup, protected *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	public.GET("/profiles/:address", handler.GetPublic)

	profile := protected.Group("/profile")
	{
		profile.GET("", handler.GetMine)
		profile.PUT("", handler.Save)
		profile.PATCH("", handler.Update)
	}
}

// GetPublic godoc
// @Summary      Read a student profile
// @Tags         profile
// @Produce      json
// @Param        address  path      string  true  "Wallet address"
// @Success      200      {object}  response.Response{data=domain.StudentProfile}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /profiles/{address} [get]
func (h *ProfileHandler) GetPublic(c *gin.Context) {
	address, err := validation.NormalizeAddress(c.Param("address"))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid wallet address"))
		return
	}
	profile, err := h.profileUC.GetProfile(c.Request.Context(), address)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// GetMine godoc
// @Summary      Read my profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.StudentProfile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetMine(c *gin.Context) {
	profile, err := h.profileUC.GetProfile(c.Request.Context(), walletAddress(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// Save godoc
// @Summary      Save my profile
// @Description  Overwrites the whole profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      ProfileRequest  true  "Profile"
// @Success      200   {object}  response.Response{data=domain.StudentProfile}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /profile [put]
// @Security     BearerAuth
func (h *ProfileHandler) Save(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile := req.toDomain(walletAddress(c))
	if err := h.profileUC.SaveProfile(c.Request.Context(), profile); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile saved", profile)
}

// Update godoc
// @Summary      Update my profile
// @Description  Merges the non-empty fields into the stored profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      ProfileRequest  true  "Partial profile"
// @Success      200   {object}  response.Response{data=domain.StudentProfile}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /profile [patch]
// @Security     BearerAuth
func (h *ProfileHandler) Update(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	address := walletAddress(c)
	profile, err := h.profileUC.UpdateProfile(c.Request.Context(), address, req.toDomain(address))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}
