package handler

import (
	"net/http"

	"orgregistry/internal/model"
	"orgregistry/internal/service"

	"github.com/gin-gonic/gin"
)

// OrgHandler exposes the organization lifecycle
type OrgHandler struct {
	orgs *service.OrgService
}

func NewOrgHandler(orgs *service.OrgService) *OrgHandler {
	return &OrgHandler{orgs: orgs}
}

// Create provisions an organization with its admin and partition
// @Router /org/create [post]
func (h *OrgHandler) Create(c *gin.Context) {
	var req model.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	org, err := h.orgs.Create(c.Request.Context(), req.OrganizationName, req.Email, req.Password)
	if err != nil {
		writeError(c, err,
			statusRule{service.ErrInvalidInput, http.StatusBadRequest},
			statusRule{service.ErrAlreadyExists, http.StatusBadRequest},
		)
		return
	}
	c.JSON(http.StatusOK, org.ToResponse())
}

// Get returns an organization by name
// @Router /org/{name} [get]
func (h *OrgHandler) Get(c *gin.Context) {
	org, err := h.orgs.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err, statusRule{service.ErrNotFound, http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, org.ToResponse())
}

// Update renames an organization and/or changes its admin credentials
// @Router /org/{name} [put]
func (h *OrgHandler) Update(c *gin.Context) {
	var req model.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	org, err := h.orgs.Update(c.Request.Context(), c.Param("name"), req.ToUpdate())
	if err != nil {
		writeError(c, err,
			statusRule{service.ErrInvalidInput, http.StatusBadRequest},
			statusRule{service.ErrNotFound, http.StatusNotFound},
			statusRule{service.ErrNameConflict, http.StatusNotFound},
		)
		return
	}
	c.JSON(http.StatusOK, org.ToResponse())
}

// Delete removes an organization, its admin and its partition
// @Router /org/{name} [delete]
func (h *OrgHandler) Delete(c *gin.Context) {
	if err := h.orgs.Delete(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err, statusRule{service.ErrNotFound, http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Organization deleted successfully", nil))
}
