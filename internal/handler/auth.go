package handler

import (
	"net/http"

	"orgregistry/internal/middleware"
	"orgregistry/internal/model"
	"orgregistry/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles admin login
type AuthHandler struct {
	auth *service.AuthService
	orgs *service.OrgService
}

func NewAuthHandler(auth *service.AuthService, orgs *service.OrgService) *AuthHandler {
	return &AuthHandler{auth: auth, orgs: orgs}
}

// Login exchanges admin credentials for a bearer token
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tok, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err,
			statusRule{service.ErrInvalidCredentials, http.StatusUnauthorized},
			statusRule{service.ErrOrgNotFound, http.StatusUnauthorized},
		)
		return
	}
	c.JSON(http.StatusOK, tok)
}

// Me returns the claims of the presented token and the organization they
// name. A token outliving its organization gets 401.
// @Router /admin/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.NewErrorResponse("Missing bearer token", ""))
		return
	}

	org, err := h.orgs.GetByID(c.Request.Context(), claims.OrgID)
	if err != nil {
		writeError(c, err,
			statusRule{service.ErrNotFound, http.StatusUnauthorized},
			statusRule{service.ErrInvalidInput, http.StatusUnauthorized},
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin_id":     claims.AdminID,
		"org_id":       claims.OrgID,
		"org_name":     claims.OrgName,
		"expires_at":   claims.ExpiresAt.Time,
		"organization": org.ToResponse(),
	})
}
