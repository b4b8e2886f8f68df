package model

// CreateOrganizationRequest is the body of POST /org/create
type CreateOrganizationRequest struct {
	OrganizationName string `json:"organization_name" binding:"required"`
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
}

// UpdateOrganizationRequest is the body of PUT /org/:name
type UpdateOrganizationRequest struct {
	OrganizationName *string `json:"organization_name"`
	AdminEmail       *string `json:"admin_email"`
	AdminPassword    *string `json:"admin_password"`
}

// ToUpdate converts the request into the service level update
func (r *UpdateOrganizationRequest) ToUpdate() OrganizationUpdate {
	return OrganizationUpdate{
		OrganizationName: r.OrganizationName,
		AdminEmail:       r.AdminEmail,
		AdminPassword:    r.AdminPassword,
	}
}

// LoginRequest is the body of POST /admin/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
