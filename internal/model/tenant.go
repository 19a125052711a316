package model

// Tenant is a customer account as returned by the tenant API. The console
// never mutates it.
type Tenant struct {
	ID          int64   `json:"id"`
	TenantID    string  `json:"tenantId"`
	Name        string  `json:"name"`
	Description *string `json:"description"` // nullable
	Domain      string  `json:"domain"`
	CreatedAt   string  `json:"createdAt"`
	AdminEmail  *string `json:"adminEmail"` // nullable
	IsActive    bool    `json:"isActive"`
}

// CreateTenantRequest is the body of POST /tenants.
type CreateTenantRequest struct {
	Name        string `json:"name"                  validate:"required,min=4"`
	Description string `json:"description,omitempty"`
}

// CreateAdminUserRequest is the body of POST /tenants/{tenantId}/admin.
type CreateAdminUserRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"required"`
}
