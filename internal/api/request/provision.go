package request

import (
	"strings"

	"github.com/edvin/provisioner/internal/model"
)

type Provision struct {
	OrganizationName string `json:"organization_name" validate:"required,orgname"`
	AdminEmail       string `json:"admin_email" validate:"required,email"`
	AdminPassword    string `json:"admin_password,omitempty" validate:"omitempty,min=8,max=128"`
	AdminFullName    string `json:"admin_full_name,omitempty" validate:"omitempty,max=140"`
	PlanType         string `json:"plan_type,omitempty" validate:"omitempty,oneof=Free Pro Enterprise"`
}

func (p *Provision) Normalize() {
	p.OrganizationName = strings.TrimSpace(p.OrganizationName)
	p.AdminEmail = strings.TrimSpace(p.AdminEmail)
	p.AdminFullName = strings.TrimSpace(p.AdminFullName)
}

// Model converts the request into workflow input, defaulting the plan to Free.
func (p *Provision) Model() model.ProvisionRequest {
	plan := model.PlanType(p.PlanType)
	if plan == "" {
		plan = model.PlanFree
	}
	return model.ProvisionRequest{
		OrganizationName: p.OrganizationName,
		AdminEmail:       p.AdminEmail,
		AdminPassword:    p.AdminPassword,
		AdminFullName:    p.AdminFullName,
		PlanType:         plan,
	}
}

type TenantStatus struct {
	Status string `json:"status" validate:"required,oneof=Active Suspended Cancelled"`
}

type ResetPassword struct {
	AdminEmail string `json:"admin_email" validate:"required,email"`
	Password   string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
}
