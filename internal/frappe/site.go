package frappe

import (
	"context"
	"fmt"

	"github.com/edvin/provisioner/internal/model"
)

// TenantSite runs administrative scripts on an individual tenant site.
type TenantSite struct {
	scripts ScriptRunner
}

func NewTenantSite(scripts ScriptRunner) *TenantSite {
	return &TenantSite{scripts: scripts}
}

type AdminUser struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// AdminCredentials are returned by ConfigureAdmin.
type AdminCredentials struct {
	UserCreated bool   `json:"user_created"`
	APIKey      string `json:"api_key"`
	APISecret   string `json:"api_secret"`
}

const configureAdminCode = `import frappe.utils.password

email = params["email"]
created = False
if not frappe.db.exists("User", email):
    user = frappe.new_doc("User")
    user.email = email
    user.first_name = params["full_name"]
    user.enabled = 1
    user.new_password = params["password"]
    user.flags.no_welcome_mail = True
    user.insert(ignore_permissions=True)
    created = True
else:
    user = frappe.get_doc("User", email)

frappe.utils.password.update_password(email, params["password"])

if not frappe.db.exists("Has Role", {"parent": email, "role": "System Manager"}):
    user.add_roles("System Manager")

api_key = frappe.generate_hash(length=15)
api_secret = frappe.generate_hash(length=15)
user.reload()
user.api_key = api_key
user.api_secret = api_secret
user.save(ignore_permissions=True)

frappe.db.commit()
emit({"user_created": created, "api_key": api_key, "api_secret": api_secret})`

// ConfigureAdmin creates the admin user (or reuses an existing one), sets its
// password, grants System Manager and issues a fresh API key pair.
func (s *TenantSite) ConfigureAdmin(ctx context.Context, site string, admin AdminUser) (*AdminCredentials, error) {
	out, err := s.scripts.Run(ctx, site, configureAdminCode, admin)
	if err != nil {
		return nil, fmt.Errorf("configure admin on %s: %w", site, err)
	}
	creds := &AdminCredentials{}
	if err := out.Into(creds); err != nil {
		return nil, fmt.Errorf("decode admin credentials: %w", err)
	}
	return creds, nil
}

const seedSettingsCode = `if not frappe.db.table_exists("SaaS Settings"):
    emit({"seeded": False, "reason": "DocType not found"})
else:
    org = params["organization_name"]
    if frappe.db.exists("SaaS Settings", org):
        doc = frappe.get_doc("SaaS Settings", org)
    else:
        doc = frappe.new_doc("SaaS Settings")
    doc.organization_name = org
    doc.plan_type = params["plan_type"]
    doc.max_users = params["max_users"]
    doc.save(ignore_permissions=True)
    frappe.db.commit()
    emit({"seeded": True})`

// SeedSettings writes the plan limits into the tenant's SaaS Settings. It
// reports false without error when the site has no such doctype.
func (s *TenantSite) SeedSettings(ctx context.Context, site, organization string, plan model.PlanType) (bool, error) {
	out, err := s.scripts.Run(ctx, site, seedSettingsCode, map[string]any{
		"organization_name": organization,
		"plan_type":         string(plan),
		"max_users":         plan.MaxUsers(),
	})
	if err != nil {
		return false, fmt.Errorf("seed settings on %s: %w", site, err)
	}
	seeded, _ := out.Bool("seeded")
	return seeded, nil
}

const resetPasswordCode = `import frappe.utils.password

if not frappe.db.exists("User", params["email"]):
    emit({"found": False})
else:
    frappe.utils.password.update_password(params["email"], params["password"])
    frappe.db.commit()
    emit({"found": True})`

// ResetPassword sets a new password for an existing user. It returns
// ErrNotFound when the user does not exist on site.
func (s *TenantSite) ResetPassword(ctx context.Context, site, email, password string) error {
	out, err := s.scripts.Run(ctx, site, resetPasswordCode, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("reset password on %s: %w", site, err)
	}
	if found, _ := out.Bool("found"); !found {
		return fmt.Errorf("user %s on %s: %w", email, site, ErrNotFound)
	}
	return nil
}
