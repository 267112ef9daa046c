package frappe

import (
	"context"
	"fmt"

	"github.com/edvin/provisioner/internal/model"
)

// tenantDoctype is the directory record keyed by subdomain on the master site.
const tenantDoctype = "SaaS Tenant"

// Directory reads and writes the central tenant directory on the master site.
type Directory struct {
	scripts ScriptRunner
	site    string
}

func NewDirectory(scripts ScriptRunner, masterSite string) *Directory {
	return &Directory{scripts: scripts, site: masterSite}
}

// Preflight is the duplicate check made before any site is created.
type Preflight struct {
	SubdomainExists bool
	// EmailTenants counts directory entries already owned by the admin email.
	EmailTenants int
}

const preflightCode = `exists = frappe.db.exists("SaaS Tenant", {"subdomain": params["subdomain"]})
email_count = frappe.db.count("SaaS Tenant", {"owner_email": params["email"]})
emit({"subdomain_exists": bool(exists), "email_exists": int(email_count)})`

func (d *Directory) Preflight(ctx context.Context, subdomain, email string) (*Preflight, error) {
	out, err := d.scripts.Run(ctx, d.site, preflightCode, map[string]string{
		"subdomain": subdomain,
		"email":     email,
	})
	if err != nil {
		return nil, fmt.Errorf("preflight %s: %w", subdomain, err)
	}
	p := &Preflight{}
	p.SubdomainExists, _ = out.Bool("subdomain_exists")
	p.EmailTenants, _ = out.Int("email_exists")
	return p, nil
}

const subdomainExistsCode = `exists = frappe.db.exists("SaaS Tenant", {"subdomain": params["subdomain"]})
emit({"exists": bool(exists)})`

func (d *Directory) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	out, err := d.scripts.Run(ctx, d.site, subdomainExistsCode, map[string]string{"subdomain": subdomain})
	if err != nil {
		return false, fmt.Errorf("check subdomain %s: %w", subdomain, err)
	}
	exists, _ := out.Bool("exists")
	return exists, nil
}

// Registration is the directory entry written after a site is ready.
type Registration struct {
	Subdomain        string `json:"subdomain"`
	OrganizationName string `json:"organization_name"`
	OwnerEmail       string `json:"owner_email"`
	SiteURL          string `json:"site_url"`
	PlanType         string `json:"plan_type"`
	APIKey           string `json:"api_key"`
	APISecret        string `json:"api_secret"`
}

const registerCode = `p = params
if not frappe.db.exists("SaaS Tenant", p["subdomain"]):
    doc = frappe.new_doc("SaaS Tenant")
    doc.subdomain = p["subdomain"]
    doc.company_name = p["organization_name"]
    doc.owner_email = p["owner_email"]
    doc.organization_name = p["organization_name"]
    doc.site_url = p["site_url"]
    doc.status = "Active"
    doc.plan_type = p["plan_type"]
    doc.admin_user = p["owner_email"]
    doc.api_key = p["api_key"]
    doc.api_secret = p["api_secret"]
    doc.insert(ignore_permissions=True)
    action = "created"
else:
    doc = frappe.get_doc("SaaS Tenant", p["subdomain"])
    doc.status = "Active"
    doc.site_url = p["site_url"]
    doc.api_key = p["api_key"]
    doc.api_secret = p["api_secret"]
    doc.save(ignore_permissions=True)
    action = "updated"
frappe.db.commit()
emit({"registered": True, "action": action})`

// ActionUnknown is reported by Register when the script exited cleanly
// without emitting its result.
const ActionUnknown = "unknown"

// Register creates the directory entry, or reactivates and updates the
// existing one for the same subdomain. It returns "created", "updated" or
// ActionUnknown.
func (d *Directory) Register(ctx context.Context, reg Registration) (string, error) {
	out, err := d.scripts.Run(ctx, d.site, registerCode, reg)
	if err != nil {
		return "", fmt.Errorf("register %s: %w", reg.Subdomain, err)
	}
	// A clean exit means the commit ran; a lost result line only costs the action.
	action, _ := out.String("action")
	if action == "" {
		action = ActionUnknown
	}
	return action, nil
}

const removeCode = `deleted = False
if frappe.db.exists("SaaS Tenant", params["subdomain"]):
    frappe.delete_doc("SaaS Tenant", params["subdomain"], ignore_permissions=True)
    frappe.db.commit()
    deleted = True
emit({"deleted": deleted})`

// Remove deletes the directory entry. A missing entry is not an error.
func (d *Directory) Remove(ctx context.Context, subdomain string) (bool, error) {
	out, err := d.scripts.Run(ctx, d.site, removeCode, map[string]string{"subdomain": subdomain})
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", subdomain, err)
	}
	deleted, _ := out.Bool("deleted")
	return deleted, nil
}

const listCode = `rows = frappe.get_all(
    "SaaS Tenant",
    fields=["subdomain", "organization_name", "owner_email", "site_url", "status", "plan_type"],
    order_by="creation desc",
    limit_page_length=0,
)
emit({"tenants": rows})`

func (d *Directory) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	out, err := d.scripts.Run(ctx, d.site, listCode, nil)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	var decoded struct {
		Tenants []model.Tenant `json:"tenants"`
	}
	if err := out.Into(&decoded); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}
	if decoded.Tenants == nil {
		decoded.Tenants = []model.Tenant{}
	}
	return decoded.Tenants, nil
}

const setStatusCode = `name = frappe.db.get_value("SaaS Tenant", {"subdomain": params["subdomain"]}, "name")
if not name:
    emit({"found": False})
else:
    frappe.db.set_value("SaaS Tenant", name, "status", params["status"])
    frappe.db.commit()
    emit({"found": True})`

// SetStatus changes the directory status of a tenant. It returns ErrNotFound
// when no entry has the subdomain.
func (d *Directory) SetStatus(ctx context.Context, subdomain, status string) error {
	out, err := d.scripts.Run(ctx, d.site, setStatusCode, map[string]string{
		"subdomain": subdomain,
		"status":    status,
	})
	if err != nil {
		return fmt.Errorf("set status of %s: %w", subdomain, err)
	}
	if found, _ := out.Bool("found"); !found {
		return fmt.Errorf("tenant %s: %w", subdomain, ErrNotFound)
	}
	return nil
}
