package model

// Directory statuses for a tenant record on the master site.
const (
	TenantStatusActive    = "Active"
	TenantStatusSuspended = "Suspended"
	TenantStatusCancelled = "Cancelled"
)

// Tenant is a row of the central tenant directory.
type Tenant struct {
	Subdomain        string `json:"subdomain"`
	OrganizationName string `json:"organization_name"`
	OwnerEmail       string `json:"owner_email"`
	SiteURL          string `json:"site_url"`
	Status           string `json:"status"`
	PlanType         string `json:"plan_type"`
}

// Health is the service + backend reachability report.
type Health struct {
	Status           string `json:"status"`
	ExecMode         string `json:"exec_mode"`
	BackendContainer string `json:"backend_container"`
	MasterSite       string `json:"master_site"`
	Timestamp        string `json:"timestamp"`
}

const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)
