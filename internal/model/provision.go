package model

// Step labels recorded in ProvisionResult.StepsCompleted, in workflow order.
const (
	StepPreflightDuplicate  = "preflight_duplicate"
	StepPreflightCheck      = "preflight_check"
	StepSiteCreated         = "site_created"
	StepSiteExists          = "site_exists"
	StepAppInstalledPrefix  = "app_installed:"
	StepAdminUserConfigured = "admin_user_configured"
	StepSaaSSettingsSeeded  = "saas_settings_seeded"
	StepMasterDBRegistered  = "master_db_registered"
	StepNginxConfigured     = "nginx_configured"
)

// Error codes carried by a failed ProvisionResult.
const (
	ErrorCodeConflict     = "conflict"
	ErrorCodeInconsistent = "inconsistent"
	ErrorCodeTimeout      = "timeout"
	ErrorCodeExecution    = "execution_error"
)

// AppInstalledStep is the step label for a successfully installed app.
func AppInstalledStep(app string) string {
	return StepAppInstalledPrefix + app
}

// ProvisionRequest is the validated input of one provisioning run.
type ProvisionRequest struct {
	OrganizationName string
	AdminEmail       string
	AdminPassword    string
	AdminFullName    string
	PlanType         PlanType
}

// ProvisionResult is returned to the caller on every outcome, including failures.
type ProvisionResult struct {
	Success       bool   `json:"success"`
	SiteName      string `json:"site_name,omitempty"`
	Subdomain     string `json:"subdomain,omitempty"`
	AdminPassword string `json:"admin_password,omitempty"`
	APIKey        string `json:"api_key,omitempty"`
	APISecret     string `json:"api_secret,omitempty"`
	Error         string `json:"error,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`
	// ManualRemediation is set when the site and admin user exist but the
	// directory entry does not.
	ManualRemediation bool     `json:"manual_remediation_required,omitempty"`
	StepsCompleted    []string `json:"steps_completed"`
}

func NewProvisionResult() *ProvisionResult {
	return &ProvisionResult{StepsCompleted: []string{}}
}

func (r *ProvisionResult) AddStep(step string) {
	r.StepsCompleted = append(r.StepsCompleted, step)
}

func (r *ProvisionResult) HasStep(step string) bool {
	for _, s := range r.StepsCompleted {
		if s == step {
			return true
		}
	}
	return false
}

// SubdomainCheck is the answer to an availability query.
type SubdomainCheck struct {
	Available bool   `json:"available"`
	Subdomain string `json:"subdomain"`
	Reason    string `json:"reason,omitempty"`
}

// DeprovisionResult reports a removed tenant site.
type DeprovisionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PasswordReset reports a reset admin credential.
type PasswordReset struct {
	Success       bool   `json:"success"`
	SiteName      string `json:"site_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}
