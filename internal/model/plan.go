package model

// PlanType is the subscription tier a tenant is provisioned on.
type PlanType string

const (
	PlanFree       PlanType = "Free"
	PlanPro        PlanType = "Pro"
	PlanEnterprise PlanType = "Enterprise"
)

var planMaxUsers = map[PlanType]int{
	PlanFree:       5,
	PlanPro:        50,
	PlanEnterprise: 1000,
}

// MaxUsers returns the user ceiling for the plan. Unknown plans get the Free ceiling.
func (p PlanType) MaxUsers() int {
	if n, ok := planMaxUsers[p]; ok {
		return n
	}
	return planMaxUsers[PlanFree]
}

// Valid reports whether p is one of the known tiers.
func (p PlanType) Valid() bool {
	_, ok := planMaxUsers[p]
	return ok
}
