package quota

import "strings"

// Plan limits what an actor may request.
type Plan struct {
	Name              string `json:"name"`
	MaxURLsPerRequest int    `json:"max_urls_per_request"`
	// MaxDomainsPerWeek is the number of distinct domains an actor may scan in
	// one calendar week (Monday to Sunday, UTC). Zero means unlimited.
	MaxDomainsPerWeek int `json:"max_domains_per_week"`
}

const (
	PlanAnonymous = "anonymous"
	PlanFree      = "free"
	PlanLite      = "lite"
	PlanPro       = "pro"
	PlanCorporate = "corporate"
)

var plans = map[string]Plan{
	PlanAnonymous: {Name: PlanAnonymous, MaxURLsPerRequest: 5, MaxDomainsPerWeek: 2},
	PlanFree:      {Name: PlanFree, MaxURLsPerRequest: 20, MaxDomainsPerWeek: 3},
	PlanLite:      {Name: PlanLite, MaxURLsPerRequest: 100, MaxDomainsPerWeek: 15},
	PlanPro:       {Name: PlanPro, MaxURLsPerRequest: 500},
	PlanCorporate: {Name: PlanCorporate, MaxURLsPerRequest: 1000},
}

// PlanFor returns the named plan, falling back to the anonymous plan.
func PlanFor(name string) Plan {
	if p, ok := plans[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return plans[PlanAnonymous]
}

// KnownPlan reports whether name is a defined plan.
func KnownPlan(name string) bool {
	_, ok := plans[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// UnlimitedPlan is used where no quota applies, such as the CLI.
var UnlimitedPlan = Plan{Name: "unlimited"}

// AllowsURLs reports whether a request with n URLs fits the plan.
func (p Plan) AllowsURLs(n int) bool {
	return p.MaxURLsPerRequest <= 0 || n <= p.MaxURLsPerRequest
}
