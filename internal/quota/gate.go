// Package quota decides whether an actor may scan. The scan engine consults
// the submission gate once per request and the domain gate before every URL,
// crawl-discovered ones included.
package quota

import "context"

// Decision is the answer of a Gate.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

// Gate is consulted before a domain is fetched. Check may record usage; a
// domain that was allowed once in a period keeps being allowed.
type Gate interface {
	Check(ctx context.Context, actor, domain string) Decision
}

// PlanSource resolves the plan of an actor.
type PlanSource interface {
	PlanOf(ctx context.Context, actor string) Plan
}

// AllowAll never denies.
type AllowAll struct{}

func (AllowAll) Check(context.Context, string, string) Decision { return Allow() }

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context, actor, domain string) Decision

func (f GateFunc) Check(ctx context.Context, actor, domain string) Decision {
	return f(ctx, actor, domain)
}
