package services

import (
	"fmt"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
)

// Rule is one smart filter variant. All variants share the same shape and
// differ only in the classification they look for.
type Rule struct {
	ID          string
	Label       string // default filter name
	Description string
	Target      models.Classification
}

func (r Rule) String() string {
	return r.ID
}

// check fails for a rule that was never given a target.
func (r Rule) check() error {
	if r.Target != models.Any && !r.Target.Valid() {
		return fault.NewInternalError(fmt.Sprintf("rule %q", r.ID), fault.ErrRuleNotImplemented)
	}
	return nil
}

var (
	RuleAccepted = Rule{
		ID:          "app_accepted",
		Label:       "App Accepted",
		Description: "Smart Filter: Accepted Application for Corp",
		Target:      models.Accepted,
	}
	RuleRejected = Rule{
		ID:          "app_rejected",
		Label:       "App Rejected",
		Description: "Smart Filter: Rejected Application for Corp",
		Target:      models.Rejected,
	}
	RuleInReview = Rule{
		ID:          "app_in_review",
		Label:       "App In Review",
		Description: "Smart Filter: Application for Corp In Review",
		Target:      models.InReview,
	}
	RulePendingReview = Rule{
		ID:          "app_pending",
		Label:       "App Pending",
		Description: "Smart Filter: Application for Corp Pending Review",
		Target:      models.Pending,
	}
	RuleExists = Rule{
		ID:          "app_exists",
		Label:       "App Exists",
		Description: "Smart Filter: Application for Corp Exists",
		Target:      models.Any,
	}
)

var rules = []Rule{RuleRejected, RuleAccepted, RuleInReview, RulePendingReview, RuleExists}

// Rules lists the filter rules the access-control side can offer.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// LookupRule resolves a rule identifier.
func LookupRule(id string) (Rule, error) {
	for _, r := range rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, fault.NewClientError(fmt.Sprintf("unknown filter rule %q", id), fault.ErrNotFound)
}
