package models

import "fmt"

// Filter is one smart filter row. It holds no state of its own: the rule is
// evaluated on demand against the current applications for FilterCorpID.
type Filter struct {
	ID           int    `db:"id" json:"id"`
	Rule         string `db:"rule" json:"rule"`
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	FilterCorpID int    `db:"filter_corp_id" json:"filter_corp_id"`
}

// filterPhrases completes "Application ... for <corp>" for each rule id.
var filterPhrases = map[string]string{
	"app_accepted":  "accepted",
	"app_rejected":  "rejected",
	"app_in_review": "in review",
	"app_pending":   "pending review",
	"app_exists":    "exists",
}

// String names the filter the way the reporting pages list it. Synced
// filters carry the corporation name as their description.
func (f Filter) String() string {
	phrase, ok := filterPhrases[f.Rule]
	if !ok {
		return fmt.Sprintf("%s: %s", f.Name, f.Description)
	}
	return fmt.Sprintf("Application %s for %s", phrase, f.Description)
}

// AuditResult is what the reporting side shows for one user.
type AuditResult struct {
	Message string `json:"message"`
	Check   bool   `json:"check"`
}
