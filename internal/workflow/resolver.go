package workflow

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// ResolveChain returns the approval steps that apply to the given process
// type and amount, ordered by step. A rule matches when its band contains
// the amount; a nil MaxAmount is unbounded above. An empty result means the
// document needs no designated approver.
func ResolveChain(processType enums.ProcessType, amount decimal.Decimal, rules []models.WorkflowRule) []models.WorkflowRule {
	var matched []models.WorkflowRule
	for _, rule := range rules {
		if rule.ProcessType != processType {
			continue
		}
		if amount.LessThan(rule.MinAmount) {
			continue
		}
		if rule.MaxAmount != nil && amount.GreaterThan(*rule.MaxAmount) {
			continue
		}
		matched = append(matched, rule)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StepOrder < matched[j].StepOrder
	})
	return matched
}

// ResolveApprover returns the role that must act first on the document, or
// nil when no rule matches.
func ResolveApprover(processType enums.ProcessType, amount decimal.Decimal, rules []models.WorkflowRule) *enums.UserRole {
	chain := ResolveChain(processType, amount, rules)
	if len(chain) == 0 {
		return nil
	}
	role := chain[0].ApproverRole
	return &role
}

// CanApprove reports whether the acting role is the immediate approver for
// the document. Admins approve anything that has a designated approver.
func CanApprove(actor enums.UserRole, processType enums.ProcessType, amount decimal.Decimal, rules []models.WorkflowRule) bool {
	required := ResolveApprover(processType, amount, rules)
	if required == nil {
		return false
	}
	if actor == enums.UserRoleAdmin {
		return true
	}
	return actor == *required
}
