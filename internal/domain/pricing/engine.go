package pricing

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// AppliedRule is one line of the pricing audit trail. The snapshot persists
// the full list so a reviewed fare can be recomputed later against the
// supplier's then-current base fare with exactly the same adjustments.
type AppliedRule struct {
	RuleID      uuid.UUID  `json:"ruleId"`
	Name        string     `json:"name"`
	MarkupType  MarkupType `json:"markupType"`
	MarkupValue float64    `json:"markupValue"`
	PlatformFee float64    `json:"platformFee"`
	Precedence  int        `json:"precedence"`
}

type Result struct {
	FinalFare    int64
	AppliedRules []AppliedRule
}

// Evaluate applies the candidate rules to baseFare in precedence order and
// returns the retail fare plus the audit trail of rules that fired.
//
// Percentage markups are always computed against the original base fare, not
// the running total, so stacked percentage rules never compound. Zero matching
// rules is a valid outcome: the final fare equals the base fare.
func Evaluate(baseFare float64, ctx Context, candidateRules []Rule) Result {
	rules := make([]Rule, len(candidateRules))
	copy(rules, candidateRules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Precedence < rules[j].Precedence
	})

	fare := baseFare
	var applied []AppliedRule

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if !rule.matches(baseFare, ctx) {
			continue
		}

		switch rule.MarkupType {
		case MarkupFlat:
			fare += rule.MarkupValue
		case MarkupPercent:
			fare += baseFare * rule.MarkupValue / 100
		}
		fare += rule.PlatformFee

		applied = append(applied, AppliedRule{
			RuleID:      rule.ID,
			Name:        rule.Name,
			MarkupType:  rule.MarkupType,
			MarkupValue: rule.MarkupValue,
			PlatformFee: rule.PlatformFee,
			Precedence:  rule.Precedence,
		})
	}

	return Result{FinalFare: roundHalfUp(fare), AppliedRules: applied}
}

// Reapply recomputes a retail fare from a snapshot's audit trail. Matching was
// decided at snapshot time; only the base fare may have moved since.
func Reapply(baseFare float64, appliedRules []AppliedRule) int64 {
	rules := make([]AppliedRule, len(appliedRules))
	copy(rules, appliedRules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Precedence < rules[j].Precedence
	})

	fare := baseFare
	for _, rule := range rules {
		switch rule.MarkupType {
		case MarkupFlat:
			fare += rule.MarkupValue
		case MarkupPercent:
			fare += baseFare * rule.MarkupValue / 100
		}
		fare += rule.PlatformFee
	}
	return roundHalfUp(fare)
}

// Fares are settled in whole currency units, rounded half-up.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
