package inverter

import "github.com/decisionml/decisionml/model"

// rawBranch is one piece of the rule before last-wins conversion (section
// 4.3.1 step 1): the main expression paired with the literal "true", then
// each unless clause in source order.
type rawBranch struct {
	condition *model.Expression
	result    *model.Expression
}

func collectRawBranches(rule *model.Rule) []rawBranch {
	branches := make([]rawBranch, 0, len(rule.Unless)+1)
	branches = append(branches, rawBranch{condition: boolExpr(true), result: rule.Main})
	for _, u := range rule.Unless {
		branches = append(branches, rawBranch{condition: u.Condition, result: u.Result})
	}
	return branches
}

// toLastWinsForm builds each branch's effective condition: raw_cond ∧
// ¬(OR of every later branch's raw condition) — branch i wins exactly when
// no later branch matched (section 4.3.1 step 2).
func toLastWinsForm(raw []rawBranch) []rawBranch {
	out := make([]rawBranch, len(raw))
	var suffixOr *model.Expression
	for i := len(raw) - 1; i >= 0; i-- {
		eff := raw[i].condition
		if suffixOr != nil {
			eff = andExpr(cloneExpr(raw[i].condition), notExpr(cloneExpr(suffixOr)))
		}
		out[i] = rawBranch{condition: eff, result: raw[i].result}
		if suffixOr == nil {
			suffixOr = raw[i].condition
		} else {
			suffixOr = orExpr(cloneExpr(raw[i].condition), cloneExpr(suffixOr))
		}
	}
	return out
}
