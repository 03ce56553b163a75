package boolq

import "github.com/dreamware/torua/internal/adserr"

// Evaluate performs the bottom-up set algebra over leaf query results that
// the coordinator's planner applies once every leaf keyword has been
// queried and its proof verified. leafResults maps each keyword to its
// current fid list.
//
// AND is intersection; OR is union with left-to-right first-occurrence
// order; NOT is only meaningful as the right-hand operand of an AND, where
// it is evaluated as set difference (Parse already rejects any other use).
func Evaluate(e *Expr, leafResults map[string][]string) ([]string, error) {
	return evaluate(e, leafResults, false)
}

func evaluate(e *Expr, leafResults map[string][]string, negate bool) ([]string, error) {
	if e == nil {
		return nil, adserr.New(adserr.KindInternal, "nil expression node")
	}
	switch e.Kind {
	case NodeKeyword:
		return leafResults[e.Keyword], nil
	case NodeNot:
		if !negate {
			return nil, adserr.New(adserr.KindUnsupportedOperator, "NOT outside of AND context")
		}
		return evaluate(e.Left, leafResults, false)
	case NodeAnd:
		left, err := evaluate(e.Left, leafResults, false)
		if err != nil {
			return nil, err
		}
		if e.Right.Kind == NodeNot {
			excluded, err := evaluate(e.Right, leafResults, true)
			if err != nil {
				return nil, err
			}
			return difference(left, excluded), nil
		}
		right, err := evaluate(e.Right, leafResults, false)
		if err != nil {
			return nil, err
		}
		return intersect(left, right), nil
	case NodeOr:
		left, err := evaluate(e.Left, leafResults, false)
		if err != nil {
			return nil, err
		}
		right, err := evaluate(e.Right, leafResults, false)
		if err != nil {
			return nil, err
		}
		return union(left, right), nil
	default:
		return nil, adserr.New(adserr.KindInternal, "unknown node kind %d", e.Kind)
	}
}

func intersect(left, right []string) []string {
	rightSet := make(map[string]bool, len(right))
	for _, f := range right {
		rightSet[f] = true
	}
	var out []string
	for _, f := range left {
		if rightSet[f] {
			out = append(out, f)
		}
	}
	return out
}

func union(left, right []string) []string {
	seen := make(map[string]bool, len(left)+len(right))
	var out []string
	for _, f := range left {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range right {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func difference(left, exclude []string) []string {
	excludeSet := make(map[string]bool, len(exclude))
	for _, f := range exclude {
		excludeSet[f] = true
	}
	var out []string
	for _, f := range left {
		if !excludeSet[f] {
			out = append(out, f)
		}
	}
	return out
}
