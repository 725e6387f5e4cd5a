package validation

import (
	"fmt"

	"github.com/goliatone/go-coursepack/content"
)

var tierRank = map[content.Tier]int{
	content.TierProduction: 0,
	content.TierPreview:    1,
	content.TierIgnored:    2,
}

// TierDecision is the outcome of checking one traversed reference.
type TierDecision struct {
	// Skip is set for ignored children. They are never followed and never
	// reported.
	Skip bool
	// Violation is set when the child is less mature than its parent. The
	// child is still followed.
	Violation *content.ContentError
}

// CheckTierViolation checks the reference from parentPath to childPath.
// edgeLabel names the relation for the message, e.g. "Learning Outcome" or
// "article". line is the line of the reference inside the parent, or 0.
func CheckTierViolation(parentPath string, parentTier content.Tier, childPath string, childTier content.Tier, edgeLabel string, line int) TierDecision {
	if childTier == content.TierIgnored {
		return TierDecision{Skip: true}
	}
	if parentTier == content.TierIgnored {
		return TierDecision{}
	}
	if tierRank[childTier] <= tierRank[parentTier] {
		return TierDecision{}
	}

	violation := content.NewError(content.KindTierViolation, parentPath, line,
		fmt.Sprintf("%s content references %s %s '%s'", parentTier, childTier, edgeLabel, childPath)).
		WithSuggestion(fmt.Sprintf("Promote '%s' to %s or mark '%s' as %s", childPath, parentTier, parentPath, childTier))
	return TierDecision{Violation: &violation}
}
