// Package budget derives government / self-cash / self-in-kind cost shares
// from a region-type policy table and formats currency strings for the
// template.
package budget

// RegionPolicy is the fixed cost-sharing ratio tuple for one grant-program
// region tier. GovRatio + CashRatio + InKindRatio == 1 for every tier.
type RegionPolicy struct {
	Name        string
	GovRatio    float64
	CashRatio   float64
	InKindRatio float64
}

// RegionGeneral is the default tier applied when the region label is absent
// or unrecognized.
const RegionGeneral = "일반지역"

// Policies lists the four region tiers in template order.
var Policies = []RegionPolicy{
	{Name: RegionGeneral, GovRatio: 0.75, CashRatio: 0.10, InKindRatio: 0.15},
	{Name: "수도권", GovRatio: 0.70, CashRatio: 0.15, InKindRatio: 0.15},
	{Name: "특구지역", GovRatio: 0.80, CashRatio: 0.08, InKindRatio: 0.12},
	{Name: "성장촉진지역", GovRatio: 0.85, CashRatio: 0.06, InKindRatio: 0.09},
}

// PolicyFor returns the policy for a region label. Unknown labels fall back
// to the 일반지역 tier rather than erroring, so a malformed overview table
// still produces a fully populated budget.
func PolicyFor(label string) RegionPolicy {
	for _, policy := range Policies {
		if policy.Name == label {
			return policy
		}
	}
	return Policies[0]
}

// RegionLabels returns the accepted region labels in template order.
func RegionLabels() []string {
	labels := make([]string, len(Policies))
	for i, policy := range Policies {
		labels[i] = policy.Name
	}
	return labels
}
