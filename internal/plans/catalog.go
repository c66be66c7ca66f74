package plans

import (
	"fmt"
	"strings"
)

// Tier is a subscription level.
type Tier string

const (
	TierFree     Tier = "FREE"
	TierPremium  Tier = "PREMIUM"
	TierBusiness Tier = "BUSINESS"
)

// Unlimited marks a numeric limit that is never enforced.
const Unlimited = -1

// PlanLimits is the quota and feature set of one tier.
type PlanLimits struct {
	MaxForms             int  `json:"maxForms"`
	MaxResponsesPerMonth int  `json:"maxResponsesPerMonth"`
	AdvancedAnalytics    bool `json:"hasAdvancedAnalytics"`
	SheetExport          bool `json:"hasGoogleSheetsExport"`
	TeamCollaboration    bool `json:"hasTeamCollaboration"`
	CustomBranding       bool `json:"hasCustomBranding"`
	APIAccess            bool `json:"hasApiAccess"`
}

var catalog = map[Tier]PlanLimits{
	TierFree: {
		MaxForms:             3,
		MaxResponsesPerMonth: 100,
	},
	TierPremium: {
		MaxForms:             Unlimited,
		MaxResponsesPerMonth: 10000,
		AdvancedAnalytics:    true,
		SheetExport:          true,
	},
	TierBusiness: {
		MaxForms:             Unlimited,
		MaxResponsesPerMonth: Unlimited,
		AdvancedAnalytics:    true,
		SheetExport:          true,
		TeamCollaboration:    true,
		CustomBranding:       true,
		APIAccess:            true,
	},
}

// LimitsFor returns the limits of tier. Tiers come from ParseTier, so an
// unknown tier here is a bug.
func LimitsFor(tier Tier) PlanLimits {
	limits, ok := catalog[tier]
	if !ok {
		panic(fmt.Sprintf("plans: no limits for tier %q", tier))
	}
	return limits
}

// ParseTier converts a stored or submitted plan name into a Tier.
func ParseTier(s string) (Tier, error) {
	tier := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := catalog[tier]; !ok {
		return "", fmt.Errorf("unknown plan tier %q", s)
	}
	return tier, nil
}

// Upgradeable reports whether tier can be bought.
func (t Tier) Upgradeable() bool {
	return t == TierPremium || t == TierBusiness
}

// Within reports whether used is still below limit. Unlimited is always within.
func Within(used int64, limit int) bool {
	return limit == Unlimited || used < int64(limit)
}
