package entitlements

import (
	"fmt"
	"strings"
)

type Tier string

const (
	TierNone       Tier = "none"
	TierHandyman   Tier = "handyman"
	TierRenovation Tier = "renovation"
	TierGeneral    Tier = "general"
)

// UnlimitedCategories is the sentinel quota for comp/override access. It must
// be rendered as "unlimited", never as a literal number.
const UnlimitedCategories = 999

// StateKind tags which subscription representation a SubscriberState carries.
type StateKind string

const (
	KindTier     StateKind = "tier"
	KindCategory StateKind = "category"
)

// CategoryState is the legacy per-category subscription shape.
type CategoryState struct {
	Category      string
	Status        string
	CanClaimLeads bool
	CanViewLeads  bool
}

// SubscriberState is the tagged union consumed by Resolve. Tier-based
// subscribers fill Tier/Status/Categories; legacy subscribers fill
// CategorySubs. CompAccess overrides everything else.
type SubscriberState struct {
	Kind         StateKind
	Tier         Tier
	Status       string
	Categories   []string
	CategorySubs []CategoryState
	CompAccess   bool
}

// Entitlements is the canonical "what can this user do right now" shape.
type Entitlements struct {
	Tier               Tier     `json:"tier"`
	IsPro              bool     `json:"is_pro"`
	CategoryLimit      int      `json:"category_limit"`
	SelectedCategories []string `json:"selected_categories"`
	CanBrowseJobs      bool     `json:"can_browse_jobs"`
	CanAcceptJobs      bool     `json:"can_accept_jobs"`
	CanPickCategories  bool     `json:"can_pick_categories"`
	CanViewAllLeads    bool     `json:"can_view_all_leads"`
	Features           []string `json:"features"`
}

// Config carries the business numbers the resolver must not hardcode: the
// category quota and feature list per tier. Loaded from the tier_quotas table
// or env at startup.
type Config struct {
	Quotas   map[Tier]int
	Features map[Tier][]string
}

// DefaultConfig returns the shipped quota table.
func DefaultConfig() Config {
	return Config{
		Quotas: map[Tier]int{
			TierNone:       0,
			TierHandyman:   5,
			TierRenovation: 10,
			TierGeneral:    20,
		},
		Features: map[Tier][]string{
			TierNone:       {},
			TierHandyman:   {"browse_jobs", "accept_jobs"},
			TierRenovation: {"browse_jobs", "accept_jobs", "priority_support"},
			TierGeneral:    {"browse_jobs", "accept_jobs", "priority_support", "featured_profile"},
		},
	}
}

// Resolve maps subscription state to a concrete capability set. It is a pure
// function: the same state and config always produce the same result.
//
// The comp/override flag is checked before all payment-derived rules: a
// comped subscriber is fully entitled even when the provider says canceled.
func Resolve(state SubscriberState, cfg Config) Entitlements {
	state = normalize(state)

	if state.CompAccess {
		return Entitlements{
			Tier:               state.Tier,
			IsPro:              true,
			CategoryLimit:      UnlimitedCategories,
			SelectedCategories: state.Categories,
			CanBrowseJobs:      true,
			CanAcceptJobs:      true,
			CanPickCategories:  true,
			CanViewAllLeads:    true,
			Features:           cfg.Features[TierGeneral],
		}
	}

	if state.Tier == TierNone || state.Tier == "" {
		return Entitlements{
			Tier:               TierNone,
			SelectedCategories: state.Categories,
			Features:           []string{},
		}
	}

	ent := Entitlements{
		Tier:               state.Tier,
		SelectedCategories: state.Categories,
		CategoryLimit:      cfg.Quotas[state.Tier],
		Features:           cfg.Features[state.Tier],
	}

	switch normalizeStatus(state.Status) {
	case "active", "trialing":
		ent.IsPro = true
		ent.CanBrowseJobs = true
		ent.CanAcceptJobs = true
		ent.CanPickCategories = true
		ent.CanViewAllLeads = true
	case "past_due":
		// Payment risk: claiming stops, viewing continues until canceled.
		ent.CanBrowseJobs = true
		ent.CanViewAllLeads = true
	case "canceled":
		// Terminal: no claiming, no viewing.
	default:
		// Unknown provider status is treated like past_due.
		ent.CanBrowseJobs = true
		ent.CanViewAllLeads = true
	}

	return ent
}

// normalize folds the legacy per-category representation into the canonical
// tier-based shape so Resolve only reasons about one model.
func normalize(state SubscriberState) SubscriberState {
	if state.Kind != KindCategory {
		return state
	}

	out := state
	out.Kind = KindTier
	out.Categories = nil
	out.Status = "canceled"
	out.Tier = TierNone

	anyEntitling := false
	for _, cs := range state.CategorySubs {
		out.Categories = append(out.Categories, cs.Category)
		switch normalizeStatus(cs.Status) {
		case "active", "trialing":
			anyEntitling = true
			out.Status = "active"
		case "past_due":
			if !anyEntitling {
				out.Status = "past_due"
			}
		}
	}

	// A legacy subscriber with any live category behaves like the handyman
	// tier; the quota is the number of categories they actually bought.
	if len(state.CategorySubs) > 0 && out.Status != "canceled" {
		out.Tier = TierHandyman
	}
	return out
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// FormatCategoryLimit renders a quota for display. The unlimited sentinel
// must never leak as a number.
func FormatCategoryLimit(limit int) string {
	if limit >= UnlimitedCategories {
		return "unlimited"
	}
	return fmt.Sprintf("%d", limit)
}

// ParseTier maps arbitrary provider/tier strings to a known tier.
func ParseTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(TierHandyman):
		return TierHandyman
	case string(TierRenovation):
		return TierRenovation
	case string(TierGeneral):
		return TierGeneral
	default:
		return TierNone
	}
}

// TierRank orders tiers for best-plan reconciliation.
func TierRank(tier Tier) int {
	switch tier {
	case TierGeneral:
		return 3
	case TierRenovation:
		return 2
	case TierHandyman:
		return 1
	default:
		return 0
	}
}
