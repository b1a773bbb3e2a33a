package entitlements

import (
	"reflect"
	"testing"
)

func TestResolveNoTier(t *testing.T) {
	ent := Resolve(SubscriberState{Kind: KindTier, Tier: TierNone, Status: "active"}, DefaultConfig())

	if ent.IsPro {
		t.Fatalf("expected tier none to not be pro")
	}
	if ent.CategoryLimit != 0 {
		t.Fatalf("expected category limit 0, got %d", ent.CategoryLimit)
	}
	if ent.CanAcceptJobs {
		t.Fatalf("expected tier none to not accept jobs")
	}
}

func TestResolveActiveTiers(t *testing.T) {
	tests := []struct {
		tier      Tier
		wantLimit int
	}{
		{tier: TierHandyman, wantLimit: 5},
		{tier: TierRenovation, wantLimit: 10},
		{tier: TierGeneral, wantLimit: 20},
	}

	for _, tt := range tests {
		ent := Resolve(SubscriberState{Kind: KindTier, Tier: tt.tier, Status: "active"}, DefaultConfig())
		if !ent.IsPro {
			t.Fatalf("tier %s: expected pro", tt.tier)
		}
		if ent.CategoryLimit != tt.wantLimit {
			t.Fatalf("tier %s: category limit = %d, want %d", tt.tier, ent.CategoryLimit, tt.wantLimit)
		}
		if !ent.CanAcceptJobs || !ent.CanViewAllLeads {
			t.Fatalf("tier %s: expected full capabilities when active", tt.tier)
		}
	}
}

func TestResolvePastDueKeepsViewing(t *testing.T) {
	ent := Resolve(SubscriberState{Kind: KindTier, Tier: TierRenovation, Status: "past_due"}, DefaultConfig())

	if ent.CanAcceptJobs {
		t.Fatalf("past_due must not accept jobs")
	}
	if !ent.CanViewAllLeads {
		t.Fatalf("past_due keeps lead viewing until canceled")
	}
	if ent.IsPro {
		t.Fatalf("past_due is not pro")
	}
}

func TestResolveCanceledRevokesEverything(t *testing.T) {
	ent := Resolve(SubscriberState{Kind: KindTier, Tier: TierGeneral, Status: "canceled"}, DefaultConfig())

	if ent.CanAcceptJobs || ent.CanViewAllLeads {
		t.Fatalf("canceled must revoke claiming and viewing")
	}
}

func TestCompOverridePrecedesPaymentState(t *testing.T) {
	ent := Resolve(SubscriberState{
		Kind:       KindTier,
		Tier:       TierHandyman,
		Status:     "canceled",
		CompAccess: true,
	}, DefaultConfig())

	if !ent.IsPro {
		t.Fatalf("comp access must force pro regardless of payment state")
	}
	if ent.CategoryLimit != UnlimitedCategories {
		t.Fatalf("comp access category limit = %d, want sentinel %d", ent.CategoryLimit, UnlimitedCategories)
	}
	if !ent.CanAcceptJobs {
		t.Fatalf("comp access must allow claiming")
	}
}

func TestResolveIsPure(t *testing.T) {
	state := SubscriberState{Kind: KindTier, Tier: TierGeneral, Status: "active", Categories: []string{"plumbing"}}
	cfg := DefaultConfig()

	first := Resolve(state, cfg)
	for i := 0; i < 5; i++ {
		if got := Resolve(state, cfg); !reflect.DeepEqual(first, got) {
			t.Fatalf("Resolve is not deterministic: %+v != %+v", first, got)
		}
	}
}

func TestResolveLegacyCategoryModel(t *testing.T) {
	ent := Resolve(SubscriberState{
		Kind: KindCategory,
		CategorySubs: []CategoryState{
			{Category: "plumbing", Status: "active"},
			{Category: "electrical", Status: "canceled"},
		},
	}, DefaultConfig())

	if !ent.IsPro {
		t.Fatalf("legacy subscriber with an active category should be pro")
	}
	if !reflect.DeepEqual(ent.SelectedCategories, []string{"plumbing", "electrical"}) {
		t.Fatalf("unexpected selected categories: %v", ent.SelectedCategories)
	}
}

func TestResolveLegacyAllCanceled(t *testing.T) {
	ent := Resolve(SubscriberState{
		Kind: KindCategory,
		CategorySubs: []CategoryState{
			{Category: "roofing", Status: "canceled"},
		},
	}, DefaultConfig())

	if ent.IsPro || ent.CanAcceptJobs {
		t.Fatalf("fully canceled legacy subscriber must have no pro capabilities")
	}
}

func TestFormatCategoryLimit(t *testing.T) {
	if got := FormatCategoryLimit(5); got != "5" {
		t.Fatalf("FormatCategoryLimit(5) = %q", got)
	}
	if got := FormatCategoryLimit(UnlimitedCategories); got != "unlimited" {
		t.Fatalf("sentinel must render as unlimited, got %q", got)
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{in: "handyman", want: TierHandyman},
		{in: " General ", want: TierGeneral},
		{in: "RENOVATION", want: TierRenovation},
		{in: "bogus", want: TierNone},
		{in: "", want: TierNone},
	}

	for _, tt := range tests {
		if got := ParseTier(tt.in); got != tt.want {
			t.Fatalf("ParseTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTierRank(t *testing.T) {
	if TierRank(TierHandyman) >= TierRank(TierRenovation) {
		t.Fatalf("expected renovation to outrank handyman")
	}
	if TierRank(TierRenovation) >= TierRank(TierGeneral) {
		t.Fatalf("expected general to outrank renovation")
	}
}
