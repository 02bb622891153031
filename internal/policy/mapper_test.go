package policy

import (
	"strings"
	"testing"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/decision"
)

func floatPtr(v float64) *float64 { return &v }

func priceCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Title: "Snowboard Pro", Price: 299.90, Category: "snowboards"},
		{ID: "p2", Title: "Snowboard Basic", Price: 149.90, Category: "snowboards"},
		{ID: "p3", Title: "Snowboard Team", Price: 199.90, Category: "snowboards"},
		{ID: "p4", Title: "Skihelm Alpin", Price: 79.90, Category: "helme"},
	}
}

func TestMapUpsellPicks(t *testing.T) {
	dec := decision.Output{
		PrimaryAction: decision.ActionShowProducts,
		SalesNotes:    []string{decision.NoteLowBudgetWithUpsell},
	}
	out := Map(dec, decision.Constraints{}, priceCatalog())

	if out.CTA != CTAAddToCart {
		t.Fatalf("expected %q got %q", CTAAddToCart, out.CTA)
	}
	// Cheapest candidate (p4) is the primary answer; the next two follow.
	if len(out.UpsellProducts) != 2 {
		t.Fatalf("expected 2 upsell products got %d", len(out.UpsellProducts))
	}
	if out.UpsellProducts[0].ID != "p2" || out.UpsellProducts[1].ID != "p3" {
		t.Fatalf("expected p2,p3 got %s,%s", out.UpsellProducts[0].ID, out.UpsellProducts[1].ID)
	}
}

func TestMapUpsellNeedsAlternatives(t *testing.T) {
	dec := decision.Output{
		PrimaryAction: decision.ActionShowProducts,
		SalesNotes:    []string{decision.NoteLowBudgetWithUpsell},
	}
	out := Map(dec, decision.Constraints{}, priceCatalog()[:1])
	if out.UpsellProducts != nil {
		t.Fatalf("expected no upsell for single candidate, got %v", out.UpsellProducts)
	}
}

func TestMapShowProductsWithoutUpsellNote(t *testing.T) {
	dec := decision.Output{PrimaryAction: decision.ActionShowProducts}
	out := Map(dec, decision.Constraints{}, priceCatalog())
	if out.CTA != CTANone {
		t.Fatalf("expected %q got %q", CTANone, out.CTA)
	}
	if out.UpsellProducts != nil {
		t.Fatalf("expected no upsell without note, got %v", out.UpsellProducts)
	}
}

func TestMapClarificationQuestions(t *testing.T) {
	tests := []struct {
		name        string
		dec         decision.Output
		constraints decision.Constraints
		wantCTA     CTA
		contains    string
	}{
		{
			name: "ambiguous board",
			dec: decision.Output{
				PrimaryAction: decision.ActionAskClarification,
				SalesNotes:    []string{decision.NoteAmbiguousBoard},
			},
			wantCTA:  CTAContinueQuestion,
			contains: "Snowboard, ein Skateboard oder ein Longboard",
		},
		{
			name:     "generic clarification",
			dec:      decision.Output{PrimaryAction: decision.ActionAskClarification},
			wantCTA:  CTAContinueQuestion,
			contains: "genauer beschreiben",
		},
		{
			name:        "budget mismatch with ceiling",
			dec:         decision.Output{PrimaryAction: decision.ActionExplainBudgetMismatch},
			constraints: decision.Constraints{HasBudget: true, UserMaxPrice: floatPtr(100)},
			wantCTA:     CTAContinueQuestion,
			contains:    "nichts unter 100 Euro",
		},
		{
			name:     "budget mismatch without ceiling",
			dec:      decision.Output{PrimaryAction: decision.ActionExplainBudgetMismatch},
			wantCTA:  CTAContinueQuestion,
			contains: "Preisgrenze",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Map(tc.dec, tc.constraints, nil)
			if out.CTA != tc.wantCTA {
				t.Fatalf("expected cta %q got %q", tc.wantCTA, out.CTA)
			}
			if !strings.Contains(out.ClarificationQuestion, tc.contains) {
				t.Fatalf("expected question containing %q got %q", tc.contains, out.ClarificationQuestion)
			}
		})
	}
}

func TestMapObjection(t *testing.T) {
	dec := decision.Output{
		PrimaryAction: decision.ActionHandleObjection,
		SalesNotes:    []string{decision.NotePriceObjection},
	}
	out := Map(dec, decision.Constraints{}, priceCatalog())

	if !out.ObjectionHandled {
		t.Fatal("expected objection handled")
	}
	if out.CTA != CTANone {
		t.Fatalf("expected %q got %q", CTANone, out.CTA)
	}
	if out.ClarificationQuestion != "Soll ich dir günstigere Alternativen zeigen?" {
		t.Fatalf("unexpected question %q", out.ClarificationQuestion)
	}
}

func TestMapCrossSellPrefersOtherCategories(t *testing.T) {
	dec := decision.Output{
		PrimaryAction: decision.ActionOfferCrossSell,
		SalesNotes:    []string{decision.NoteBuyIntentCrossSell},
	}
	out := Map(dec, decision.Constraints{EffectiveCategorySlug: "snowboards"}, priceCatalog())

	if out.CTA != CTAAddToCart {
		t.Fatalf("expected %q got %q", CTAAddToCart, out.CTA)
	}
	if len(out.CrossSellProducts) != 1 || out.CrossSellProducts[0].ID != "p4" {
		t.Fatalf("expected off-category pick p4, got %v", out.CrossSellProducts)
	}
}

func TestMapCrossSellFallsBackToLeadingCandidates(t *testing.T) {
	dec := decision.Output{PrimaryAction: decision.ActionOfferCrossSell}
	candidates := priceCatalog()[:3]
	out := Map(dec, decision.Constraints{EffectiveCategorySlug: "snowboards"}, candidates)

	if len(out.CrossSellProducts) != 3 {
		t.Fatalf("expected fallback to 3 leading candidates, got %d", len(out.CrossSellProducts))
	}
	if out.CrossSellProducts[0].ID != "p1" {
		t.Fatalf("expected p1 first, got %s", out.CrossSellProducts[0].ID)
	}
}

func TestMapCopiesNotes(t *testing.T) {
	dec := decision.Output{
		PrimaryAction: decision.ActionShowProducts,
		SalesNotes:    []string{decision.NoteDefaultShowProducts},
	}
	out := Map(dec, decision.Constraints{}, nil)
	if len(out.Notes) != 1 || out.Notes[0] != decision.NoteDefaultShowProducts {
		t.Fatalf("expected notes copied, got %v", out.Notes)
	}

	out.Notes[0] = "mutated"
	if dec.SalesNotes[0] != decision.NoteDefaultShowProducts {
		t.Fatal("policy output must not alias the decision notes")
	}
}
