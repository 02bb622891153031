package guardrail

import (
	"math"
	"testing"

	"sales-advisor/engine/internal/catalog"
)

func pricedCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Title: "Snowboard Pro", Description: "Piste", Price: 299.90, Category: "snowboards"},
		{ID: "p2", Title: "Skihelm Alpin", Description: "Helm", Price: 79.90, Category: "helme"},
	}
}

func hasKind(violations []Violation, kind ViolationKind) bool {
	for _, v := range violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

func TestValidateEmptyReply(t *testing.T) {
	if violations := Validate("", pricedCatalog()); violations != nil {
		t.Fatalf("expected nil for empty reply, got %v", violations)
	}
	if violations := Validate("   ", pricedCatalog()); violations != nil {
		t.Fatalf("expected nil for blank reply, got %v", violations)
	}
}

func TestValidateFreeClaim(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		candidates []catalog.Product
		violated   bool
	}{
		{
			name:       "free claim with positive prices",
			reply:      "Der Versand ist kostenlos, das Board kostet 299,90 Euro.",
			candidates: pricedCatalog(),
			violated:   false,
		},
		{
			name:  "free claim with zero price",
			reply: "Dieses Produkt ist gratis erhältlich!",
			candidates: []catalog.Product{
				{ID: "p1", Title: "Snowboard", Description: "x", Price: 0, Category: "snowboards"},
			},
			violated: true,
		},
		{
			name:  "free claim with missing price",
			reply: "Das bekommst du KOSTENLOS dazu.",
			candidates: []catalog.Product{
				{ID: "p1", Title: "Snowboard", Description: "x", Price: math.NaN(), Category: "snowboards"},
			},
			violated: true,
		},
		{
			name:       "no free vocabulary",
			reply:      "Das Board kostet 299,90 Euro.",
			candidates: []catalog.Product{{ID: "p1", Title: "Snowboard", Description: "x", Price: 0}},
			violated:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			violations := Validate(tc.reply, tc.candidates)
			if got := hasKind(violations, KindFreeWithoutPrice); got != tc.violated {
				t.Fatalf("expected violated=%v got %v (%v)", tc.violated, got, violations)
			}
		})
	}
}

func TestValidateUnknownCategory(t *testing.T) {
	candidates := []catalog.Product{
		{ID: "p1", Title: "Snowboard", Description: "x", Price: 100, Category: "unbekannt"},
	}
	violations := Validate("Die Kategorie ist leider unbekannt.", candidates)
	if !hasKind(violations, KindUnknownCategory) {
		t.Fatalf("expected unknownCategory violation, got %v", violations)
	}
	if violations[0].ProductID != "p1" {
		t.Fatalf("expected product p1 got %q", violations[0].ProductID)
	}

	resolved := Validate("Die Kategorie ist leider unbekannt.", pricedCatalog())
	if hasKind(resolved, KindUnknownCategory) {
		t.Fatalf("resolved categories must not violate, got %v", resolved)
	}
}

func TestValidateFictitiousDescription(t *testing.T) {
	candidates := []catalog.Product{
		{ID: "p1", Title: "Snowboard Pro", Price: 100, Category: "snowboards"},
	}
	violations := Validate("Das Snowboard Pro hat einen fantastischen Flex.", candidates)
	if !hasKind(violations, KindFictitiousDescription) {
		t.Fatalf("expected fictitiousDescription violation, got %v", violations)
	}

	described := Validate("Das Snowboard Pro hat einen fantastischen Flex.", pricedCatalog())
	if hasKind(described, KindFictitiousDescription) {
		t.Fatalf("described product must not violate, got %v", described)
	}

	unmentioned := Validate("Wir haben viele tolle Produkte.", candidates)
	if hasKind(unmentioned, KindFictitiousDescription) {
		t.Fatalf("unmentioned product must not violate, got %v", unmentioned)
	}
}

func TestValidateReportsMultipleKinds(t *testing.T) {
	candidates := []catalog.Product{
		{ID: "p1", Title: "Snowboard Pro", Price: 0, Category: "unbekannt"},
	}
	violations := Validate("Das Snowboard Pro ist kostenlos, Kategorie unbekannt.", candidates)
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations got %d: %v", len(violations), violations)
	}
}

func TestMergeDeduplicatesByKind(t *testing.T) {
	existing := []Violation{{Kind: KindFreeWithoutPrice, ProductID: "p1"}}
	incoming := []Violation{
		{Kind: KindFreeWithoutPrice, ProductID: "p2"},
		{Kind: KindUnknownCategory, ProductID: "p3"},
	}
	merged := Merge(existing, incoming)

	if len(merged) != 2 {
		t.Fatalf("expected 2 violations got %d", len(merged))
	}
	if merged[0].ProductID != "p1" {
		t.Fatalf("existing violation must win, got %v", merged[0])
	}
	if merged[1].Kind != KindUnknownCategory {
		t.Fatalf("expected unknownCategory appended, got %v", merged[1])
	}
}
