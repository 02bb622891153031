package keywords

import (
	"testing"

	"sales-advisor/engine/internal/catalog"
)

func findStat(t *testing.T, analysis Analysis, word string) KeywordStat {
	t.Helper()
	for _, stat := range analysis.Keywords {
		if stat.Word == word {
			return stat
		}
	}
	t.Fatalf("keyword %q not found in %v", word, analysis.Keywords)
	return KeywordStat{}
}

func hasStat(analysis Analysis, word string) bool {
	for _, stat := range analysis.Keywords {
		if stat.Word == word {
			return true
		}
	}
	return false
}

func TestAnalyzeEmptyCatalog(t *testing.T) {
	analysis := Analyze(nil)
	if analysis.TotalProducts != 0 {
		t.Fatalf("expected 0 products got %d", analysis.TotalProducts)
	}
	if analysis.Keywords != nil {
		t.Fatalf("expected nil keywords got %v", analysis.Keywords)
	}
}

func TestAnalyzeCountsDistinctProducts(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Title: "Snowboard Pro", Description: "Das Snowboard für die Piste. Snowboard!"},
		{ID: "p2", Title: "Snowboard Basic"},
		{ID: "p3", Title: "Skihelm"},
	}
	analysis := Analyze(products)

	if analysis.TotalProducts != 3 {
		t.Fatalf("expected 3 products got %d", analysis.TotalProducts)
	}
	// Repeated occurrences inside one product count once.
	if stat := findStat(t, analysis, "snowboard"); stat.Count != 2 {
		t.Fatalf("expected count 2 got %d", stat.Count)
	}
	if stat := findStat(t, analysis, "skihelm"); stat.Count != 1 {
		t.Fatalf("expected count 1 got %d", stat.Count)
	}
}

func TestAnalyzeFieldFlags(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Title: "Wachs Set"},
		{ID: "p2", Description: "Inklusive Wachs", Tags: []string{"wachs"}, Category: "pflege"},
	}
	analysis := Analyze(products)

	stat := findStat(t, analysis, "wachs")
	if !stat.InTitle || !stat.InDescription || !stat.InTags {
		t.Fatalf("expected title/description/tag flags set, got %+v", stat)
	}
	if stat.InCategory {
		t.Fatalf("did not expect category flag, got %+v", stat)
	}

	category := findStat(t, analysis, "pflege")
	if !category.InCategory {
		t.Fatalf("expected category flag, got %+v", category)
	}
}

func TestAnalyzeFiltersNoiseTokens(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Title: "Boots und Bindung für A"},
	}
	analysis := Analyze(products)

	if hasStat(analysis, "und") {
		t.Fatalf("stop-word should be excluded")
	}
	if hasStat(analysis, "für") {
		t.Fatalf("stop-word should be excluded")
	}
	if hasStat(analysis, "a") {
		t.Fatalf("single-character token should be excluded")
	}
	if !hasStat(analysis, "boots") || !hasStat(analysis, "bindung") {
		t.Fatalf("expected real tokens to survive, got %v", analysis.Keywords)
	}
}
