package keywords

import (
	"sort"
	"strings"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/lexicon"
	"sales-advisor/engine/internal/textnorm"
)

// minHintLength keeps two-letter tokens out of the generated vocabulary.
const minHintLength = 3

// Hint is a ranked catalog vocabulary entry offered to the upstream intent
// extractor's alias tables. Count is the sum of the per-field tallies.
type Hint struct {
	Word            string `json:"word"`
	Count           int    `json:"count"`
	TitleHits       int    `json:"title_hits"`
	DescriptionHits int    `json:"description_hits"`
	TagHits         int    `json:"tag_hits"`
	CategoryHits    int    `json:"category_hits"`
}

// FieldCounts carries per-field containment tallies for one word.
type FieldCounts struct {
	Title       int
	Description int
	Tags        int
	Category    int
}

// CatalogScanner resolves how often a word appears per field across the
// catalog. LinearScanner is the default; larger catalogs can swap in an
// inverted-index implementation without touching Build.
type CatalogScanner interface {
	Occurrences(word string) FieldCounts
}

// LinearScanner re-scans every product's normalized fields for substring
// containment. O(words x catalog), fine for a few thousand items.
type LinearScanner struct {
	products []normalizedProduct
}

type normalizedProduct struct {
	title       string
	description string
	tags        string
	category    string
}

// NewLinearScanner normalizes the catalog once up front.
func NewLinearScanner(products []catalog.Product) *LinearScanner {
	normalized := make([]normalizedProduct, 0, len(products))
	for _, product := range products {
		normalized = append(normalized, normalizedProduct{
			title:       textnorm.Normalize(product.Title),
			description: textnorm.Normalize(product.Description),
			tags:        textnorm.Normalize(strings.Join(product.Tags, " ")),
			category:    textnorm.Normalize(product.Category),
		})
	}
	return &LinearScanner{products: normalized}
}

// Occurrences counts the products whose respective field contains the word.
func (s *LinearScanner) Occurrences(word string) FieldCounts {
	var counts FieldCounts
	for _, product := range s.products {
		if strings.Contains(product.title, word) {
			counts.Title++
		}
		if strings.Contains(product.description, word) {
			counts.Description++
		}
		if strings.Contains(product.tags, word) {
			counts.Tags++
		}
		if strings.Contains(product.category, word) {
			counts.Category++
		}
	}
	return counts
}

// Build runs the analyzer, filters out stop-words, short words and terms the
// intent extractor already knows, and ranks the remaining vocabulary by
// total containment count (descending, ties alphabetical).
func Build(products []catalog.Product, knownTerms []string) []Hint {
	return BuildWithScanner(products, knownTerms, NewLinearScanner(products))
}

// BuildWithScanner is Build with a caller-supplied scanner.
func BuildWithScanner(products []catalog.Product, knownTerms []string, scanner CatalogScanner) []Hint {
	analysis := Analyze(products)
	if len(analysis.Keywords) == 0 {
		return nil
	}

	known := make(map[string]struct{}, len(knownTerms))
	for _, term := range knownTerms {
		trimmed := strings.ToLower(strings.TrimSpace(term))
		if trimmed != "" {
			known[trimmed] = struct{}{}
		}
	}

	hints := make([]Hint, 0, len(analysis.Keywords))
	for _, stat := range analysis.Keywords {
		if len([]rune(stat.Word)) < minHintLength {
			continue
		}
		if lexicon.IsStopWord(stat.Word) {
			continue
		}
		if _, ok := known[stat.Word]; ok {
			continue
		}
		counts := scanner.Occurrences(stat.Word)
		hints = append(hints, Hint{
			Word:            stat.Word,
			Count:           counts.Title + counts.Description + counts.Tags + counts.Category,
			TitleHits:       counts.Title,
			DescriptionHits: counts.Description,
			TagHits:         counts.Tags,
			CategoryHits:    counts.Category,
		})
	}

	sort.Slice(hints, func(i, j int) bool {
		if hints[i].Count != hints[j].Count {
			return hints[i].Count > hints[j].Count
		}
		return hints[i].Word < hints[j].Word
	})
	return hints
}
