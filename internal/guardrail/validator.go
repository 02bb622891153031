package guardrail

import (
	"strings"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/lexicon"
)

// ViolationKind identifies a factual-overreach class.
type ViolationKind string

const (
	KindFreeWithoutPrice      ViolationKind = "freeWithoutPrice"
	KindUnknownCategory       ViolationKind = "unknownCategory"
	KindFictitiousDescription ViolationKind = "fictitiousDescription"
)

// Violation is a structural mismatch between asserted reply content and
// the verifiable product data. Violations are advisory, never fatal.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	ProductID string        `json:"product_id,omitempty"`
	Detail    string        `json:"detail"`
}

// Validate audits the rendered reply against the same candidate list the
// decision saw. An empty reply yields no violations. The result is
// de-duplicated by kind.
func Validate(reply string, candidates []catalog.Product) []Violation {
	if strings.TrimSpace(reply) == "" {
		return nil
	}
	lowerReply := strings.ToLower(reply)

	var violations []Violation
	if v, ok := checkFreeClaim(lowerReply, candidates); ok {
		violations = append(violations, v)
	}
	if v, ok := checkUnknownCategory(lowerReply, candidates); ok {
		violations = append(violations, v)
	}
	if v, ok := checkFictitiousDescription(lowerReply, candidates); ok {
		violations = append(violations, v)
	}
	return violations
}

// Merge appends the new violations onto existing ones, dropping duplicate
// kinds. Ordering of the existing list is preserved.
func Merge(existing, incoming []Violation) []Violation {
	seen := make(map[ViolationKind]struct{}, len(existing))
	for _, v := range existing {
		seen[v.Kind] = struct{}{}
	}
	merged := existing
	for _, v := range incoming {
		if _, ok := seen[v.Kind]; ok {
			continue
		}
		seen[v.Kind] = struct{}{}
		merged = append(merged, v)
	}
	return merged
}

// checkFreeClaim flags "free of charge" vocabulary when at least one
// candidate has no truthful price backing the claim.
func checkFreeClaim(lowerReply string, candidates []catalog.Product) (Violation, bool) {
	word := lexicon.FirstMatch(lowerReply, lexicon.FreeClaimWords)
	if word == "" {
		return Violation{}, false
	}
	for _, candidate := range candidates {
		if !candidate.HasValidPrice() || candidate.Price <= 0 {
			return Violation{
				Kind:      KindFreeWithoutPrice,
				ProductID: candidate.ID,
				Detail:    "reply claims " + word + " but candidate has no positive price",
			}, true
		}
	}
	return Violation{}, false
}

// checkUnknownCategory flags "unknown" vocabulary when a candidate carries
// a missing or placeholder category.
func checkUnknownCategory(lowerReply string, candidates []catalog.Product) (Violation, bool) {
	word := lexicon.FirstMatch(lowerReply, lexicon.UnknownWords)
	if word == "" {
		return Violation{}, false
	}
	for _, candidate := range candidates {
		category := strings.ToLower(strings.TrimSpace(candidate.Category))
		if category == "" || category == lexicon.UnknownCategoryPlaceholder {
			return Violation{
				Kind:      KindUnknownCategory,
				ProductID: candidate.ID,
				Detail:    "reply mentions " + word + " and candidate category is unresolved",
			}, true
		}
	}
	return Violation{}, false
}

// checkFictitiousDescription flags replies discussing a product whose
// description is blank. A strong, though not conclusive, hallucination
// signal.
func checkFictitiousDescription(lowerReply string, candidates []catalog.Product) (Violation, bool) {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.Description) != "" {
			continue
		}
		title := strings.ToLower(strings.TrimSpace(candidate.Title))
		if title == "" {
			continue
		}
		if strings.Contains(lowerReply, title) {
			return Violation{
				Kind:      KindFictitiousDescription,
				ProductID: candidate.ID,
				Detail:    "reply discusses a product without description data",
			}, true
		}
	}
	return Violation{}, false
}
