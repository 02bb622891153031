package policy

import (
	"fmt"
	"sort"
	"strings"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/decision"
)

// CTA classifies the call to action the renderer should surface.
type CTA string

const (
	CTAAddToCart        CTA = "ADD_TO_CART"
	CTAShowDetails      CTA = "SHOW_DETAILS"
	CTAContinueQuestion CTA = "CONTINUE_QUESTION"
	CTANone             CTA = "NONE"
)

// Output is the policy-level elaboration of a decision.
type Output struct {
	PrimaryAction         decision.Action   `json:"primary_action"`
	CTA                   CTA               `json:"cta"`
	CrossSellProducts     []catalog.Product `json:"cross_sell_products,omitempty"`
	UpsellProducts        []catalog.Product `json:"upsell_products,omitempty"`
	ClarificationQuestion string            `json:"clarification_question,omitempty"`
	ObjectionHandled      bool              `json:"objection_handled"`
	Notes                 []string          `json:"notes"`
}

// Map derives the call-to-action, clarification question and the cross-/
// up-sell picks from the decision. Pure function; the candidate list is
// only read.
func Map(dec decision.Output, constraints decision.Constraints, candidates []catalog.Product) Output {
	out := Output{
		PrimaryAction: dec.PrimaryAction,
		CTA:           deriveCTA(dec),
		Notes:         append([]string{}, dec.SalesNotes...),
	}

	out.ClarificationQuestion = clarificationQuestion(dec, constraints)

	if dec.PrimaryAction == decision.ActionHandleObjection {
		out.ObjectionHandled = true
	}

	if dec.PrimaryAction == decision.ActionShowProducts && dec.HasNote(decision.NoteLowBudgetWithUpsell) {
		out.UpsellProducts = upsellPicks(candidates)
	}
	if dec.PrimaryAction == decision.ActionOfferCrossSell {
		out.CrossSellProducts = crossSellPicks(candidates, constraints)
	}

	return out
}

func deriveCTA(dec decision.Output) CTA {
	switch dec.PrimaryAction {
	case decision.ActionShowProducts:
		if dec.HasNote(decision.NoteLowBudgetWithUpsell) {
			return CTAAddToCart
		}
	case decision.ActionOfferCrossSell:
		return CTAAddToCart
	case decision.ActionAskClarification, decision.ActionExplainBudgetMismatch:
		return CTAContinueQuestion
	}
	return CTANone
}

func clarificationQuestion(dec decision.Output, constraints decision.Constraints) string {
	switch dec.PrimaryAction {
	case decision.ActionAskClarification:
		if dec.HasNote(decision.NoteAmbiguousBoard) {
			return "Meinst du ein Snowboard, ein Skateboard oder ein Longboard?"
		}
		return "Kannst du mir etwas genauer beschreiben, wonach du suchst?"
	case decision.ActionExplainBudgetMismatch:
		if constraints.UserMaxPrice != nil {
			return fmt.Sprintf("Leider habe ich nichts unter %.0f Euro gefunden. Soll ich dir Produkte etwas über deinem Budget zeigen?", *constraints.UserMaxPrice)
		}
		return "Leider habe ich in deinem Budget nichts gefunden. Soll ich die Preisgrenze etwas erweitern?"
	case decision.ActionHandleObjection:
		return "Soll ich dir günstigere Alternativen zeigen?"
	}
	return ""
}

// upsellPicks returns the 2nd and 3rd cheapest candidates. The cheapest is
// already the primary answer, so it is deliberately excluded.
func upsellPicks(candidates []catalog.Product) []catalog.Product {
	if len(candidates) <= 1 {
		return nil
	}
	sorted := append([]catalog.Product{}, candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})
	end := 3
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[1:end]
}

// crossSellPicks prefers candidates outside the effective category so the
// offer complements rather than repeats the primary answer. Falls back to
// the leading candidates when everything shares one category.
func crossSellPicks(candidates []catalog.Product, constraints decision.Constraints) []catalog.Product {
	if len(candidates) == 0 {
		return nil
	}
	slug := strings.ToLower(strings.TrimSpace(constraints.EffectiveCategorySlug))

	var picks []catalog.Product
	if slug != "" {
		for _, candidate := range candidates {
			if strings.ToLower(strings.TrimSpace(candidate.Category)) != slug {
				picks = append(picks, candidate)
			}
			if len(picks) == 3 {
				return picks
			}
		}
	}
	if len(picks) > 0 {
		return picks
	}

	end := 3
	if end > len(candidates) {
		end = len(candidates)
	}
	return append([]catalog.Product{}, candidates[:end]...)
}
