package decision

import (
	"strings"

	"sales-advisor/engine/internal/lexicon"
	"sales-advisor/engine/internal/textnorm"
)

// rule is one row of the priority-ordered table. detect inspects the input
// and returns the note to record plus optional debug flags. A rule without
// override only fires while no action is set; an override rule replaces a
// previously-set action unless that action is shielded, in which case only
// the note survives.
type rule struct {
	name     string
	action   Action
	override bool
	shielded map[Action]struct{}
	detect   func(in Input) (note string, flags []string, ok bool)
}

// serviceActions outrank the price objection for the action slot.
var serviceActions = map[Action]struct{}{
	ActionShowDeliveryInfo: {},
	ActionShowReturnsInfo:  {},
}

// defaultRules builds the canonical rule order. The order is fixed and
// total: the final default rule matches every input.
func defaultRules(p *PatternSet) []rule {
	return []rule{
		{
			name:   "delivery_question",
			action: ActionShowDeliveryInfo,
			detect: p.detectDelivery,
		},
		{
			name:   "returns_question",
			action: ActionShowReturnsInfo,
			detect: p.detectReturns,
		},
		{
			name:     "price_objection",
			action:   ActionHandleObjection,
			override: true,
			shielded: serviceActions,
			detect:   p.detectPriceObjection,
		},
		{
			name:   "ambiguous_board",
			action: ActionAskClarification,
			detect: detectAmbiguousBoard,
		},
		{
			name:   "vague_request",
			action: ActionAskClarification,
			detect: detectVagueRequest,
		},
		{
			name:   "vague_lifestyle",
			action: ActionAskClarification,
			detect: detectVagueLifestyle,
		},
		{
			name:   "budget_conflict",
			action: ActionExplainBudgetMismatch,
			detect: detectBudgetConflict,
		},
		{
			name:   "buy_intent_cross_sell",
			action: ActionOfferCrossSell,
			detect: detectBuyIntent,
		},
		{
			name:   "cheapest_upsell",
			action: ActionShowProducts,
			detect: detectCheapest,
		},
		{
			name:   "default_show_products",
			action: ActionShowProducts,
			detect: func(Input) (string, []string, bool) {
				return NoteDefaultShowProducts, nil, true
			},
		},
	}
}

// detectDelivery matches either a delivery stem co-occurring with a time
// word, or one of the curated delivery phrasings.
func (p *PatternSet) detectDelivery(in Input) (string, []string, bool) {
	text := in.Text
	if lexicon.ContainsAny(text, lexicon.DeliveryWords) && lexicon.ContainsAny(text, lexicon.TimeWords) {
		return NoteDeliveryQuestion, nil, true
	}
	if lexicon.MatchesAny(text, p.Delivery) {
		return NoteDeliveryQuestion, nil, true
	}
	return "", nil, false
}

func (p *PatternSet) detectReturns(in Input) (string, []string, bool) {
	if lexicon.ContainsAny(in.Text, lexicon.ReturnsWords) {
		return NoteReturnsQuestion, nil, true
	}
	if lexicon.MatchesAny(in.Text, p.Returns) {
		return NoteReturnsQuestion, nil, true
	}
	return "", nil, false
}

// detectPriceObjection layers four checks from specific to loose:
// expensive+zu+finden co-occurrence, preis+zu hoch+zu co-occurrence, the
// curated pattern list, and finally the bare expensive+zu fallback.
func (p *PatternSet) detectPriceObjection(in Input) (string, []string, bool) {
	text := in.Text
	hasZu := containsToken(text, "zu")
	expensive := lexicon.ContainsAny(text, lexicon.TooExpensiveWords)

	if expensive && hasZu && (strings.Contains(text, "find") || strings.Contains(text, "finde")) {
		return NotePriceObjection, nil, true
	}
	if strings.Contains(text, "preis") && strings.Contains(text, "zu hoch") && hasZu {
		return NotePriceObjection, nil, true
	}
	if lexicon.MatchesAny(text, p.PriceObjection) {
		return NotePriceObjection, nil, true
	}
	if expensive && hasZu {
		return NotePriceObjection, nil, true
	}
	return "", nil, false
}

// detectAmbiguousBoard fires when the generic term stands alone, without
// any of its specific compounds.
func detectAmbiguousBoard(in Input) (string, []string, bool) {
	if !containsToken(in.Text, lexicon.GenericBoardTerm) {
		return "", nil, false
	}
	if lexicon.ContainsAny(in.Text, lexicon.SpecificBoardTerms) {
		return "", nil, false
	}
	return NoteAmbiguousBoard, nil, true
}

func detectVagueRequest(in Input) (string, []string, bool) {
	if !lexicon.ContainsAny(in.Text, lexicon.VagueWords) {
		return "", nil, false
	}
	if !lexicon.MatchesAny(in.Text, lexicon.DontKnowPatterns) {
		return "", nil, false
	}
	return NoteNoProductsFound, nil, true
}

// detectVagueLifestyle combines unknown terms, a missing usable budget, a
// weak category signal and a non-empty candidate list.
func detectVagueLifestyle(in Input) (string, []string, bool) {
	if len(in.UnknownTerms) == 0 {
		return "", nil, false
	}
	if in.Constraints.HasBudget {
		return "", nil, false
	}
	if !weakCategorySignal(in) {
		return "", nil, false
	}
	if len(in.Candidates) == 0 {
		return "", nil, false
	}
	return NoteNoProductsFound, []string{FlagVagueLifestyleQuery}, true
}

func detectBudgetConflict(in Input) (string, []string, bool) {
	c := in.Constraints
	if c.HasBudget && c.PriceRangeNoMatch && c.UserMaxPrice != nil {
		return NoteBudgetNoMatch, nil, true
	}
	return "", nil, false
}

func detectBuyIntent(in Input) (string, []string, bool) {
	if len(in.Candidates) == 0 {
		return "", nil, false
	}
	if !lexicon.ContainsAny(in.Text, lexicon.BuyIntentWords) {
		return "", nil, false
	}
	return NoteBuyIntentCrossSell, nil, true
}

func detectCheapest(in Input) (string, []string, bool) {
	if len(in.Candidates) == 0 {
		return "", nil, false
	}
	if in.Constraints.PriceRangeNoMatch {
		return "", nil, false
	}
	if !lexicon.MatchesAny(in.Text, lexicon.CheapestPatterns) {
		return "", nil, false
	}
	return NoteLowBudgetWithUpsell, nil, true
}

// weakCategorySignal holds when no effective slug exists or the candidates
// span more than one distinct category.
func weakCategorySignal(in Input) bool {
	if strings.TrimSpace(in.Constraints.EffectiveCategorySlug) == "" {
		return true
	}
	distinct := make(map[string]struct{})
	for _, candidate := range in.Candidates {
		category := strings.ToLower(strings.TrimSpace(candidate.Category))
		if category == "" {
			continue
		}
		distinct[category] = struct{}{}
	}
	return len(distinct) > 1
}

func containsToken(text, token string) bool {
	for _, candidate := range textnorm.Tokenize(text) {
		if candidate == token {
			return true
		}
	}
	return false
}
