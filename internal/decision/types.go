package decision

import "sales-advisor/engine/internal/catalog"

// Action is the single decision output per utterance.
type Action string

const (
	ActionShowProducts          Action = "SHOW_PRODUCTS"
	ActionAskClarification      Action = "ASK_CLARIFICATION"
	ActionExplainBudgetMismatch Action = "EXPLAIN_BUDGET_MISMATCH"
	ActionOfferCrossSell        Action = "OFFER_CROSS_SELL"
	ActionHandleObjection       Action = "HANDLE_OBJECTION"
	ActionShowDeliveryInfo      Action = "SHOW_DELIVERY_INFO"
	ActionShowReturnsInfo       Action = "SHOW_RETURNS_INFO"
)

// Intent is the enumerated shopper goal supplied by the upstream extractor.
// The engine treats it as advisory; the hand-authored rules decide.
type Intent string

const (
	IntentBrowse  Intent = "browse"
	IntentBuy     Intent = "buy"
	IntentSupport Intent = "support"
	IntentUnknown Intent = "unknown"
)

// Sales notes appended by the rules, ordered and de-duplicated.
const (
	NoteDeliveryQuestion      = "DELIVERY_QUESTION"
	NoteReturnsQuestion       = "RETURNS_QUESTION"
	NotePriceObjection        = "PRICE_OBJECTION"
	NoteAmbiguousBoard        = "AMBIGUOUS_BOARD"
	NoteNoProductsFound       = "NO_PRODUCTS_FOUND"
	NoteBudgetNoMatch         = "BUDGET_NO_MATCH"
	NoteBuyIntentCrossSell    = "BUY_INTENT_CROSS_SELL_HINT"
	NoteLowBudgetWithUpsell   = "LOW_BUDGET_WITH_UPSELL"
	NoteDefaultShowProducts   = "DEFAULT_SHOW_PRODUCTS"
	FlagVagueLifestyleQuery   = "VAGUE_LIFESTYLE_QUERY"
	FlagObjectionAfterService = "OBJECTION_KEPT_AS_NOTE"
)

// Constraints carries the budget and category signals extracted upstream.
// Read-only to the engine.
type Constraints struct {
	HasBudget             bool     `json:"has_budget"`
	UserMinPrice          *float64 `json:"user_min_price,omitempty"`
	UserMaxPrice          *float64 `json:"user_max_price,omitempty"`
	EffectiveCategorySlug string   `json:"effective_category_slug,omitempty"`
	ContextCategory       string   `json:"context_category,omitempty"`
	PriceRangeNoMatch     bool     `json:"price_range_no_match"`
}

// Input aggregates everything a single decision needs. Text is the
// normalized form of RawText; the engine fills it in when empty.
type Input struct {
	RawText      string
	Text         string
	Intent       Intent
	Candidates   []catalog.Product
	Constraints  Constraints
	UnknownTerms []string
}

// Output is the engine result. PrimaryAction is never empty: the default
// rule guarantees a fallback.
type Output struct {
	PrimaryAction   Action   `json:"primary_action"`
	SalesNotes      []string `json:"sales_notes"`
	DebugSalesFlags []string `json:"debug_sales_flags"`
}

func (o *Output) appendNote(note string) {
	if note == "" {
		return
	}
	for _, existing := range o.SalesNotes {
		if existing == note {
			return
		}
	}
	o.SalesNotes = append(o.SalesNotes, note)
}

func (o *Output) appendFlag(flag string) {
	if flag == "" {
		return
	}
	for _, existing := range o.DebugSalesFlags {
		if existing == flag {
			return
		}
	}
	o.DebugSalesFlags = append(o.DebugSalesFlags, flag)
}

// HasNote reports whether the note was recorded.
func (o Output) HasNote(note string) bool {
	for _, existing := range o.SalesNotes {
		if existing == note {
			return true
		}
	}
	return false
}
