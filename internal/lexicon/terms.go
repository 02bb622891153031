package lexicon

import (
	"regexp"
	"strings"
)

// Vocabulary shared by the decision rules and the guardrail validator.
// All entries are matched against normalized text (see textnorm.Normalize),
// so they must be lowercase and free of punctuation.

// DeliveryWords are stems signalling a shipping or delivery topic. They are
// substring-matched so that inflections like "geliefert" hit "liefer".
var DeliveryWords = []string{
	"liefer", "versand", "versend", "zustell", "paket", "sendung",
}

// TimeWords back a delivery question up with an explicit time reference.
var TimeWords = []string{
	"morgen", "heute", "übermorgen", "wann", "tag", "tage", "woche",
	"wochen", "uhr", "schnell", "bald", "lange", "dauert",
}

// DeliveryPatterns are curated phrasings that count as a delivery question
// on their own, without the word/time co-occurrence check.
var DeliveryPatterns = compile(
	`wie lange dauert`,
	`wann (kommt|ist) .*(an|da)`,
	`ist (das|es|die|der) (morgen|heute|übermorgen) (da|bei mir|geliefert)`,
	`lieferzeit`,
	`versanddauer`,
	`wie schnell (wird|kommt|ist)`,
	`wenn ich (heute|jetzt) bestelle`,
)

// ReturnsWords flag a returns or refund topic via simple containment.
var ReturnsWords = []string{
	"rückgabe", "zurückgeben", "zurückschicken", "zurücksenden",
	"umtausch", "retoure", "reklamation", "widerruf", "erstattung",
	"geld zurück",
}

// ReturnsPatterns cover the conditional "what if it does not ..." phrasings.
var ReturnsPatterns = compile(
	`was ist wenn .*nicht (passt|passen)`,
	`was ist wenn .*nicht (gefällt|gefallen)`,
)

// Price objection vocabulary, layered from specific patterns down to bare
// co-occurrence fallbacks.
var (
	TooExpensiveWords = []string{"teuer", "kostspielig"}

	PriceObjectionPatterns = compile(
		`zu teuer`,
		`viel zu teuer`,
		`preis (ist|finde ich) .*zu hoch`,
		`übersteigt (mein|unser) budget`,
		`kann ich mir nicht leisten`,
		`sprengt .*budget`,
		`nicht so viel (geld )?ausgeben`,
	)
)

// BuyIntentWords signal a concrete purchase decision.
var BuyIntentWords = []string{
	"kaufen", "kaufe", "bestellen", "bestelle", "nehme ich",
	"nehmen wir", "warenkorb", "her damit", "möchte ich haben",
	"will ich haben",
}

// CheapestPatterns capture lowest-price and budget-ceiling requests.
var CheapestPatterns = compile(
	`günstigste`,
	`billigste`,
	`am günstigsten`,
	`am billigsten`,
	`preiswerteste`,
	`unter \d+`,
	`bis \d+ (euro|€)`,
	`höchstens \d+`,
	`maximal \d+`,
)

// Ambiguity vocabulary for the clarification rules.
var (
	// GenericBoardTerm asked for alone is ambiguous between several sports.
	GenericBoardTerm = "board"

	// SpecificBoardTerms disambiguate the generic term.
	SpecificBoardTerms = []string{
		"snowboard", "splitboard", "skateboard", "longboard",
		"surfboard", "wakeboard", "kiteboard",
	}

	VagueWords = []string{"cool", "cooles", "coole", "etwas", "irgendwas"}

	DontKnowPatterns = compile(
		`weiß nicht`,
		`keine ahnung`,
		`bin mir nicht sicher`,
	)
)

// FreeClaimWords are the "free of charge" vocabulary checked by the
// guardrail against candidate prices.
var FreeClaimWords = []string{
	"kostenlos", "gratis", "umsonst", "geschenkt", "kostenfrei", "free",
}

// UnknownWords mark category placeholders in reply text.
var UnknownWords = []string{"unbekannt", "unknown"}

// UnknownCategoryPlaceholder is the literal placeholder upstream stages use
// for products without a resolvable category.
const UnknownCategoryPlaceholder = "unbekannt"

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}

// ContainsAny reports whether text contains at least one of the supplied
// terms as a substring.
func ContainsAny(text string, terms []string) bool {
	return FirstMatch(text, terms) != ""
}

// FirstMatch returns the first term contained in text, or "".
func FirstMatch(text string, terms []string) string {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if contains(text, term) {
			return term
		}
	}
	return ""
}

// MatchesAny reports whether any compiled pattern matches the text.
func MatchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func contains(text, term string) bool {
	return strings.Contains(text, term)
}
