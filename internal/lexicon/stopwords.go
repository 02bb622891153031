package lexicon

import "strings"

// stopWords is the single shared stop-word list for the keyword analyzer,
// the hint builder and the decision rules. German function words plus the
// English fillers that show up in mixed catalog data.
var stopWords = map[string]struct{}{
	"aber": {}, "als": {}, "am": {}, "an": {}, "auch": {}, "auf": {},
	"aus": {}, "bei": {}, "bin": {}, "bis": {}, "bitte": {}, "da": {},
	"damit": {}, "dann": {}, "das": {}, "dass": {}, "dein": {}, "dem": {},
	"den": {}, "der": {}, "des": {}, "die": {}, "dir": {}, "doch": {},
	"dort": {}, "du": {}, "ein": {}, "eine": {}, "einem": {}, "einen": {},
	"einer": {}, "er": {}, "es": {}, "für": {}, "gegen": {}, "hab": {},
	"habe": {}, "haben": {}, "hat": {}, "hier": {}, "ich": {}, "ihr": {},
	"im": {}, "in": {}, "ist": {}, "ja": {}, "kann": {}, "kein": {},
	"keine": {}, "mal": {}, "man": {}, "mein": {}, "mich": {}, "mir": {},
	"mit": {}, "nach": {}, "nein": {}, "nicht": {}, "noch": {}, "nur": {},
	"oder": {}, "ohne": {}, "schon": {}, "sehr": {}, "sein": {}, "sich": {},
	"sie": {}, "sind": {}, "so": {}, "über": {}, "um": {}, "und": {},
	"uns": {}, "unter": {}, "viel": {}, "vom": {}, "von": {}, "vor": {},
	"war": {}, "was": {}, "wenn": {}, "werden": {}, "wie": {}, "wir": {},
	"wird": {}, "wo": {}, "zu": {}, "zum": {}, "zur": {},
	"a": {}, "and": {}, "at": {}, "for": {}, "of": {}, "the": {},
	"this": {}, "with": {},
}

// IsStopWord reports whether the supplied token is on the shared stop-word
// list. Matching is case-insensitive.
func IsStopWord(token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return true
	}
	_, ok := stopWords[token]
	return ok
}

// StopWordCount exposes the size of the shared list (primarily for tests
// guarding against accidental truncation).
func StopWordCount() int {
	return len(stopWords)
}
