package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^a-z0-9äöüß€\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// maxRepairPasses bounds the re-decode loop for nested mojibake.
const maxRepairPasses = 3

// mojibakeMarkers are byte sequences that only appear when UTF-8 text has
// been decoded as Latin-1 at least once.
var mojibakeMarkers = []string{"Ã", "Â", "â‚¬"}

// literalRepairs covers sequences the re-decode pass cannot recover, most
// importantly the euro sign whose middle byte is unmappable in Latin-1.
var literalRepairs = [][2]string{
	{"â‚¬", "€"},
	{"â€š", "‚"},
	{"Ã¤", "ä"},
	{"Ã¶", "ö"},
	{"Ã¼", "ü"},
	{"ÃŸ", "ß"},
	{"Ã„", "Ä"},
	{"Ã–", "Ö"},
	{"Ãœ", "Ü"},
}

// Normalize lowercases the input, repairs misdecoded UTF-8, replaces every
// character outside [a-z0-9äöüß€\s] with a space and collapses whitespace.
// Empty input yields an empty string.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	repaired := RepairEncoding(raw)
	lower := strings.ToLower(repaired)
	lower = nonWordPattern.ReplaceAllString(lower, " ")
	lower = whitespacePattern.ReplaceAllString(lower, " ")
	return strings.TrimSpace(lower)
}

// RepairEncoding reverses UTF-8 text that was decoded as Latin-1, applying
// up to maxRepairPasses re-decodes for nested corruption, then fixes the
// remaining known literal sequences.
func RepairEncoding(s string) string {
	for pass := 0; pass < maxRepairPasses && looksMisdecoded(s); pass++ {
		decoded, ok := redecodeLatin1(s)
		if !ok {
			break
		}
		s = decoded
	}
	for _, pair := range literalRepairs {
		s = strings.ReplaceAll(s, pair[0], pair[1])
	}
	return s
}

// Tokenize splits the normalized form of the input into whitespace-separated
// tokens. Already-normalized input passes through Normalize unchanged.
func Tokenize(raw string) []string {
	normalized := Normalize(raw)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// TokenSet returns the distinct tokens of the input keyed for membership
// checks.
func TokenSet(raw string) map[string]struct{} {
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

func looksMisdecoded(s string) bool {
	for _, marker := range mojibakeMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// redecodeLatin1 maps each rune back to its Latin-1 byte and re-reads the
// result as UTF-8. Fails when a rune is outside Latin-1 or the byte stream
// is not valid UTF-8, in which case the input is returned untouched.
func redecodeLatin1(s string) (string, bool) {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return "", false
		}
		buf = append(buf, byte(r))
	}
	if !utf8.Valid(buf) {
		return "", false
	}
	return string(buf), true
}
