package decision

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/lexicon"
	"sales-advisor/engine/internal/textnorm"
)

// PatternSet holds the curated phrasing patterns the compound detectors
// fall back to. The built-in defaults can be extended from a JSON file so
// new phrasings ship without a code change.
type PatternSet struct {
	Delivery       []*regexp.Regexp
	Returns        []*regexp.Regexp
	PriceObjection []*regexp.Regexp
}

// patternFile is the JSON shape for pattern overrides.
type patternFile struct {
	Delivery       []string `json:"delivery"`
	Returns        []string `json:"returns"`
	PriceObjection []string `json:"price_objection"`
}

// DefaultPatternSet returns the built-in curated patterns.
func DefaultPatternSet() *PatternSet {
	return &PatternSet{
		Delivery:       lexicon.DeliveryPatterns,
		Returns:        lexicon.ReturnsPatterns,
		PriceObjection: lexicon.PriceObjectionPatterns,
	}
}

// LoadPatternSet merges additional patterns from the provided JSON file on
// top of the defaults. An empty path returns the defaults unchanged.
func LoadPatternSet(path string) (*PatternSet, error) {
	set := DefaultPatternSet()
	if path == "" {
		return set, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	var raw patternFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal pattern file: %w", err)
	}
	if set.Delivery, err = appendPatterns(set.Delivery, raw.Delivery); err != nil {
		return nil, err
	}
	if set.Returns, err = appendPatterns(set.Returns, raw.Returns); err != nil {
		return nil, err
	}
	if set.PriceObjection, err = appendPatterns(set.PriceObjection, raw.PriceObjection); err != nil {
		return nil, err
	}
	return set, nil
}

func appendPatterns(base []*regexp.Regexp, raw []string) ([]*regexp.Regexp, error) {
	merged := append([]*regexp.Regexp{}, base...)
	for _, pattern := range raw {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		merged = append(merged, compiled)
	}
	return merged, nil
}

// Engine evaluates the priority-ordered rule list. Evaluation is pure and
// deterministic; the engine never panics on missing optional fields.
type Engine struct {
	rules []rule
}

// NewEngine constructs an engine with the built-in patterns.
func NewEngine() *Engine {
	return NewEngineWithPatterns(DefaultPatternSet())
}

// NewEngineWithPatterns constructs an engine over the supplied pattern set.
func NewEngineWithPatterns(patterns *PatternSet) *Engine {
	if patterns == nil {
		patterns = DefaultPatternSet()
	}
	return &Engine{rules: defaultRules(patterns)}
}

// NewEngineFromFile constructs an engine with patterns extended from the
// provided JSON file.
func NewEngineFromFile(path string) (*Engine, error) {
	patterns, err := LoadPatternSet(path)
	if err != nil {
		return nil, err
	}
	return NewEngineWithPatterns(patterns), nil
}

// Evaluate maps the input to exactly one primary action. Rules fire top to
// bottom; a non-override rule only writes the action slot while it is
// empty. The price-objection rule overrides a previously-set action unless
// that action is a service question, in which case the objection survives
// as a note only.
func (e *Engine) Evaluate(in Input) Output {
	in = withDefaults(in)

	var out Output
	for _, r := range e.rules {
		note, flags, ok := r.detect(in)
		if !ok {
			continue
		}

		switch {
		case out.PrimaryAction == "":
			out.PrimaryAction = r.action
			out.appendNote(note)
		case r.override:
			if _, shielded := r.shielded[out.PrimaryAction]; shielded {
				out.appendNote(note)
				out.appendFlag(FlagObjectionAfterService)
			} else {
				out.PrimaryAction = r.action
				out.appendNote(note)
			}
		default:
			// Lower-priority rules never fire once an action is set.
			continue
		}

		out.appendFlag("rule:" + r.name)
		for _, flag := range flags {
			out.appendFlag(flag)
		}
	}

	if out.PrimaryAction == "" {
		// Unreachable while the default rule is last; kept as the
		// documented fallback guarantee.
		out.PrimaryAction = ActionShowProducts
		out.appendNote(NoteDefaultShowProducts)
	}
	return out
}

// withDefaults coalesces missing optional fields so the detectors can run
// without nil checks.
func withDefaults(in Input) Input {
	if in.Text == "" {
		in.Text = textnorm.Normalize(in.RawText)
	}
	if in.Intent == "" {
		in.Intent = IntentUnknown
	}
	if in.Candidates == nil {
		in.Candidates = []catalog.Product{}
	}
	if in.UnknownTerms == nil {
		in.UnknownTerms = []string{}
	}
	return in
}
