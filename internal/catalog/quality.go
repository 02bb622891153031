package catalog

import (
	"strings"

	"sales-advisor/engine/internal/lexicon"
)

// Reason identifies why a product fell short of a quality tier.
type Reason string

const (
	ReasonMissingTitle       Reason = "missing_title"
	ReasonMissingID          Reason = "missing_id"
	ReasonInvalidPrice       Reason = "invalid_price"
	ReasonNonPositivePrice   Reason = "non_positive_price"
	ReasonMissingCategory    Reason = "missing_category"
	ReasonMissingDescription Reason = "missing_description"
)

// strictReasons force the strict-bad tier regardless of other fields.
var strictReasons = map[Reason]struct{}{
	ReasonMissingTitle: {},
	ReasonMissingID:    {},
	ReasonInvalidPrice: {},
}

// Report summarizes the quality classification of a candidate list.
type Report struct {
	Total     int                 `json:"total"`
	Eligible  int                 `json:"eligible"`
	SoftBad   int                 `json:"soft_bad"`
	StrictBad int                 `json:"strict_bad"`
	Reasons   map[Reason][]string `json:"reasons"`
	Examples  map[Reason]string   `json:"examples"`
}

// Classify tiers every candidate and annotates it in place. Strict reasons
// (blank title, blank id, non-finite price) dominate soft reasons
// (non-positive price, placeholder category, blank description); soft
// reasons found on a strict-bad product are still recorded in the report.
func Classify(products []Product) Report {
	report := Report{
		Total:    len(products),
		Reasons:  make(map[Reason][]string),
		Examples: make(map[Reason]string),
	}

	for i := range products {
		product := &products[i]
		reasons := productReasons(*product)

		tier := QualityEligible
		for _, reason := range reasons {
			if _, strict := strictReasons[reason]; strict {
				tier = QualityStrictBad
				break
			}
			tier = QualitySoftBad
		}

		product.Quality = tier
		switch tier {
		case QualityStrictBad:
			report.StrictBad++
		case QualitySoftBad:
			report.SoftBad++
		default:
			report.Eligible++
		}

		for _, reason := range reasons {
			report.Reasons[reason] = append(report.Reasons[reason], product.ID)
			if _, seen := report.Examples[reason]; !seen {
				report.Examples[reason] = product.ID
			}
		}
	}

	return report
}

// productReasons lists every applicable reason, strict ones first so the
// tier loop can short-circuit on the dominant class.
func productReasons(p Product) []Reason {
	var reasons []Reason
	if strings.TrimSpace(p.Title) == "" {
		reasons = append(reasons, ReasonMissingTitle)
	}
	if strings.TrimSpace(p.ID) == "" {
		reasons = append(reasons, ReasonMissingID)
	}
	if !p.HasValidPrice() {
		reasons = append(reasons, ReasonInvalidPrice)
	} else if p.Price <= 0 {
		reasons = append(reasons, ReasonNonPositivePrice)
	}
	if missingCategory(p.Category) {
		reasons = append(reasons, ReasonMissingCategory)
	}
	if strings.TrimSpace(p.Description) == "" {
		reasons = append(reasons, ReasonMissingDescription)
	}
	return reasons
}

func missingCategory(category string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(category))
	if trimmed == "" || trimmed == lexicon.UnknownCategoryPlaceholder {
		return true
	}
	for _, word := range lexicon.UnknownWords {
		if trimmed == word {
			return true
		}
	}
	return false
}
