package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Quality is the completeness tier assigned by Classify.
type Quality string

const (
	QualityEligible  Quality = "eligible"
	QualitySoftBad   Quality = "soft-bad"
	QualityStrictBad Quality = "strict-bad"
)

// Product is the canonical candidate record. Upstream payloads are funneled
// through FromRaw so downstream stages never see loosely-typed fields. The
// candidate list is borrowed per request; stages may annotate Quality but
// must not retain the slice.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Quality     Quality  `json:"quality,omitempty"`
}

// HasValidPrice reports whether the price is a finite number. Zero and
// negative prices are finite but flagged separately by the classifier.
func (p Product) HasValidPrice() bool {
	return !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0)
}

// FromRaw converts a loosely-typed record into a canonical Product. Missing
// fields coalesce to their zero form; an absent or unparseable price becomes
// NaN so the quality classifier can flag it.
func FromRaw(raw map[string]any) Product {
	product := Product{
		ID:          stringField(raw, "id"),
		Title:       stringField(raw, "title"),
		Description: stringField(raw, "description"),
		Category:    stringField(raw, "category"),
		Price:       priceField(raw, "price"),
		Tags:        tagsField(raw, "tags"),
	}
	return product
}

// FromRawList maps FromRaw over a list of records, skipping non-object
// entries.
func FromRawList(rows []any) []Product {
	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		record, ok := row.(map[string]any)
		if !ok {
			continue
		}
		products = append(products, FromRaw(record))
	}
	return products
}

func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func priceField(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return math.NaN()
		}
		return parsed
	default:
		return math.NaN()
	}
}

func tagsField(raw map[string]any, key string) []string {
	values, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(values))
	for _, value := range values {
		if tag, ok := value.(string); ok {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
