package keywords

import (
	"strings"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/lexicon"
	"sales-advisor/engine/internal/textnorm"
)

// minTokenLength excludes single-character noise from the statistics.
const minTokenLength = 2

// KeywordStat is the per-word aggregate over the whole catalog. Count is
// the number of distinct products containing the word in any field; the
// presence flags record which fields the word appeared in for any product.
type KeywordStat struct {
	Word          string `json:"word"`
	Count         int    `json:"count"`
	InTitle       bool   `json:"in_title"`
	InDescription bool   `json:"in_description"`
	InTags        bool   `json:"in_tags"`
	InCategory    bool   `json:"in_category"`
}

// Analysis is the analyzer output. Keywords are unsorted; ranking belongs
// to the hint builder.
type Analysis struct {
	TotalProducts int           `json:"total_products"`
	Keywords      []KeywordStat `json:"keywords"`
}

// fieldTokens holds the distinct qualifying tokens per product field.
type fieldTokens struct {
	title       map[string]struct{}
	description map[string]struct{}
	tags        map[string]struct{}
	category    map[string]struct{}
}

// Analyze scans every candidate and produces per-word frequency statistics.
// Counting is per product, not per occurrence.
func Analyze(products []catalog.Product) Analysis {
	if len(products) == 0 {
		return Analysis{TotalProducts: 0, Keywords: nil}
	}

	stats := make(map[string]*KeywordStat)
	for _, product := range products {
		fields := tokenizeProduct(product)

		distinct := make(map[string]struct{})
		merge(distinct, fields.title)
		merge(distinct, fields.description)
		merge(distinct, fields.tags)
		merge(distinct, fields.category)

		for word := range distinct {
			stat, ok := stats[word]
			if !ok {
				stat = &KeywordStat{Word: word}
				stats[word] = stat
			}
			stat.Count++
			if _, ok := fields.title[word]; ok {
				stat.InTitle = true
			}
			if _, ok := fields.description[word]; ok {
				stat.InDescription = true
			}
			if _, ok := fields.tags[word]; ok {
				stat.InTags = true
			}
			if _, ok := fields.category[word]; ok {
				stat.InCategory = true
			}
		}
	}

	keywords := make([]KeywordStat, 0, len(stats))
	for _, stat := range stats {
		keywords = append(keywords, *stat)
	}
	return Analysis{TotalProducts: len(products), Keywords: keywords}
}

func tokenizeProduct(product catalog.Product) fieldTokens {
	return fieldTokens{
		title:       qualifyingTokens(product.Title),
		description: qualifyingTokens(product.Description),
		tags:        qualifyingTokens(strings.Join(product.Tags, " ")),
		category:    qualifyingTokens(product.Category),
	}
}

func qualifyingTokens(text string) map[string]struct{} {
	tokens := textnorm.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) < minTokenLength {
			continue
		}
		if lexicon.IsStopWord(token) {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

func merge(dst map[string]struct{}, src map[string]struct{}) {
	for word := range src {
		dst[word] = struct{}{}
	}
}
