package api

import (
	"math"
	"time"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/decision"
	"sales-advisor/engine/internal/guardrail"
	"sales-advisor/engine/internal/pipeline"
	"sales-advisor/engine/internal/store"
)

// ProductDTO is the wire form of a candidate product. Price is a pointer so
// a missing price survives the JSON round trip and reaches the quality
// classifier as NaN instead of a silent zero.
type ProductDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// ToModel converts the DTO into the canonical product.
func (p ProductDTO) ToModel() catalog.Product {
	price := math.NaN()
	if p.Price != nil {
		price = *p.Price
	}
	return catalog.Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       price,
		Category:    p.Category,
		Tags:        p.Tags,
	}
}

func toProducts(dtos []ProductDTO) []catalog.Product {
	products := make([]catalog.Product, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, dto.ToModel())
	}
	return products
}

// DecideRequest is the decision endpoint payload. Reply is optional; when
// present the guardrail audits it in the same run.
type DecideRequest struct {
	Text         string               `json:"text"`
	Intent       string               `json:"intent"`
	Candidates   []ProductDTO         `json:"candidates"`
	Constraints  decision.Constraints `json:"constraints"`
	UnknownTerms []string             `json:"unknown_terms"`
	Reply        string               `json:"reply"`
}

// DecideResponse mirrors the assembled pipeline result.
type DecideResponse struct {
	RequestID             string                `json:"request_id"`
	PrimaryAction         string                `json:"primary_action"`
	SalesNotes            []string              `json:"sales_notes"`
	DebugSalesFlags       []string              `json:"debug_sales_flags"`
	CTA                   string                `json:"cta"`
	ClarificationQuestion string                `json:"clarification_question,omitempty"`
	CrossSellProducts     []catalog.Product     `json:"cross_sell_products,omitempty"`
	UpsellProducts        []catalog.Product     `json:"upsell_products,omitempty"`
	ObjectionHandled      bool                  `json:"objection_handled"`
	Quality               catalog.Report        `json:"quality"`
	GuardrailViolations   []guardrail.Violation `json:"guardrail_violations,omitempty"`
	GuardrailViolation    bool                  `json:"guardrail_violation"`
	ProcessingTimeMs      int64                 `json:"processing_time_ms"`
}

// FromResult converts a pipeline result into the response DTO.
func FromResult(result pipeline.Result) DecideResponse {
	return DecideResponse{
		RequestID:             result.RequestID,
		PrimaryAction:         string(result.Decision.PrimaryAction),
		SalesNotes:            result.Decision.SalesNotes,
		DebugSalesFlags:       result.Decision.DebugSalesFlags,
		CTA:                   string(result.Policy.CTA),
		ClarificationQuestion: result.Policy.ClarificationQuestion,
		CrossSellProducts:     result.Policy.CrossSellProducts,
		UpsellProducts:        result.Policy.UpsellProducts,
		ObjectionHandled:      result.Policy.ObjectionHandled,
		Quality:               result.Quality,
		GuardrailViolations:   result.Violations,
		GuardrailViolation:    result.GuardrailViolation,
		ProcessingTimeMs:      result.ProcessingTimeMs,
	}
}

// GuardrailRequest audits a rendered reply against a candidate list.
type GuardrailRequest struct {
	Reply      string       `json:"reply"`
	Candidates []ProductDTO `json:"candidates"`
}

// GuardrailResponse carries the audit findings.
type GuardrailResponse struct {
	Violations []guardrail.Violation `json:"violations"`
	Violated   bool                  `json:"violated"`
}

// HintsRequest runs the offline hint builder over a submitted catalog.
type HintsRequest struct {
	Products   []ProductDTO `json:"products"`
	KnownTerms []string     `json:"known_terms"`
	Source     string       `json:"source"`
}

// QualityRequest classifies a submitted catalog.
type QualityRequest struct {
	Products []ProductDTO `json:"products"`
}

// DecisionLogDTO is the API representation of a persisted decision log.
type DecisionLogDTO struct {
	ID                    uint      `json:"id"`
	RequestID             string    `json:"request_id"`
	Utterance             string    `json:"utterance"`
	Intent                string    `json:"intent"`
	PrimaryAction         string    `json:"primary_action"`
	SalesNotes            []string  `json:"sales_notes"`
	DebugSalesFlags       []string  `json:"debug_sales_flags"`
	CTA                   string    `json:"cta"`
	ClarificationQuestion string    `json:"clarification_question,omitempty"`
	ObjectionHandled      bool      `json:"objection_handled"`
	CandidateCount        int       `json:"candidate_count"`
	EligibleCount         int       `json:"eligible_count"`
	SoftBadCount          int       `json:"soft_bad_count"`
	StrictBadCount        int       `json:"strict_bad_count"`
	GuardrailViolation    bool      `json:"guardrail_violation"`
	ProcessingTimeMs      int64     `json:"processing_time_ms"`
	CreatedAt             time.Time `json:"created_at"`
}

// DecisionLogsResponse is the paginated listing payload.
type DecisionLogsResponse struct {
	Items []DecisionLogDTO `json:"items"`
	Total int64            `json:"total"`
}

// FromModel converts a store.DecisionLog into the DTO representation.
func FromModel(log store.DecisionLog) DecisionLogDTO {
	return DecisionLogDTO{
		ID:                    log.ID,
		RequestID:             log.RequestID,
		Utterance:             log.Utterance,
		Intent:                log.Intent,
		PrimaryAction:         log.PrimaryAction,
		SalesNotes:            log.SalesNotes(),
		DebugSalesFlags:       log.DebugFlags(),
		CTA:                   log.CTA,
		ClarificationQuestion: log.ClarificationQuestion,
		ObjectionHandled:      log.ObjectionHandled,
		CandidateCount:        log.CandidateCount,
		EligibleCount:         log.EligibleCount,
		SoftBadCount:          log.SoftBadCount,
		StrictBadCount:        log.StrictBadCount,
		GuardrailViolation:    log.GuardrailViolation,
		ProcessingTimeMs:      log.ProcessingTimeMs,
		CreatedAt:             log.CreatedAt,
	}
}
