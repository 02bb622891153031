package store

import (
	"encoding/json"
	"strings"
	"time"
)

// DecisionLog persists one pipeline run for operator tooling and export.
type DecisionLog struct {
	ID                    uint   `gorm:"primaryKey"`
	RequestID             string `gorm:"size:64;uniqueIndex"`
	Utterance             string `gorm:"type:text"`
	UtteranceNormalized   string `gorm:"type:text"`
	Intent                string `gorm:"size:32"`
	PrimaryAction         string `gorm:"size:48;index"`
	SalesNotesJSON        string `gorm:"type:text"`
	DebugFlagsJSON        string `gorm:"type:text"`
	CTA                   string `gorm:"size:32"`
	ClarificationQuestion string `gorm:"type:text"`
	ObjectionHandled      bool
	CandidateCount        int
	EligibleCount         int
	SoftBadCount          int
	StrictBadCount        int
	Reply                 string `gorm:"type:text"`
	GuardrailViolation    bool   `gorm:"index"`
	ViolationsJSON        string `gorm:"type:text"`
	ProcessingTimeMs      int64
	CreatedAt             time.Time `gorm:"autoCreateTime;index"`
}

// SetSalesNotes stores the ordered note list as JSON.
func (d *DecisionLog) SetSalesNotes(notes []string) {
	d.SalesNotesJSON = marshalStrings(notes)
}

// SalesNotes returns the decoded note list.
func (d *DecisionLog) SalesNotes() []string {
	return unmarshalStrings(d.SalesNotesJSON)
}

// SetDebugFlags stores the debug flag list as JSON.
func (d *DecisionLog) SetDebugFlags(flags []string) {
	d.DebugFlagsJSON = marshalStrings(flags)
}

// DebugFlags returns the decoded debug flag list.
func (d *DecisionLog) DebugFlags() []string {
	return unmarshalStrings(d.DebugFlagsJSON)
}

// SetViolations stores the guardrail findings as JSON.
func (d *DecisionLog) SetViolations(violations any) {
	if violations == nil {
		d.ViolationsJSON = "[]"
		return
	}
	payload, err := json.Marshal(violations)
	if err != nil {
		d.ViolationsJSON = "[]"
		return
	}
	d.ViolationsJSON = string(payload)
}

// HintRun records one offline hint-generation pass over a catalog.
type HintRun struct {
	ID           uint   `gorm:"primaryKey"`
	Source       string `gorm:"size:255"`
	ProductCount int
	HintCount    int
	TopHintsJSON string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
}

// SetTopHints stores the leading hint words as JSON.
func (h *HintRun) SetTopHints(words []string) {
	h.TopHintsJSON = marshalStrings(words)
}

// TopHints returns the decoded hint words.
func (h *HintRun) TopHints() []string {
	return unmarshalStrings(h.TopHintsJSON)
}

func marshalStrings(values []string) string {
	if values == nil {
		return "[]"
	}
	payload, _ := json.Marshal(values)
	return string(payload)
}

func unmarshalStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
