package store

import (
	"reflect"
	"testing"
)

func TestDecisionLogJSONColumns(t *testing.T) {
	var log DecisionLog

	log.SetSalesNotes([]string{"PRICE_OBJECTION", "DELIVERY_QUESTION"})
	if got := log.SalesNotes(); !reflect.DeepEqual(got, []string{"PRICE_OBJECTION", "DELIVERY_QUESTION"}) {
		t.Fatalf("notes round trip failed: %v", got)
	}

	log.SetSalesNotes(nil)
	if log.SalesNotesJSON != "[]" {
		t.Fatalf("nil notes must serialize as empty array, got %q", log.SalesNotesJSON)
	}
	if got := log.SalesNotes(); got != nil {
		t.Fatalf("expected nil for empty array, got %v", got)
	}

	log.DebugFlagsJSON = "not json"
	if got := log.DebugFlags(); got != nil {
		t.Fatalf("corrupt column must decode to nil, got %v", got)
	}
}

func TestDecisionLogSetViolations(t *testing.T) {
	var log DecisionLog

	log.SetViolations(nil)
	if log.ViolationsJSON != "[]" {
		t.Fatalf("expected empty array, got %q", log.ViolationsJSON)
	}

	log.SetViolations([]map[string]string{{"kind": "freeWithoutPrice"}})
	if log.ViolationsJSON != `[{"kind":"freeWithoutPrice"}]` {
		t.Fatalf("unexpected payload %q", log.ViolationsJSON)
	}
}

func TestHintRunTopHints(t *testing.T) {
	var run HintRun
	run.SetTopHints([]string{"snowboard", "helm"})
	if got := run.TopHints(); !reflect.DeepEqual(got, []string{"snowboard", "helm"}) {
		t.Fatalf("top hints round trip failed: %v", got)
	}
}
