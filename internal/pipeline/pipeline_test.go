package pipeline

import (
	"math"
	"reflect"
	"testing"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/decision"
	"sales-advisor/engine/internal/guardrail"
	"sales-advisor/engine/internal/policy"
)

// rendererFunc adapts a plain function to the Renderer interface.
type rendererFunc func(ctx *Context) string

func (f rendererFunc) Render(ctx *Context) string { return f(ctx) }

// captureRecorder collects stage events for assertions.
type captureRecorder struct {
	stages []string
}

func (r *captureRecorder) Record(stage, _ string, _ map[string]any) {
	r.stages = append(r.stages, stage)
}

func testCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Title: "Snowboard Pro", Description: "Piste", Price: 299.90, Category: "snowboards"},
		{ID: "p2", Title: "Snowboard Basic", Description: "Einsteiger", Price: 0, Category: "snowboards"},
	}
}

func TestRunFullPipeline(t *testing.T) {
	recorder := &captureRecorder{}
	p := New(decision.NewEngine(), recorder)

	renderer := rendererFunc(func(*Context) string {
		return "Kein Problem, das Snowboard Basic ist quasi kostenlos!"
	})
	result := p.Run(decision.Input{
		RawText:    "Das ist mir zu teuer.",
		Candidates: testCatalog(),
	}, renderer)

	if result.RequestID == "" {
		t.Fatal("expected a request id")
	}
	if result.Decision.PrimaryAction != decision.ActionHandleObjection {
		t.Fatalf("expected %q got %q", decision.ActionHandleObjection, result.Decision.PrimaryAction)
	}
	if !result.Policy.ObjectionHandled {
		t.Fatal("expected objection handled")
	}
	if result.Quality.Total != 2 || result.Quality.SoftBad != 1 {
		t.Fatalf("unexpected quality report %+v", result.Quality)
	}
	if !result.GuardrailViolation {
		t.Fatalf("expected guardrail violation, got %v", result.Violations)
	}
	if len(result.Violations) == 0 || result.Violations[0].Kind != guardrail.KindFreeWithoutPrice {
		t.Fatalf("expected freeWithoutPrice violation, got %v", result.Violations)
	}

	expectedStages := []string{"quality", "decision", "policy", "render", "guardrail"}
	if !reflect.DeepEqual(recorder.stages, expectedStages) {
		t.Fatalf("expected stages %v got %v", expectedStages, recorder.stages)
	}
	if len(result.Events) != len(expectedStages) {
		t.Fatalf("expected %d events got %d", len(expectedStages), len(result.Events))
	}
}

func TestRunWithoutRenderer(t *testing.T) {
	recorder := &captureRecorder{}
	p := New(decision.NewEngine(), recorder)

	result := p.Run(decision.Input{RawText: "Hallo"}, nil)

	if result.Reply != "" {
		t.Fatalf("expected empty reply, got %q", result.Reply)
	}
	if result.GuardrailViolation || result.Violations != nil {
		t.Fatalf("no reply means no audit, got %v", result.Violations)
	}
	for _, stage := range recorder.stages {
		if stage == "render" || stage == "guardrail" {
			t.Fatalf("stage %q must be skipped without a renderer", stage)
		}
	}
	if result.Decision.PrimaryAction == "" {
		t.Fatal("expected a decision even for trivial input")
	}
}

func TestRunDistinctRequestIDs(t *testing.T) {
	p := New(nil, &captureRecorder{})
	first := p.Run(decision.Input{RawText: "Hallo"}, nil)
	second := p.Run(decision.Input{RawText: "Hallo"}, nil)
	if first.RequestID == second.RequestID {
		t.Fatalf("request ids must be unique, got %q twice", first.RequestID)
	}
}

func TestRunRendererSeesDecision(t *testing.T) {
	p := New(decision.NewEngine(), &captureRecorder{})

	var seenAction decision.Action
	var seenCTA policy.CTA
	renderer := rendererFunc(func(ctx *Context) string {
		seenAction = ctx.Decision.PrimaryAction
		seenCTA = ctx.Policy.CTA
		return "ok"
	})
	p.Run(decision.Input{RawText: "Ich will ein Board.", Candidates: testCatalog()}, renderer)

	if seenAction != decision.ActionAskClarification {
		t.Fatalf("renderer saw action %q", seenAction)
	}
	if seenCTA != policy.CTAContinueQuestion {
		t.Fatalf("renderer saw cta %q", seenCTA)
	}
}

func TestValidateReplyStandalone(t *testing.T) {
	p := New(nil, &captureRecorder{})
	candidates := []catalog.Product{
		{ID: "p1", Title: "Snowboard", Description: "x", Price: math.NaN(), Category: "snowboards"},
	}
	violations := p.ValidateReply("Das gibt es gratis dazu.", candidates)
	if len(violations) != 1 || violations[0].Kind != guardrail.KindFreeWithoutPrice {
		t.Fatalf("expected freeWithoutPrice violation, got %v", violations)
	}
	if p.ValidateReply("", candidates) != nil {
		t.Fatal("empty reply must yield no violations")
	}
}
