package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/decision"
	"sales-advisor/engine/internal/guardrail"
	"sales-advisor/engine/internal/policy"
	"sales-advisor/engine/internal/util"
)

// Event is one structured entry of the per-request log. Replaces the
// side-channel debug printing the rules would otherwise interleave.
type Event struct {
	Stage   string         `json:"stage"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
	At      time.Time      `json:"at"`
}

// Recorder receives structured stage events. The default recorder mirrors
// each event to logrus and keeps it on the request context so tests can
// assert on events instead of log strings.
type Recorder interface {
	Record(stage, message string, fields map[string]any)
}

// Renderer produces the user-facing reply from the decision and policy
// output. Rendering is an external concern; the pipeline only needs the
// final text to audit it.
type Renderer interface {
	Render(ctx *Context) string
}

// Context is the per-request state threaded through the stages. Each
// request gets its own instance; there is no shared mutable state.
type Context struct {
	RequestID string
	Input     decision.Input

	Quality   *catalog.Report
	Decision  *decision.Output
	Policy    *policy.Output
	Reply     string
	Durations map[string]int64

	// Violations is the single source of truth for guardrail findings;
	// result assembly reads it exactly once after the guardrail stage.
	Violations         []guardrail.Violation
	GuardrailViolation bool

	Events   []Event
	recorder Recorder
}

// Result is the assembled pipeline output.
type Result struct {
	RequestID          string                `json:"request_id"`
	Decision           decision.Output       `json:"decision"`
	Policy             policy.Output         `json:"policy"`
	Quality            catalog.Report        `json:"quality"`
	Reply              string                `json:"reply,omitempty"`
	Violations         []guardrail.Violation `json:"guardrail_violations,omitempty"`
	GuardrailViolation bool                  `json:"guardrail_violation"`
	ProcessingTimeMs   int64                 `json:"processing_time_ms"`
	Events             []Event               `json:"-"`
}

// Pipeline runs the decision stages in their fixed order.
type Pipeline struct {
	engine   *decision.Engine
	recorder Recorder
}

// New constructs a pipeline over the supplied engine. A nil recorder falls
// back to the logrus-backed default.
func New(engine *decision.Engine, recorder Recorder) *Pipeline {
	if engine == nil {
		engine = decision.NewEngine()
	}
	if recorder == nil {
		recorder = logRecorder{}
	}
	return &Pipeline{engine: engine, recorder: recorder}
}

// Run processes one request to completion: quality classification, rule
// evaluation, policy mapping, optional rendering, guardrail validation.
// Never returns an error; every input yields a decision.
func (p *Pipeline) Run(in decision.Input, renderer Renderer) Result {
	timer := util.StartTimer()
	ctx := &Context{
		RequestID: uuid.NewString(),
		Input:     in,
		Durations: make(map[string]int64),
		recorder:  p.recorder,
	}

	p.classifyQuality(ctx)
	p.decide(ctx)
	p.mapPolicy(ctx)
	p.render(ctx, renderer)
	p.validateReply(ctx)

	result := Result{
		RequestID:          ctx.RequestID,
		Decision:           *ctx.Decision,
		Policy:             *ctx.Policy,
		Reply:              ctx.Reply,
		Violations:         ctx.Violations,
		GuardrailViolation: ctx.GuardrailViolation,
		ProcessingTimeMs:   timer.ElapsedMs(),
		Events:             ctx.Events,
	}
	if ctx.Quality != nil {
		result.Quality = *ctx.Quality
	}
	return result
}

// ValidateReply audits an already-rendered reply against a candidate list
// without running the decision stages. Used by callers that render
// elsewhere and come back for the audit.
func (p *Pipeline) ValidateReply(reply string, candidates []catalog.Product) []guardrail.Violation {
	return guardrail.Validate(reply, candidates)
}

func (p *Pipeline) classifyQuality(ctx *Context) {
	start := util.StartTimer()
	report := catalog.Classify(ctx.Input.Candidates)
	ctx.Quality = &report
	ctx.Durations["quality"] = start.ElapsedMs()
	ctx.record("quality", "candidates classified", map[string]any{
		"total":      report.Total,
		"eligible":   report.Eligible,
		"soft_bad":   report.SoftBad,
		"strict_bad": report.StrictBad,
	})
}

func (p *Pipeline) decide(ctx *Context) {
	start := util.StartTimer()
	out := p.engine.Evaluate(ctx.Input)
	ctx.Decision = &out
	ctx.Durations["decision"] = start.ElapsedMs()
	ctx.record("decision", "rules evaluated", map[string]any{
		"primary_action": string(out.PrimaryAction),
		"notes":          out.SalesNotes,
		"flags":          out.DebugSalesFlags,
	})
}

func (p *Pipeline) mapPolicy(ctx *Context) {
	start := util.StartTimer()
	out := policy.Map(*ctx.Decision, ctx.Input.Constraints, ctx.Input.Candidates)
	ctx.Policy = &out
	ctx.Durations["policy"] = start.ElapsedMs()
	ctx.record("policy", "policy derived", map[string]any{
		"cta":               string(out.CTA),
		"upsell_products":   len(out.UpsellProducts),
		"cross_sell":        len(out.CrossSellProducts),
		"objection_handled": out.ObjectionHandled,
	})
}

func (p *Pipeline) render(ctx *Context, renderer Renderer) {
	if renderer == nil {
		return
	}
	start := util.StartTimer()
	ctx.Reply = renderer.Render(ctx)
	ctx.Durations["render"] = start.ElapsedMs()
	ctx.record("render", "reply rendered", map[string]any{
		"reply_len": len(ctx.Reply),
	})
}

func (p *Pipeline) validateReply(ctx *Context) {
	if ctx.Reply == "" {
		return
	}
	start := util.StartTimer()
	violations := guardrail.Validate(ctx.Reply, ctx.Input.Candidates)
	ctx.Violations = guardrail.Merge(ctx.Violations, violations)
	ctx.GuardrailViolation = len(ctx.Violations) > 0
	ctx.Durations["guardrail"] = start.ElapsedMs()
	ctx.record("guardrail", "reply audited", map[string]any{
		"violations": len(ctx.Violations),
	})
}

func (ctx *Context) record(stage, message string, fields map[string]any) {
	ctx.Events = append(ctx.Events, Event{
		Stage:   stage,
		Message: message,
		Fields:  fields,
		At:      time.Now().UTC(),
	})
	if ctx.recorder != nil {
		ctx.recorder.Record(stage, message, fields)
	}
}

// logRecorder mirrors events to logrus with structured fields.
type logRecorder struct{}

func (logRecorder) Record(stage, message string, fields map[string]any) {
	entry := logrus.WithField("stage", stage)
	for key, value := range fields {
		entry = entry.WithField(key, value)
	}
	entry.Debug(message)
}
