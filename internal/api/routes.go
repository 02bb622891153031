package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"sales-advisor/engine/internal/catalog"
	"sales-advisor/engine/internal/decision"
	"sales-advisor/engine/internal/guardrail"
	"sales-advisor/engine/internal/keywords"
	"sales-advisor/engine/internal/pipeline"
	"sales-advisor/engine/internal/store"
	"sales-advisor/engine/internal/textnorm"
)

// Config defines server dependencies.
type Config struct {
	DBPath         string
	PatternsPath   string
	AllowedOrigins []string
	SilentDB       bool
}

// Server wires HTTP handlers with persistence and the decision pipeline.
type Server struct {
	db             *store.Database
	pipeline       *pipeline.Pipeline
	patternsPath   string
	allowedOrigins []string
	notifier       *DecisionNotifier
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	engine, err := decision.NewEngineFromFile(cfg.PatternsPath)
	if err != nil {
		return nil, err
	}
	if cfg.PatternsPath != "" {
		logrus.WithField("path", cfg.PatternsPath).Info("rule patterns extended from file")
	}

	return &Server{
		db:             db,
		pipeline:       pipeline.New(engine, nil),
		patternsPath:   cfg.PatternsPath,
		allowedOrigins: cfg.AllowedOrigins,
		notifier:       NewDecisionNotifier(),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/decide", s.handleDecide)
		api.GET("/decide/stream", s.handleDecideStream)
		api.POST("/guardrail", s.handleGuardrail)
		api.POST("/hints", s.handleHints)
		api.POST("/quality", s.handleQuality)
		api.GET("/decisions", s.handleListDecisions)
		api.GET("/decisions/:requestID", s.handleGetDecision)
		api.GET("/hints/runs", s.handleListHintRuns)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	violations, err := s.db.CountGuardrailViolations()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"patterns_path":        s.patternsPath,
		"guardrail_violations": violations,
	})
}

func (s *Server) handleDecide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	input := decision.Input{
		RawText:      req.Text,
		Intent:       decision.Intent(strings.TrimSpace(req.Intent)),
		Candidates:   toProducts(req.Candidates),
		Constraints:  req.Constraints,
		UnknownTerms: req.UnknownTerms,
	}

	var renderer pipeline.Renderer
	if strings.TrimSpace(req.Reply) != "" {
		renderer = staticRenderer(req.Reply)
	}

	result := s.pipeline.Run(input, renderer)
	response := FromResult(result)

	if err := s.saveDecisionLog(input, result, response); err != nil {
		logrus.WithError(err).WithField("request_id", result.RequestID).Warn("persist decision log")
	}

	s.notifier.Broadcast(DecisionEvent{
		Type:      "decision",
		RequestID: result.RequestID,
		Decision:  &response,
	})

	logrus.WithFields(logrus.Fields{
		"request_id":     result.RequestID,
		"primary_action": response.PrimaryAction,
		"cta":            response.CTA,
		"candidates":     len(req.Candidates),
		"violations":     len(response.GuardrailViolations),
		"processing_ms":  response.ProcessingTimeMs,
	}).Info("decision computed")

	c.JSON(http.StatusOK, response)
}

// staticRenderer feeds an externally rendered reply into the pipeline so
// the guardrail stage can audit it.
type staticRenderer string

func (r staticRenderer) Render(*pipeline.Context) string {
	return string(r)
}

func (s *Server) saveDecisionLog(input decision.Input, result pipeline.Result, response DecideResponse) error {
	log := store.DecisionLog{
		RequestID:             result.RequestID,
		Utterance:             input.RawText,
		UtteranceNormalized:   textnorm.Normalize(input.RawText),
		Intent:                string(input.Intent),
		PrimaryAction:         response.PrimaryAction,
		CTA:                   response.CTA,
		ClarificationQuestion: response.ClarificationQuestion,
		ObjectionHandled:      response.ObjectionHandled,
		CandidateCount:        result.Quality.Total,
		EligibleCount:         result.Quality.Eligible,
		SoftBadCount:          result.Quality.SoftBad,
		StrictBadCount:        result.Quality.StrictBad,
		Reply:                 result.Reply,
		GuardrailViolation:    result.GuardrailViolation,
		ProcessingTimeMs:      result.ProcessingTimeMs,
	}
	log.SetSalesNotes(response.SalesNotes)
	log.SetDebugFlags(response.DebugSalesFlags)
	log.SetViolations(result.Violations)
	return s.db.SaveDecisionLog(&log)
}

func (s *Server) handleDecideStream(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade")
		return
	}
	client := s.notifier.Register(conn)
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleGuardrail(c *gin.Context) {
	var req GuardrailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	violations := guardrail.Validate(req.Reply, toProducts(req.Candidates))
	c.JSON(http.StatusOK, GuardrailResponse{
		Violations: violations,
		Violated:   len(violations) > 0,
	})
}

func (s *Server) handleHints(c *gin.Context) {
	var req HintsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	products := toProducts(req.Products)
	hints := keywords.Build(products, req.KnownTerms)

	run := store.HintRun{
		Source:       strings.TrimSpace(req.Source),
		ProductCount: len(products),
		HintCount:    len(hints),
	}
	run.SetTopHints(topHintWords(hints, 20))
	if err := s.db.SaveHintRun(&run); err != nil {
		logrus.WithError(err).Warn("persist hint run")
	}

	c.JSON(http.StatusOK, gin.H{
		"total_products": len(products),
		"hints":          hints,
	})
}

func (s *Server) handleQuality(c *gin.Context) {
	var req QualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	products := toProducts(req.Products)
	report := catalog.Classify(products)
	c.JSON(http.StatusOK, gin.H{
		"report":   report,
		"products": products,
	})
}

func (s *Server) handleListDecisions(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 25
	}

	rows, total, err := s.db.ListDecisionLogs(page*pageSize, pageSize)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]DecisionLogDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	c.JSON(http.StatusOK, DecisionLogsResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetDecision(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("requestID"))
	if requestID == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("request id required"))
		return
	}
	row, err := s.db.GetDecisionLog(requestID)
	if err != nil {
		s.renderError(c, http.StatusNotFound, errors.New("decision not found"))
		return
	}
	c.JSON(http.StatusOK, FromModel(*row))
}

func (s *Server) handleListHintRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := s.db.ListHintRuns(limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	items := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		items = append(items, gin.H{
			"id":            row.ID,
			"source":        row.Source,
			"product_count": row.ProductCount,
			"hint_count":    row.HintCount,
			"top_hints":     row.TopHints(),
			"created_at":    row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func topHintWords(hints []keywords.Hint, limit int) []string {
	if limit > len(hints) {
		limit = len(hints)
	}
	words := make([]string, 0, limit)
	for _, hint := range hints[:limit] {
		words = append(words, hint.Word)
	}
	return words
}
