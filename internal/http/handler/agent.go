package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/avishaychauhan/EchoLabs/common/logger"
	"github.com/avishaychauhan/EchoLabs/internal/http/dto"
	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/validation"
)

type ChartGenerator interface {
	Generate(ctx context.Context, req model.AgentRequest) model.Result[model.ChartResponse]
}

type ReferenceFinder interface {
	Find(ctx context.Context, req model.AgentRequest) model.Result[model.ReferenceResponse]
}

type ContextMatcher interface {
	Match(ctx context.Context, req model.AgentRequest) model.Result[model.ContextResponse]
}

type SummaryExtractor interface {
	FromIntent(ctx context.Context, req model.AgentRequest) model.Result[model.SummaryResponse]
	Sweep(ctx context.Context, sessionID, transcript string) model.Result[model.SummaryResponse]
}

type BulletCounter interface {
	Count(sessionID string) int
}

// Broadcaster is the part of the session registry the handlers publish through.
type Broadcaster interface {
	Broadcast(ctx context.Context, event model.EventName, sessionID string, payload any)
	ReportStatus(ctx context.Context, sessionID string, agent model.AgentName, status model.AgentStatus, message string)
}

type Analyzers struct {
	Charts     ChartGenerator
	References ReferenceFinder
	Context    ContextMatcher
	Summary    SummaryExtractor
	Bullets    BulletCounter
}

// AgentHandler serves the four analyzer routes the dispatcher posts to.
type AgentHandler struct {
	analyzers   Analyzers
	broadcaster Broadcaster
}

func NewAgentHandler(analyzers Analyzers, broadcaster Broadcaster) *AgentHandler {
	return &AgentHandler{analyzers: analyzers, broadcaster: broadcaster}
}

func (h *AgentHandler) Chart(c *gin.Context) {
	var req model.AgentRequest
	if !bindValidated(c, validation.AgentChart, &req) {
		return
	}

	h.run(c, model.AgentChart, req.SessionID, func(ctx context.Context) any {
		res := h.analyzers.Charts.Generate(ctx, req)
		logDegraded(ctx, res.Degraded, res.Reason)

		chart := res.Value
		h.broadcaster.Broadcast(ctx, model.EventChartRender, req.SessionID, model.ChartPayload{
			MermaidCode:   chart.MermaidCode,
			ChartType:     chart.ChartType,
			Title:         chart.Title,
			SourceExcerpt: req.Intent.Excerpt,
			Narration:     chart.Narration,
		})
		return chart
	})
}

func (h *AgentHandler) Reference(c *gin.Context) {
	var req model.AgentRequest
	if !bindValidated(c, validation.AgentReference, &req) {
		return
	}

	h.run(c, model.AgentReference, req.SessionID, func(ctx context.Context) any {
		res := h.analyzers.References.Find(ctx, req)
		logDegraded(ctx, res.Degraded, res.Reason)

		h.broadcaster.Broadcast(ctx, model.EventReferenceFound, req.SessionID, res.Value)
		return res.Value
	})
}

// Context emits one context:match event per match type present, in
// model.MatchTypes order.
func (h *AgentHandler) Context(c *gin.Context) {
	var req model.AgentRequest
	if !bindValidated(c, validation.AgentContext, &req) {
		return
	}

	h.run(c, model.AgentContext, req.SessionID, func(ctx context.Context) any {
		res := h.analyzers.Context.Match(ctx, req)
		logDegraded(ctx, res.Degraded, res.Reason)

		for _, group := range groupMatches(res.Value.Matches) {
			h.broadcaster.Broadcast(ctx, model.EventContextMatch, req.SessionID, group)
		}
		return res.Value
	})
}

// Summary accepts either a single summary-bound intent or a sweep body.
func (h *AgentHandler) Summary(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}

	if len(validation.Validate(validation.SummarySweep, raw)) == 0 {
		var sweep dto.SweepRequest
		if !decodeValidated(c, raw, validation.SummarySweep, &sweep) {
			return
		}
		h.run(c, model.AgentSummary, sweep.SessionID, func(ctx context.Context) any {
			res := h.analyzers.Summary.Sweep(ctx, sweep.SessionID, sweep.FullTranscript)
			logDegraded(ctx, res.Degraded, res.Reason)
			h.publishBullets(ctx, sweep.SessionID, res.Value.Bullets)
			return res.Value
		})
		return
	}

	var req model.AgentRequest
	if !decodeValidated(c, raw, validation.AgentSummary, &req) {
		return
	}
	h.run(c, model.AgentSummary, req.SessionID, func(ctx context.Context) any {
		res := h.analyzers.Summary.FromIntent(ctx, req)
		logDegraded(ctx, res.Degraded, res.Reason)
		h.publishBullets(ctx, req.SessionID, res.Value.Bullets)
		return res.Value
	})
}

func (h *AgentHandler) publishBullets(ctx context.Context, sessionID string, accepted []model.SummaryBullet) {
	if len(accepted) == 0 {
		return
	}
	h.broadcaster.Broadcast(ctx, model.EventSummaryUpdate, sessionID,
		model.NewSummaryPayload(accepted, h.analyzers.Bullets.Count(sessionID)))
}

// run brackets analyze with processing and complete statuses. A panic inside
// analyze becomes an error status and a 500.
func (h *AgentHandler) run(c *gin.Context, agent model.AgentName, sessionID string, analyze func(ctx context.Context) any) {
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Agent:     logger.Ptr(string(agent)),
		Component: "echolens.http.agent",
	})

	h.broadcaster.ReportStatus(ctx, sessionID, agent, model.StatusProcessing, "")
	defer recoverAgent(ctx, c, h.broadcaster, sessionID, agent)

	resp := analyze(ctx)

	h.broadcaster.ReportStatus(ctx, sessionID, agent, model.StatusComplete, "")
	c.JSON(http.StatusOK, resp)
}

// recoverAgent must be deferred directly.
func recoverAgent(ctx context.Context, c *gin.Context, status Broadcaster, sessionID string, agent model.AgentName) {
	r := recover()
	if r == nil {
		return
	}

	slog.ErrorContext(ctx, "agent handler panicked",
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()))
	if sessionID != "" {
		status.ReportStatus(ctx, sessionID, agent, model.StatusError, "Internal server error")
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
}

func logDegraded(ctx context.Context, degraded bool, reason error) {
	if degraded {
		slog.WarnContext(ctx, "analyzer returned fallback", "reason", reason)
	}
}

func groupMatches(matches []model.ContextMatch) []model.ContextPayload {
	byType := make(map[model.MatchType][]model.ContextMatch, len(model.MatchTypes))
	for _, m := range matches {
		byType[m.MatchType] = append(byType[m.MatchType], m)
	}

	groups := make([]model.ContextPayload, 0, len(byType))
	for _, t := range model.MatchTypes {
		if group, ok := byType[t]; ok {
			groups = append(groups, model.ContextPayload{MatchType: t, Matches: group})
		}
	}
	return groups
}
