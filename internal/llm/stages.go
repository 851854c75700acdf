// Package llm holds the stage names shared by every gateway caller and the
// offline keyword gateway used when no model backend is configured.
package llm

// Stage names travel in llm.Request.SchemaName. They label traces and the call
// log, and the keyword gateway switches on them.
const (
	StageClassify     = "intent_classification"
	StageChart        = "chart_generation"
	StageChartRepair  = "chart_repair"
	StageReference    = "reference_search"
	StageSummarySweep = "summary_sweep"
	StageLiveSummary  = "live_summary"
	StageHealthCheck  = "health_check"
)
