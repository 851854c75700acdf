package chart

import (
	"regexp"
	"strings"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

var dialects = []struct {
	pattern *regexp.Regexp
	chart   model.ChartType
}{
	{regexp.MustCompile(`(?m)^pie\b`), model.ChartPie},
	{regexp.MustCompile(`(?m)^xychart-beta\b`), model.ChartXY},
	{regexp.MustCompile(`(?m)^flowchart\b`), model.ChartGraph},
	{regexp.MustCompile(`(?m)^graph\b`), model.ChartGraph},
	{regexp.MustCompile(`(?m)^mindmap\b`), model.ChartMindmap},
	{regexp.MustCompile(`(?m)^timeline\b`), model.ChartTimeline},
	{regexp.MustCompile(`(?m)^sequenceDiagram\b`), model.ChartSequence},
	{regexp.MustCompile(`(?m)^gantt\b`), model.ChartGantt},
	{regexp.MustCompile(`(?m)^quadrantChart\b`), model.ChartQuadrant},
	{regexp.MustCompile(`(?m)^erDiagram\b`), model.ChartEntityRelate},
}

// Detect returns the dialect of Mermaid source by its header keyword.
// flowchart and graph both report as graph.
func Detect(code string) (model.ChartType, bool) {
	trimmed := strings.TrimSpace(code)
	for _, d := range dialects {
		if d.pattern.MatchString(trimmed) {
			return d.chart, true
		}
	}
	return "", false
}

// Valid reports whether code is non-blank and in a recognized dialect.
func Valid(code string) bool {
	if strings.TrimSpace(code) == "" {
		return false
	}
	_, ok := Detect(code)
	return ok
}
