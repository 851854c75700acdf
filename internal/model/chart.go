package model

// ChartType is a Mermaid diagram dialect.
type ChartType string

const (
	ChartPie          ChartType = "pie"
	ChartXY           ChartType = "xychart-beta"
	ChartGraph        ChartType = "graph"
	ChartMindmap      ChartType = "mindmap"
	ChartTimeline     ChartType = "timeline"
	ChartQuadrant     ChartType = "quadrantChart"
	ChartSequence     ChartType = "sequenceDiagram"
	ChartGantt        ChartType = "gantt"
	ChartEntityRelate ChartType = "erDiagram"
)

type ChartResponse struct {
	MermaidCode string    `json:"mermaidCode"`
	ChartType   ChartType `json:"chartType"`
	Title       string    `json:"title"`
	Narration   string    `json:"narration"`
}
