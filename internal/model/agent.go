package model

// Route is an analyzer endpoint path.
type Route string

const (
	RouteChart     Route = "/agents/chart"
	RouteSummary   Route = "/agents/summary"
	RouteContext   Route = "/agents/context"
	RouteReference Route = "/agents/reference"
)

// AgentName identifies an analyzer in agent:status events.
type AgentName string

const (
	AgentOrchestrator AgentName = "orchestrator"
	AgentChart        AgentName = "chart"
	AgentReference    AgentName = "reference"
	AgentContext      AgentName = "context"
	AgentSummary      AgentName = "summary"
)

// AgentRequest is the body posted to every analyzer route.
type AgentRequest struct {
	Intent         ClassifiedIntent `json:"intent"`
	Context        string           `json:"context"`
	SessionID      string           `json:"sessionId"`
	FullTranscript string           `json:"fullTranscript,omitempty"`
}

type OrchestratorRequest struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	SessionID string `json:"sessionId"`
	Context   string `json:"context,omitempty"`
}

type OrchestratorResponse struct {
	Intents    []ClassifiedIntent `json:"intents"`
	Dispatched []string           `json:"dispatched"`
}

// TranscriptChunk is delivered by the speech capture layer.
type TranscriptChunk struct {
	Text      string `json:"text"`
	IsFinal   bool   `json:"isFinal"`
	Timestamp int64  `json:"timestamp"`
}
