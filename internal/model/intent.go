package model

// IntentType is one of the nine semantic categories a transcript excerpt can carry.
type IntentType string

const (
	IntentDataClaim    IntentType = "DATA_CLAIM"
	IntentActionItem   IntentType = "ACTION_ITEM"
	IntentReference    IntentType = "REFERENCE"
	IntentDecision     IntentType = "DECISION"
	IntentKeyPoint     IntentType = "KEY_POINT"
	IntentEmailMention IntentType = "EMAIL_MENTION"
	IntentDocMention   IntentType = "DOC_MENTION"
	IntentQuestion     IntentType = "QUESTION"
	IntentTopicShift   IntentType = "TOPIC_SHIFT"
)

// IntentTypes lists every recognized type in priority order.
var IntentTypes = []IntentType{
	IntentDataClaim,
	IntentActionItem,
	IntentReference,
	IntentDecision,
	IntentKeyPoint,
	IntentEmailMention,
	IntentDocMention,
	IntentQuestion,
	IntentTopicShift,
}

// MinConfidence is the floor below which classifier candidates are discarded.
const MinConfidence = 0.5

// DefaultPriority applies to any type missing from the priority table.
const DefaultPriority = 1

var intentPriorities = map[IntentType]int{
	IntentDataClaim:    9,
	IntentActionItem:   8,
	IntentReference:    7,
	IntentDecision:     7,
	IntentKeyPoint:     6,
	IntentEmailMention: 6,
	IntentDocMention:   6,
	IntentQuestion:     5,
	IntentTopicShift:   3,
}

var intentRoutes = map[IntentType]Route{
	IntentDataClaim:    RouteChart,
	IntentActionItem:   RouteSummary,
	IntentDecision:     RouteSummary,
	IntentKeyPoint:     RouteSummary,
	IntentEmailMention: RouteContext,
	IntentDocMention:   RouteContext,
	IntentReference:    RouteReference,
}

func (t IntentType) Valid() bool {
	_, ok := intentPriorities[t]
	return ok
}

func (t IntentType) Priority() int {
	if p, ok := intentPriorities[t]; ok {
		return p
	}
	return DefaultPriority
}

// Route returns the analyzer endpoint for t. QUESTION and TOPIC_SHIFT have none.
func (t IntentType) Route() (Route, bool) {
	r, ok := intentRoutes[t]
	return r, ok
}

type ClassifiedIntent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
	Excerpt    string     `json:"excerpt"`
	Priority   int        `json:"priority"`
}

// Classification is the classifier output for one transcript chunk.
type Classification struct {
	Intents          []ClassifiedIntent `json:"intents"`
	RawText          string             `json:"rawText"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}
