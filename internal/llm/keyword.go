package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gateway "github.com/avishaychauhan/EchoLabs/common/llm"
)

// KeywordClient is a deterministic gateway that answers every stage by
// pattern-matching keywords. It lets the whole pipeline run offline.
type KeywordClient struct{}

func NewKeywordClient() *KeywordClient {
	return &KeywordClient{}
}

func (k *KeywordClient) Model() string {
	return "keyword-mock"
}

func (k *KeywordClient) Generate(ctx context.Context, req gateway.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &gateway.BackendError{Provider: gateway.ProviderMock, Op: req.SchemaName, Err: err}
	}

	var out any
	switch req.SchemaName {
	case StageClassify:
		out = map[string]any{"intents": classifyKeywords(quoted(req.UserPrompt))}
	case StageChart:
		out = chartFor(quoted(req.UserPrompt))
	case StageChartRepair:
		out = repairChart(after(req.UserPrompt, "Faulty Code:\n"))
	case StageReference:
		return referenceFor(quoted(req.UserPrompt))
	case StageSummarySweep:
		out = map[string]any{"bullets": sweepKeywords(quoted(req.UserPrompt))}
	case StageLiveSummary:
		return liveSummary(req.UserPrompt), nil
	case StageHealthCheck:
		return "OK", nil
	default:
		if req.JSONMode || req.Schema != nil {
			return "{}", nil
		}
		return "OK", nil
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return "", &gateway.BackendError{Provider: gateway.ProviderMock, Op: req.SchemaName, Err: err}
	}
	return string(raw), nil
}

type keywordRule struct {
	intent     string
	confidence float64
	pattern    *regexp.Regexp
}

var keywordRules = []keywordRule{
	{"DATA_CLAIM", 0.95, regexp.MustCompile(`(?i)\d+(\.\d+)?\s*(%|percent|million|billion|thousand|k\b|x\b)|\$\s?\d|\b\d{2,}\s+(customers|users|people|hires|deals)`)},
	{"REFERENCE", 0.85, regexp.MustCompile(`(?i)according to|\bstudy\b|\breport\b|\bresearch\b|\bpaper\b|\bsurvey\b|\barticle\b`)},
	{"EMAIL_MENTION", 0.8, regexp.MustCompile(`(?i)\be-?mail\b|\binbox\b|\bemailed\b`)},
	{"DOC_MENTION", 0.8, regexp.MustCompile(`(?i)\bdocument\b|\bspreadsheet\b|\bslide\b|\bdeck\b|\bproposal\b|\bdoc\b`)},
	{"TOPIC_SHIFT", 0.7, regexp.MustCompile(`(?i)moving on|switch gears|next topic|now,? regarding|let's talk about`)},
	{"KEY_POINT", 0.75, regexp.MustCompile(`(?i)\bimportant\b|\bcritical\b|bottom line|what (really )?matters|\bkey\b`)},
	{"DECISION", 0.85, regexp.MustCompile(`(?i)\bdecided\b|\bagreed\b|go with|\bchoosing\b|\bdecision\b`)},
	{"ACTION_ITEM", 0.85, regexp.MustCompile(`(?i)follow up|needs to|action item|can you|\bschedule\b|by (monday|tuesday|wednesday|thursday|friday|end of)`)},
	{"QUESTION", 0.7, regexp.MustCompile(`\?`)},
}

var sentenceSplit = regexp.MustCompile(`[^.!?]+[.!?]?`)

func sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func classifyKeywords(text string) []map[string]any {
	intents := []map[string]any{}
	for _, rule := range keywordRules {
		for _, s := range sentences(text) {
			if rule.pattern.MatchString(s) {
				intents = append(intents, map[string]any{
					"type":       rule.intent,
					"confidence": rule.confidence,
					"excerpt":    s,
				})
				break
			}
		}
	}
	return intents
}

var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:of\s+)?([A-Za-z][A-Za-z ]{0,24})?`)
var numberPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:in|for)?\s*(Q[1-4]|[A-Z][a-z]+)?`)

func chartFor(excerpt string) map[string]string {
	if matches := percentPattern.FindAllStringSubmatch(excerpt, -1); len(matches) > 0 {
		var b strings.Builder
		b.WriteString("pie title Share\n")
		total := 0.0
		for i, m := range matches {
			label := strings.TrimSpace(m[2])
			if label == "" {
				label = fmt.Sprintf("Segment %d", i+1)
			}
			v, _ := strconv.ParseFloat(m[1], 64)
			total += v
			fmt.Fprintf(&b, "    %q : %s\n", label, m[1])
		}
		if len(matches) == 1 && total < 100 {
			fmt.Fprintf(&b, "    %q : %g\n", "Other", 100-total)
		}
		return map[string]string{
			"mermaid":     strings.TrimRight(b.String(), "\n"),
			"narration":   "A pie chart showing the share described by the speaker.",
			"diagramType": "pie",
			"title":       "Share",
		}
	}

	if matches := numberPattern.FindAllStringSubmatch(excerpt, -1); len(matches) > 1 {
		labels := make([]string, 0, len(matches))
		values := make([]string, 0, len(matches))
		for i, m := range matches {
			label := m[2]
			if label == "" {
				label = fmt.Sprintf("P%d", i+1)
			}
			labels = append(labels, fmt.Sprintf("%q", label))
			values = append(values, m[1])
		}
		mermaid := fmt.Sprintf("xychart-beta\n    title \"Comparison\"\n    x-axis [%s]\n    bar [%s]",
			strings.Join(labels, ", "), strings.Join(values, ", "))
		return map[string]string{
			"mermaid":     mermaid,
			"narration":   "A bar chart comparing the figures mentioned.",
			"diagramType": "xychart-beta",
			"title":       "Comparison",
		}
	}

	return map[string]string{
		"mermaid":     "mindmap\n  root((" + sanitizeLabel(excerpt, 40) + "))",
		"narration":   "A mind map of the point being made.",
		"diagramType": "mindmap",
		"title":       "Key Figure",
	}
}

func repairChart(code string) map[string]string {
	code = strings.TrimSpace(code)
	code = strings.TrimPrefix(code, "```mermaid")
	code = strings.TrimPrefix(code, "```")
	code = strings.TrimSpace(strings.TrimSuffix(code, "```"))
	first := code
	if nl := strings.IndexByte(code, '\n'); nl >= 0 {
		first = code[:nl]
	}
	return map[string]string{
		"mermaid":     "mindmap\n  root((" + sanitizeLabel(first, 40) + "))",
		"explanation": "Replaced an unrecognised diagram header with a mindmap.",
	}
}

type knownSource struct {
	pattern *regexp.Regexp
	title   string
	url     string
	snippet string
}

var knownSources = []knownSource{
	{regexp.MustCompile(`(?i)mckinsey`), "The State of AI", "https://www.mckinsey.com/capabilities/quantumblack/our-insights/the-state-of-ai",
		"McKinsey's annual survey tracks enterprise adoption of AI. It reports adoption and value capture by function."},
	{regexp.MustCompile(`(?i)gartner`), "Gartner Hype Cycle for Emerging Technologies", "https://www.gartner.com/en/research/methodologies/gartner-hype-cycle",
		"Gartner's Hype Cycle charts the maturity of emerging technologies. It is updated yearly."},
	{regexp.MustCompile(`(?i)harvard`), "Harvard Business Review", "https://hbr.org/topic/subject/strategy",
		"HBR publishes research-backed articles on management practice."},
}

// referenceFor alternates response shapes on purpose: a single object for the
// first known source, an array when several match, an empty array otherwise.
func referenceFor(excerpt string) (string, error) {
	var hits []map[string]string
	for _, s := range knownSources {
		if s.pattern.MatchString(excerpt) {
			hits = append(hits, map[string]string{
				"title":      s.title,
				"url":        s.url,
				"snippet":    s.snippet,
				"confidence": "partial",
			})
		}
	}

	var out any = hits
	switch len(hits) {
	case 0:
		out = []map[string]string{}
	case 1:
		out = hits[0]
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

var ownerPattern = regexp.MustCompile(`^([A-Z][a-z]+)(,| needs to| will| can you| should)`)

var sweepOrder = []struct {
	intent   string
	category string
}{
	{"ACTION_ITEM", "action_item"},
	{"DECISION", "decision"},
	{"QUESTION", "question"},
	{"KEY_POINT", "key_point"},
	{"DATA_CLAIM", "key_point"},
}

func ruleFor(intent string) keywordRule {
	for _, r := range keywordRules {
		if r.intent == intent {
			return r
		}
	}
	return keywordRule{}
}

func sweepKeywords(transcript string) []map[string]any {
	bullets := []map[string]any{}
	for _, s := range sentences(transcript) {
		category := ""
		for _, o := range sweepOrder {
			if ruleFor(o.intent).pattern.MatchString(s) {
				category = o.category
				break
			}
		}
		if category == "" {
			continue
		}

		bullet := map[string]any{"category": category, "text": firstWords(s, 15), "owner": nil}
		if category == "action_item" {
			if m := ownerPattern.FindStringSubmatch(s); m != nil {
				bullet["owner"] = m[1]
			}
		}
		bullets = append(bullets, bullet)
	}
	return bullets
}

func liveSummary(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "revenue") || strings.Contains(lower, "sales"):
		return "The speaker is walking through revenue and sales results."
	case strings.Contains(lower, "hiring") || strings.Contains(lower, "team"):
		return "The speaker is reviewing team and hiring plans."
	default:
		return "The speaker is presenting the current agenda item."
	}
}

// quoted returns the first double-quoted span of a prompt, or the prompt itself.
func quoted(prompt string) string {
	start := strings.IndexByte(prompt, '"')
	if start < 0 {
		return prompt
	}
	end := strings.LastIndexByte(prompt, '"')
	if end <= start {
		return prompt[start+1:]
	}
	return prompt[start+1 : end]
}

func after(s, marker string) string {
	if i := strings.Index(s, marker); i >= 0 {
		return s[i+len(marker):]
	}
	return s
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

var unsafeLabel = regexp.MustCompile(`[()\[\]{}"\n]`)

func sanitizeLabel(s string, max int) string {
	s = strings.TrimSpace(unsafeLabel.ReplaceAllString(s, " "))
	if runes := []rune(s); len(runes) > max {
		s = strings.TrimSpace(string(runes[:max]))
	}
	if s == "" {
		s = "Data Point"
	}
	return s
}
