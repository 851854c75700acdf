package chart

const generationPrompt = `You are a Mermaid diagram expert. Given a spoken data claim or concept from a live presentation, produce the single most fitting Mermaid diagram.

Pick one of these diagram types:
- pie: proportions and percentages (e.g. "40% enterprise, 35% SMB, 25% consumer")
- xychart-beta: trends, comparisons and bar charts (e.g. "hired 12 in Q3, 8 in Q2, 5 in Q1")
- graph: flows, processes and pipelines (e.g. "lead to qualification to demo to close")
- mindmap: brainstorming, categories and related concepts
- timeline: chronological events and milestones
- quadrantChart: 2x2 positioning and prioritization
- sequenceDiagram: interactions between people or systems
- gantt: project schedules with durations
- erDiagram: data models and entity relationships

Output ONLY valid JSON with exactly this schema:
{
  "mermaid": "<raw Mermaid code, no markdown fences>",
  "narration": "<one sentence describing the visual>",
  "diagramType": "<the diagram type used>",
  "title": "<short chart title>"
}

RULES:
- The "mermaid" field holds raw Mermaid code only. No markdown fences, no explanations.
- Infer reasonable data when only partial numbers are given.
- Use descriptive labels and a title inside the diagram.
- Keep diagrams small and readable (at most 8-10 items).`

const repairPrompt = `You are a Mermaid diagram expert. The Mermaid code below has syntax errors. Fix it.

You will be given the faulty Mermaid code and, optionally, an error message or context.

Output ONLY valid JSON with this schema:
{
  "mermaid": "<FIXED raw Mermaid code, no markdown fences>",
  "explanation": "<brief note on what you fixed>"
}

RULES:
- Do NOT change the data or the meaning of the chart.
- Fix the SYNTAX only.
- If the diagram type is deprecated or invalid, switch to a standard type (e.g. 'pie', 'graph TD').`

func generationUserPrompt(excerpt, context string) string {
	return "Data claim: \"" + excerpt + "\"\nContext: " + context
}

func repairUserPrompt(code string) string {
	return "Faulty Code:\n" + code
}
