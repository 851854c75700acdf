package reference

import "fmt"

const searchPrompt = `You are a research assistant. Given a claim or reference from a live presentation, find the most authoritative source that supports or relates to this claim.

Return JSON with this exact schema:
{
  "title": "<source title>",
  "url": "<full URL>",
  "snippet": "<2-sentence relevant excerpt from the source>",
  "confidence": "verified" | "partial" | "unverified",
  "domain": "<domain name, e.g. mckinsey.com>"
}

If several sources are equally relevant you may return a JSON array of such objects.

RULES:
- "verified" means you found an exact or near-exact match for the claim.
- "partial" means you found a related source but the specific claim isn't directly stated.
- "unverified" means you couldn't find a reliable source.
- Always provide a real, working URL if possible.
- Prefer authoritative sources: academic papers, major publications, official company reports.
- Keep the snippet concise and relevant to the claim.`

func searchUserPrompt(excerpt, context string) string {
	return fmt.Sprintf("Find the source for this reference: %q\nContext: %s", excerpt, context)
}
