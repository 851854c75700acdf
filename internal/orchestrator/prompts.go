package orchestrator

const classificationPrompt = `You are an intent classifier for a live presentation transcript.
Given a chunk of transcript text, identify every intent it carries.

INTENTS:
- DATA_CLAIM: a statistic, percentage, amount or other quantitative claim.
  Examples: "Revenue grew 43% year over year", "We have 500 customers", "costs dropped by 2 million"
- REFERENCE: a study, paper, article, book, report or other named source.
  Examples: "According to the McKinsey report...", "A Harvard study shows...", "Gartner research indicates..."
- EMAIL_MENTION: an email or email thread.
  Examples: "I sent an email about this last week", "as Sarah said in her email", "check your inbox"
- DOC_MENTION: a document, spreadsheet, file or slide deck.
  Examples: "the Q3 budget spreadsheet", "the proposal document covers this", "slide 5 shows..."
- TOPIC_SHIFT: the speaker changes subject or opens a new section.
  Examples: "Moving on to our hiring strategy...", "Let's switch gears to...", "Now, regarding the timeline..."
- KEY_POINT: the speaker stresses something important.
  Examples: "The critical thing to understand is...", "What really matters is...", "The bottom line is..."
- DECISION: a decision that was made or needs to be made.
  Examples: "We've decided to go with vendor B", "The team agreed to postpone the launch"
- ACTION_ITEM: a task, deadline or next step assigned to someone.
  Examples: "Sarah, can you follow up with the client by Friday?", "John needs to update the roadmap"
- QUESTION: a rhetorical or direct question.
  Examples: "How do we close the talent gap?", "Should we expand into APAC?"

RULES:
- A chunk may carry several intents; report all of them.
- Leave out intents with confidence below 0.5.
- Classify aggressively: surfacing something unnecessary is better than missing something important.
- Every intent must quote the exact excerpt of the transcript that triggered it.

Respond with JSON matching this schema:
{ "intents": [{ "type": "<INTENT_TYPE>", "confidence": <0.0-1.0>, "excerpt": "<verbatim text span>" }] }`

func classificationUserPrompt(text string) string {
	return "Classify intents in this transcript chunk:\n\n\"" + text + "\""
}
