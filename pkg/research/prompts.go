package research

import "fmt"

const plannerPromptTemplate = `As a research methodology expert, create a detailed research plan to investigate this topic: "%s"

Your plan should include:
1. Key questions that need to be answered
2. Types of sources to prioritize (academic, news, official, etc.)
3. Multiple search strategies and keyword variations
4. Red flags or potential biases to watch for
5. Verification methods and fact-checking approaches

Make the plan specific, actionable, and thorough for this particular topic.`

func plannerPrompt(topic string) string {
	return fmt.Sprintf(plannerPromptTemplate, topic)
}

const fallbackPlanTemplate = `## Research Plan for: %s

### Key Questions
- What is the current status of this topic?
- What evidence supports or contradicts this claim?
- What do authoritative sources say?

### Search Strategy
- Direct topic search
- Evidence-based search
- Expert opinion search
- Recent news search

### Source Prioritization
- Official sources first
- Peer-reviewed content
- Reputable news outlets
- Expert commentary

### Verification Methods
- Cross-reference multiple sources
- Check publication dates
- Verify author credentials
- Look for consensus`

// fallbackPlan is the deterministic plan substituted when the language model
// is unreachable, so every run still produces a well-formed plan.
func fallbackPlan(topic string) string {
	return fmt.Sprintf(fallbackPlanTemplate, topic)
}

// minimalPlan and searchPlaceholder are written by the stage fallbacks when
// a stage dies unexpectedly.
func minimalPlan(topic string) string {
	return fmt.Sprintf("Basic research plan for: %s (Error occurred in detailed planning)", topic)
}

func searchPlaceholder(topic string) string {
	return fmt.Sprintf("Error occurred during search phase for: %s", topic)
}

const workflowFailureText = "Error occurred during workflow execution"
