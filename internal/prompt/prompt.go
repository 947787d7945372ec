// Package prompt composes the model-facing instructions.
package prompt

import (
	"regexp"
	"strings"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// Markers delimiting the final image prompt in an assistant reply.
const (
	PromptStartMarker = "---PROMPT---"
	PromptEndMarker   = "---END---"
)

// EngineeringGuidelines is the fixed image prompt guidance.
const EngineeringGuidelines = `IMAGE PROMPT BEST PRACTICES:

STRUCTURE:
1. Camera angle/perspective (aerial, interior, exterior, close-up)
2. Lighting conditions (time of day, natural/artificial, mood)
3. Architectural style keywords (modern, industrial, high-tech)
4. Materials and textures (glass, steel, concrete, water)
5. Atmosphere (clean, premium, futuristic)
6. Technical style ("photorealistic architectural visualization")

GOOD EXAMPLES:
- "Aerial drone view at 45-degree angle of a modern aquaculture facility at golden hour, showing 12 circular blue fiberglass tanks arranged in 2 rows of 6 inside a glass-walled building, warm sunset lighting, photorealistic architectural visualization"
- "Interior view of a high-tech fish farm, standing at ground level looking down a corridor between two rows of 6 large circular tanks each 16m diameter, blue water with fish visible, LED lighting strips, epoxy floor, clean modern industrial aesthetic"

AVOID:
- Vague descriptions ("nice building", "cool tanks")
- Missing perspective/camera info
- Conflicting style elements
- Too short (under 50 words usually = poor results)`

// InitialAssistantMessage greets a new conversation.
const InitialAssistantMessage = `היי! אני עוזר ליצירת ויזואליזציות של מתקן PBF.

ספר/י לי מה תרצה/י לראות - מבט מהאוויר? פנים המבנה? תחנת הקרנטינה?`

// BuildSystemPrompt embeds the three context documents into the assistant's
// system instruction. Contexts are included verbatim.
func BuildSystemPrompt(facilitySpecs, designGuidelines, companyContext string) string {
	var b strings.Builder

	b.WriteString("You are a visualization assistant for Pure Blue Fish (PBF), an Israeli aquaculture company.\n\n")

	b.WriteString("=== FACILITY SPECIFICATIONS ===\n")
	b.WriteString(facilitySpecs)
	b.WriteString("\n\n=== DESIGN GUIDELINES ===\n")
	b.WriteString(designGuidelines)
	b.WriteString("\n\n=== COMPANY CONTEXT ===\n")
	b.WriteString(companyContext)
	b.WriteString("\n\n")

	b.WriteString(EngineeringGuidelines)
	b.WriteString("\n\n")

	b.WriteString(`YOUR TASK:
1. Understand what visualization the user wants
2. If the request is CLEAR (e.g., "aerial view at sunset", "interior with workers") - generate the prompt immediately
3. If the request is VAGUE (e.g., "show me something", "make it look good") - ask 1-2 clarifying questions first
4. Every prompt must respect the facility specifications and the design guidelines above

When ready to generate, output the optimized prompt in this EXACT format:

`)
	b.WriteString(PromptStartMarker)
	b.WriteString("\n[Your optimized English prompt here, 80-150 words, highly detailed]\n")
	b.WriteString(PromptEndMarker)
	b.WriteString(`

LANGUAGE:
- Respond in the same language the user writes (Hebrew or English)
- The final prompt inside `)
	b.WriteString(PromptStartMarker)
	b.WriteString(` must ALWAYS be in English

TONE:
- Friendly, professional, helpful
- Brief responses - don't over-explain
- Get to the prompt quickly when possible
`)
	return b.String()
}

// BuildPromptWithContext appends the facility context to a direct-mode prompt.
// When includeContext is false the prompt is returned unchanged; an empty
// customContext falls back to the default facility specification.
func BuildPromptWithContext(userPrompt string, includeContext bool, customContext string) string {
	if !includeContext {
		return userPrompt
	}

	context := customContext
	if context == "" {
		context = domain.DefaultFacilitySpecs
	}

	return userPrompt + `

---
FACILITY CONTEXT (use these specifications):
` + context + `
---

Generate a photorealistic architectural visualization based on the above specifications.`
}

var promptBlock = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(PromptStartMarker) + `\s*(.*?)\s*` + regexp.QuoteMeta(PromptEndMarker))

// ExtractPrompt returns the image prompt enclosed in the markers, if any.
func ExtractPrompt(content string) (string, bool) {
	m := promptBlock.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	p := strings.TrimSpace(m[1])
	if p == "" {
		return "", false
	}
	return p, true
}
