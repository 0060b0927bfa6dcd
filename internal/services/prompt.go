package services

import (
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// BuildInsightsPrompt assembles the instruction block for the insight
// model. The rules are behavioral requirements the frontend depends on
// (evidence-only output, MM:SS timestamps, empty arrays over guesses), so
// edit them with care.
func BuildInsightsPrompt(videoURL string, fallbackMode bool) string {
	lines := []string{
		"You summarize YouTube transcripts into practical Korea-travel-focused viewer insights.",
		"Detect transcript language automatically and translate internally if needed.",
		"Output must be English JSON only.",
		"Return JSON with these keys (mode is optional):",
		"{",
		"  summary: string,",
		"  must_know: string[],",
		"  key_moments: [{ time: string, title: string, why: string }],",
		"  places_foods: string[],",
		`  mode?: "travel"|"kpop"|"other"`,
		"}",
		"",
		"Strict rules:",
		"- No markdown, no code fences, no extra text outside JSON.",
		"- Never invent details that are not in the transcript.",
		"- If something is not mentioned in the transcript, do not include it.",
		"- summary must be clear, evidence-based, and non-empty English text.",
		"- must_know target is 26 English items.",
		"- If transcript is short or sparse, return fewer must_know items rather than guessing.",
		`- If adding general advice, label each such item with "General tip:" and keep it generic.`,
		"- key_moments: always return 3-6 items unless the transcript is empty.",
		"- If timestamps are not explicitly present, estimate them logically from sequence and length.",
		"- Format key_moments.time as MM:SS.",
		"- places_foods: return an empty array when none are explicitly mentioned; include only items directly supported by transcript text.",
		"- Focus on practical utility: steps, warnings, tools/items needed, costs, transit flow, local etiquette, and pitfalls.",
		"- Ignore filler (greetings, jokes, sponsorships, self-promotion).",
		"- If no strong Korea travel context is present, still return useful viewer/traveler insights from the content.",
		"- Keep outputs specific, concise, and non-redundant.",
	}

	if videoURL != "" {
		lines = append(lines, "", "Video URL: "+videoURL)
	}

	if fallbackMode {
		lines = append(lines,
			"",
			"Metadata-only mode:",
			"- No transcript is available.",
			"- key_moments must be an empty array.",
			"- Do not invent timestamps or detailed claims beyond the metadata.",
		)
	}

	return strings.Join(lines, "\n")
}

// insightsSchema is the structural contract passed to the model as a
// generation constraint, not just documentation: malformed output is
// rejected at the model layer when the backend supports it.
func insightsSchema() *genai.Schema {
	keyMoment := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"time":  {Type: genai.TypeString},
			"title": {Type: genai.TypeString},
			"why":   {Type: genai.TypeString},
		},
		Required: []string{"time", "title", "why"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":      {Type: genai.TypeString},
			"must_know":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"key_moments":  {Type: genai.TypeArray, Items: keyMoment},
			"places_foods": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"summary", "must_know", "key_moments", "places_foods"},
	}
}
