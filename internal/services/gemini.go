package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"seoulmate-backend/internal/models"
)

// ErrModelExhausted reports that every candidate model failed or returned
// unusable output; the wrapped cause is the last per-candidate error.
var ErrModelExhausted = errors.New("all model candidates failed")

type GeminiService struct {
	client     *genai.Client
	candidates []string

	// generate is the per-candidate call, swappable in tests.
	generate func(ctx context.Context, model, prompt string) (string, error)
}

func NewGeminiService(ctx context.Context, apiKey string, candidates []string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s := &GeminiService{
		client:     client,
		candidates: candidates,
	}
	s.generate = s.generateWithModel
	return s, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *GeminiService) generateWithModel(ctx context.Context, modelName, prompt string) (string, error) {
	model := s.client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = insightsSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

// GenerateInsights runs the candidate models in order and returns the
// first normalized result with a non-empty summary. This is a
// fallback-between-alternatives retry: the same request is never repeated
// against a model that already failed.
func (s *GeminiService) GenerateInsights(ctx context.Context, prompt, content string) (models.SummaryInsights, error) {
	full := prompt + "\n\n" + content

	var lastErr error
	for _, candidate := range s.candidates {
		raw, err := s.generate(ctx, candidate, full)
		if err != nil {
			lastErr = err
			log.Printf("model %s failed: %v", candidate, err)
			continue
		}

		raw = stripCodeFences(raw)
		if raw == "" {
			lastErr = errors.New("empty model response")
			continue
		}

		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			lastErr = fmt.Errorf("model returned invalid JSON: %w", err)
			continue
		}

		insights := normalizeInsights(parsed)
		if insights.Summary != "" {
			return insights, nil
		}
		lastErr = errors.New("model returned empty summary")
	}

	if lastErr == nil {
		lastErr = errors.New("no model candidates configured")
	}
	return models.SummaryInsights{}, fmt.Errorf("%w: %v", ErrModelExhausted, lastErr)
}

// FriendlyModelMessage rewrites known provider billing/quota failures into
// something actionable. Substring matching on provider error text is a
// heuristic, not a contract.
func FriendlyModelMessage(err error) string {
	if err == nil {
		return "Unknown error"
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "quota") || strings.Contains(lower, "exhausted") || strings.Contains(lower, "billing") {
		return "Gemini quota/billing issue. Check your Google AI plan and billing."
	}
	return msg
}

// normalizeInsights coerces arbitrary model JSON into the insight shape:
// every field ends up with the right type, missing or malformed fields
// default to empty.
func normalizeInsights(obj map[string]interface{}) models.SummaryInsights {
	out := models.SummaryInsights{
		Summary:     strings.TrimSpace(asString(obj["summary"])),
		MustKnow:    []string{},
		KeyMoments:  []models.KeyMoment{},
		PlacesFoods: []string{},
	}

	if items, ok := obj["must_know"].([]interface{}); ok {
		for _, v := range items {
			out.MustKnow = append(out.MustKnow, asString(v))
		}
	}

	if items, ok := obj["key_moments"].([]interface{}); ok {
		for _, v := range items {
			m, ok := v.(map[string]interface{})
			if !ok {
				out.KeyMoments = append(out.KeyMoments, models.KeyMoment{})
				continue
			}
			out.KeyMoments = append(out.KeyMoments, models.KeyMoment{
				Time:  strings.TrimSpace(asString(m["time"])),
				Title: strings.TrimSpace(asString(m["title"])),
				Why:   strings.TrimSpace(asString(m["why"])),
			})
		}
	}

	if items, ok := obj["places_foods"].([]interface{}); ok {
		for _, v := range items {
			out.PlacesFoods = append(out.PlacesFoods, asString(v))
		}
	}

	return out
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
