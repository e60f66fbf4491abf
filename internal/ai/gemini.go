// README: Gemini-backed extractor and notes refiner; JSON mode with response schemas, retried via the request layer.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"packwise/internal/modules/geocode"
	"packwise/internal/modules/outfit"
	"packwise/internal/retry"
)

// GeminiProvider implements LLMProvider using Google's Gemini models.
type GeminiProvider struct {
	client   *genai.Client
	extract  *genai.GenerativeModel
	notes    *genai.GenerativeModel
	executor *retry.Executor
	retryCfg retry.Config
	logger   *zap.Logger
}

// GeminiOptions configures the provider.
type GeminiOptions struct {
	APIKey string
	Model  string
	Retry  retry.Config
}

// NewGeminiProvider initializes a new Gemini client.
func NewGeminiProvider(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (*GeminiProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := opts.Model
	if name == "" {
		name = DefaultModel
	}

	// Separate model handles: schema and temperature differ per use.
	extract := client.GenerativeModel(name)
	extract.ResponseMIMEType = "application/json"
	extract.ResponseSchema = candidateSchema
	extract.SetTemperature(0.2)

	notes := client.GenerativeModel(name)
	notes.ResponseMIMEType = "application/json"
	notes.ResponseSchema = notesSchema
	notes.SetTemperature(0.6)

	cfg := opts.Retry
	if cfg.Caller == "" {
		cfg.Caller = "gemini"
	}
	cfg.ShouldRetry = ShouldRetry

	return &GeminiProvider{
		client:   client,
		extract:  extract,
		notes:    notes,
		executor: retry.NewExecutor(nil, logger),
		retryCfg: cfg,
		logger:   logger.Named("gemini"),
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Extract asks the model for place candidates. Entries without a name are dropped.
func (p *GeminiProvider) Extract(ctx context.Context, instructions, promptContext string) ([]geocode.Candidate, error) {
	fullPrompt := fmt.Sprintf("%s\n\n%s", instructions, promptContext)

	text, err := p.generate(ctx, p.extract, fullPrompt)
	if err != nil {
		return nil, err
	}
	return parseCandidates(text)
}

// RefineNotes asks for one or two sentences of advice around a fixed item list.
func (p *GeminiProvider) RefineNotes(ctx context.Context, day outfit.DayForecast, persona outfit.Persona, items []string) (string, error) {
	text, err := p.generate(ctx, p.notes, buildNotesPrompt(day, persona, items))
	if err != nil {
		return "", err
	}
	var out notesOutput
	if err := json.Unmarshal([]byte(cleanJSONString(text)), &out); err != nil {
		return "", fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return strings.TrimSpace(out.Notes), nil
}

func (p *GeminiProvider) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	var text string
	err := p.executor.Do(ctx, p.retryCfg, func(ctx context.Context) error {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return classify(fmt.Errorf("gemini generation error: %w", err))
		}
		text, err = responseText(resp)
		return err
	})
	if err != nil {
		p.logger.Warn("generation failed", zap.String("caller", p.retryCfg.Caller), zap.Error(err))
		return "", err
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// parseCandidates accepts a bare array or an object wrapping one under "candidates".
func parseCandidates(raw string) ([]geocode.Candidate, error) {
	cleaned := cleanJSONString(raw)

	var list []candidateOutput
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		var wrapped struct {
			Candidates []candidateOutput `json:"candidates"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleaned)
		}
		list = wrapped.Candidates
	}

	out := make([]geocode.Candidate, 0, len(list))
	for _, c := range list {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		out = append(out, geocode.Candidate{
			Name:        name,
			RegionHint:  deref(c.Region),
			CountryHint: deref(c.Country),
		})
	}
	return out, nil
}

func buildNotesPrompt(day outfit.DayForecast, persona outfit.Persona, items []string) string {
	style := string(persona)
	if style == "" {
		style = "no particular style"
	}
	return fmt.Sprintf(`Role: You are a concise travel packing assistant.
Context:
- Date: %s
- High / Low: %.0f°F / %.0f°F
- Precipitation chance: %.0f%%
- Wind: %.0f mph
- UV index: %.0f
- Style: %s
- Packing list (final, do not change): %s

RULES:
1. Write at most two short sentences of practical advice for the day.
2. Do NOT add, remove or rename items from the packing list.
3. No markdown.

Output JSON Schema:
{"notes": "string"}
`, day.Date, day.HighTemp, day.LowTemp, day.PrecipChance, day.WindSpeed, day.UVIndex, style, strings.Join(items, ", "))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") || strings.EqualFold(v, "unknown") {
		return ""
	}
	return v
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
