// Package inference wraps the AI text-completion calls that enrich accepted
// postings: division inference and organizational hierarchy extraction.
//
// Both calls are best-effort. A nil result means the caller proceeds without
// the enrichment; no provider failure escapes this package as an error.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/job-radar/internal/cache"
	"github.com/jonathan/job-radar/internal/llm"
	"github.com/jonathan/job-radar/internal/types"
)

// maxDescriptionChars bounds the prompt size for very long postings.
const maxDescriptionChars = 8000

// DefaultCacheTTL is how long validated model replies are reused.
const DefaultCacheTTL = 24 * time.Hour

// divisionSchema validates the model's division reply before it is trusted.
const divisionSchema = `{
	"type": "object",
	"required": ["division", "reasoning", "confidence"],
	"properties": {
		"division": {"type": "string"},
		"reasoning": {"type": "string"},
		"confidence": {"type": "number"}
	}
}`

// Adapter performs inference calls against the configured LLM client.
type Adapter struct {
	client   llm.Client
	store    *cache.Cache
	cacheTTL time.Duration
}

// NewAdapter creates an inference adapter. The client is required.
func NewAdapter(client llm.Client) (*Adapter, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	return &Adapter{client: client}, nil
}

// WithCache enables reuse of validated replies so repeated companies across
// cycles do not re-hit the model. A ttl <= 0 uses the default.
func (a *Adapter) WithCache(store *cache.Cache, ttl time.Duration) *Adapter {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	a.store = store
	a.cacheTTL = ttl
	return a
}

// Infer returns the inferred division for a job description, or nil on any
// failure (timeout, malformed reply, schema mismatch). Failures are logged.
func (a *Adapter) Infer(ctx context.Context, companyName, description string) *types.DivisionInference {
	if strings.TrimSpace(companyName) == "" || strings.TrimSpace(description) == "" {
		return nil
	}

	key := cache.Key("division", types.NormalizeCompanyName(companyName), description)
	if a.store != nil {
		if cached, ok := cache.GetJSON[types.DivisionInference](ctx, a.store, key); ok {
			return &cached
		}
	}

	reply, err := a.client.GenerateJSON(ctx, divisionPrompt(companyName, description), llm.TierLite)
	if err != nil {
		log.Printf("inference: division call failed for %s: %v", companyName, err)
		return nil
	}

	if err := validateAgainst(divisionSchema, reply); err != nil {
		log.Printf("inference: division reply rejected for %s: %v", companyName, err)
		return nil
	}

	var raw struct {
		Division   string  `json:"division"`
		Reasoning  string  `json:"reasoning"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		log.Printf("inference: division reply unparseable for %s: %v", companyName, err)
		return nil
	}

	inf := &types.DivisionInference{
		Division:   strings.TrimSpace(raw.Division),
		Reasoning:  strings.TrimSpace(raw.Reasoning),
		Confidence: clampConfidence(raw.Confidence),
	}
	if a.store != nil {
		cache.SetJSON(ctx, a.store, key, inf, a.cacheTTL)
	}
	return inf
}

func divisionPrompt(companyName, description string) string {
	if len(description) > maxDescriptionChars {
		description = description[:maxDescriptionChars]
	}

	var sb strings.Builder
	sb.WriteString("You are an organizational analyst. Given a job description, identify which internal division of the company is hiring for the role.\n\n")
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	sb.WriteString("  \"division\": \"string\", // the internal business unit, e.g. \"Enterprise Data & Analytics\"\n")
	sb.WriteString("  \"reasoning\": \"string\", // one or two sentences citing evidence from the description\n")
	sb.WriteString("  \"confidence\": number // 0-100, how certain you are\n")
	sb.WriteString("}\n\n")
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Base the division on evidence in the description, do not invent org structure.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")
	sb.WriteString(fmt.Sprintf("Company: %s\n\nJob description:\n\"\"\"\n%s\n\"\"\"\n", companyName, description))
	return sb.String()
}

// validateAgainst checks a JSON document against an embedded schema.
func validateAgainst(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to validate reply: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func clampConfidence(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v)
	}
}
