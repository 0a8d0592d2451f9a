package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/job-radar/internal/cache"
	"github.com/jonathan/job-radar/internal/llm"
	"github.com/jonathan/job-radar/internal/types"
)

// hierarchySchema validates the model's hierarchy reply.
const hierarchySchema = `{
	"type": "object",
	"required": ["hierarchy"],
	"properties": {
		"hierarchy": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "title"],
				"properties": {
					"name": {"type": "string"},
					"title": {"type": "string"}
				}
			}
		}
	}
}`

// nonPersonTokens lists names that mark an entry as not an actual person:
// pronouns, conjunctions, placeholders the model emits when it has no data,
// and bare role words used in place of a name. Matched case-insensitively
// against the trimmed name.
var nonPersonTokens = map[string]struct{}{
	"he":                 {},
	"she":                {},
	"they":               {},
	"and":                {},
	"or":                 {},
	"unknown":            {},
	"not provided":       {},
	"n/a":                {},
	"none":               {},
	"firstname lastname": {},
	"first last":         {},
	"open role":          {},
	"open position":      {},
	"lifelong learner":   {},
	"lead":               {},
	"manager":            {},
}

// ExtractHierarchy asks the model for the leadership chain of a company
// division, highest rank first. Returns nil on any failure; the result has
// not yet been through CleanHierarchy.
func (a *Adapter) ExtractHierarchy(ctx context.Context, companyName, division string) []types.HierarchyItem {
	if strings.TrimSpace(companyName) == "" {
		return nil
	}

	key := cache.Key("hierarchy", types.NormalizeCompanyName(companyName), division)
	if a.store != nil {
		if cached, ok := cache.GetJSON[[]types.HierarchyItem](ctx, a.store, key); ok {
			return cached
		}
	}

	reply, err := a.client.GenerateJSON(ctx, hierarchyPrompt(companyName, division), llm.TierStandard)
	if err != nil {
		log.Printf("inference: hierarchy call failed for %s: %v", companyName, err)
		return nil
	}

	if err := validateAgainst(hierarchySchema, reply); err != nil {
		log.Printf("inference: hierarchy reply rejected for %s: %v", companyName, err)
		return nil
	}

	var raw struct {
		Hierarchy []types.HierarchyItem `json:"hierarchy"`
	}
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		log.Printf("inference: hierarchy reply unparseable for %s: %v", companyName, err)
		return nil
	}

	if a.store != nil && len(raw.Hierarchy) > 0 {
		cache.SetJSON(ctx, a.store, key, raw.Hierarchy, a.cacheTTL)
	}
	return raw.Hierarchy
}

func hierarchyPrompt(companyName, division string) string {
	var sb strings.Builder
	sb.WriteString("You are an organizational analyst. List the known leadership of the company below, highest rank first.\n\n")
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n")
	sb.WriteString("{\n  \"hierarchy\": [{\"name\": \"string\", \"title\": \"string\"}]\n}\n\n")
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Only include real, named people you are confident about. Omit entries rather than guessing.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no code blocks.\n\n")
	sb.WriteString(fmt.Sprintf("Company: %s\n", companyName))
	if strings.TrimSpace(division) != "" {
		sb.WriteString(fmt.Sprintf("Division: %s\n", division))
	}
	return sb.String()
}

// CleanHierarchy drops entries whose name is not a person and trims the
// titles of the survivors. Pure: nil input yields an empty result and the
// input slice is never mutated. Order is preserved.
func CleanHierarchy(items []types.HierarchyItem) []types.HierarchyItem {
	cleaned := make([]types.HierarchyItem, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		if _, bad := nonPersonTokens[strings.ToLower(name)]; bad {
			continue
		}
		cleaned = append(cleaned, types.HierarchyItem{
			Name:  name,
			Title: strings.TrimSpace(item.Title),
		})
	}
	return cleaned
}
