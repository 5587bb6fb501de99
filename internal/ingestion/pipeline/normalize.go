package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/yungbote/disclosure-backend/internal/domain"
)

const unknownInventor = "Unknown"

var requiredFields = []string{"title", "description", "key_differences"}

// stripFences removes a surrounding ```json / ``` markdown fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeFields(raw string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &fields); err != nil {
		return nil, fmt.Errorf("%w: Invalid JSON response from AI: %v", types.ErrMalformedExtraction, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: Invalid JSON response from AI: not an object", types.ErrMalformedExtraction)
	}
	return fields, nil
}

func normalize(fields map[string]any) (*types.ExtractionResult, error) {
	text := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		v := textValue(fields[name])
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: Missing required field: %s", types.ErrIncompleteExtraction, name)
		}
		text[name] = v
	}
	return &types.ExtractionResult{
		Title:          text["title"],
		Description:    text["description"],
		KeyDifferences: text["key_differences"],
		Inventors:      inventors(fields["inventors"]),
	}, nil
}

// textValue flattens a model field to text. Lists become one bullet per line.
func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, "• "+scalarString(item))
		}
		return strings.Join(lines, "\n")
	default:
		return scalarString(val)
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64, bool:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func inventors(v any) []types.ExtractedInventor {
	list, ok := v.([]any)
	if !ok {
		return []types.ExtractedInventor{}
	}
	out := make([]types.ExtractedInventor, 0, len(list))
	for _, item := range list {
		switch val := item.(type) {
		case map[string]any:
			inv := types.ExtractedInventor{Name: unknownInventor}
			if name, _ := val["name"].(string); strings.TrimSpace(name) != "" {
				inv.Name = strings.TrimSpace(name)
			}
			if email, _ := val["email"].(string); strings.TrimSpace(email) != "" {
				e := strings.TrimSpace(email)
				inv.Email = &e
			}
			out = append(out, inv)
		case string:
			name := strings.TrimSpace(val)
			if name == "" {
				name = unknownInventor
			}
			out = append(out, types.ExtractedInventor{Name: name})
		}
	}
	return out
}
