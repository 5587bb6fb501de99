package pipeline

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/disclosure-backend/internal/platform/envutil"
)

const (
	promptOverrideEnv   = "EXTRACTION_PROMPT_YAML"
	documentPlaceholder = "{document_text}"
)

//go:embed prompts.yaml
var embeddedPrompt []byte

// Prompt is the system/user message pair sent to the structured extractor.
type Prompt struct {
	Version int    `yaml:"version"`
	Name    string `yaml:"name"`
	System  string `yaml:"system"`
	User    string `yaml:"user"`
}

// LoadPrompt reads the prompt from EXTRACTION_PROMPT_YAML when set, else the
// embedded default.
func LoadPrompt() (Prompt, error) {
	data := embeddedPrompt
	if path := envutil.String(promptOverrideEnv, ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Prompt{}, fmt.Errorf("read %s: %w", promptOverrideEnv, err)
		}
		data = b
	}
	return ParsePrompt(data)
}

func ParsePrompt(data []byte) (Prompt, error) {
	var p Prompt
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prompt{}, fmt.Errorf("parse prompt yaml: %w", err)
	}
	if strings.TrimSpace(p.System) == "" {
		return Prompt{}, errors.New("prompt: system message is empty")
	}
	if !strings.Contains(p.User, documentPlaceholder) {
		return Prompt{}, fmt.Errorf("prompt: user message must contain %s", documentPlaceholder)
	}
	return p, nil
}

// Render substitutes the document text into the user message.
func (p Prompt) Render(documentText string) string {
	return strings.Replace(p.User, documentPlaceholder, documentText, 1)
}
