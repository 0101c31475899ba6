package agent

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/genegraph/genegraph-backend/internal/platform/envutil"
)

//go:embed config.yaml
var defaultConfigYAML []byte

// PromptSet holds the templates one tool cycles through.
type PromptSet struct {
	InitialPrompt    string `yaml:"initial_prompt"`
	FinalPrompt      string `yaml:"final_prompt"`
	RetryPrompt      string `yaml:"retry_prompt"`
	EvaluationPrompt string `yaml:"evaluation_prompt"`
}

// Config is the agent's static configuration, loaded once at construction.
type Config struct {
	Prompts struct {
		ClassificationPrompt  string    `yaml:"classification_prompt"`
		DiseaseAssociation    PromptSet `yaml:"disease_association"`
		DownstreamInteraction PromptSet `yaml:"downstream_interaction"`
	} `yaml:"prompts"`
	// InteractionTypes maps pathway relation type codes to readable labels.
	InteractionTypes map[string]string `yaml:"interaction_type_dict"`
}

// LoadConfig reads AGENT_CONFIG_PATH when set, otherwise the embedded
// default.
func LoadConfig() (*Config, error) {
	raw := defaultConfigYAML
	if path := envutil.String("AGENT_CONFIG_PATH", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("agent: read config %s: %w", path, err)
		}
		raw = b
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("agent: parse config: %w", err)
	}
	if cfg.Prompts.ClassificationPrompt == "" {
		return nil, fmt.Errorf("agent: config missing prompts.classification_prompt")
	}
	for context, set := range map[string]PromptSet{
		"disease_association":    cfg.Prompts.DiseaseAssociation,
		"downstream_interaction": cfg.Prompts.DownstreamInteraction,
	} {
		if set.InitialPrompt == "" || set.FinalPrompt == "" || set.RetryPrompt == "" {
			return nil, fmt.Errorf("agent: config missing prompts for context %q", context)
		}
	}
	return &cfg, nil
}

// renderPrompt substitutes {name} placeholders. Unknown placeholders are
// left in place so a template typo shows up in the rendered text.
func renderPrompt(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}
