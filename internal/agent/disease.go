package agent

import (
	"context"

	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

// DiseaseAssociation answers questions about which genes and annotations
// are associated with a disease.
type DiseaseAssociation struct {
	base
	prompts PromptSet
}

func NewDiseaseAssociation(log *logger.Logger, cfg *Config, graph graphRunner, llm completer, schema string) *DiseaseAssociation {
	return &DiseaseAssociation{
		base: base{
			log:    log.With("tool", "disease_association"),
			graph:  graph,
			llm:    llm,
			schema: schema,
		},
		prompts: cfg.Prompts.DiseaseAssociation,
	}
}

func (t *DiseaseAssociation) Name() string { return "disease_association" }

func (t *DiseaseAssociation) GenerateResponse(ctx context.Context, question string) (Answer, error) {
	cypher, err := t.generate(ctx, t.prompts.InitialPrompt, question, map[string]string{"schema": t.schema}, 0)
	if err != nil {
		return Answer{}, err
	}

	rows, err := t.runQuery(ctx, t.prompts, question, cypher)
	if err != nil {
		return Answer{}, err
	}

	final, err := t.generate(ctx, t.prompts.FinalPrompt, question, map[string]string{"information": formatRows(rows)}, 0)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: final}, nil
}
