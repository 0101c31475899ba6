package agent

import (
	"context"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/data/vector"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
	"github.com/genegraph/genegraph-backend/internal/platform/openai"
)

const schemaWrapWidth = 60

// Router classifies a question and dispatches it to one of the two tools.
type Router struct {
	log        *logger.Logger
	llm        completer
	cfg        *Config
	disease    Tool
	downstream Tool
}

// New builds the router and both tools against live collaborators. The
// graph schema is read once here and reused for every question.
func New(ctx context.Context, log *logger.Logger, cfg *Config, db *neo4jdb.Client, llm openai.Client, index *vector.AnnotationIndex) (*Router, error) {
	schema, err := db.SchemaText(ctx, schemaWrapWidth)
	if err != nil {
		return nil, err
	}
	return NewRouter(log, cfg, llm,
		NewDiseaseAssociation(log, cfg, db, llm, schema),
		NewDownstreamInteraction(log, cfg, db, llm, index, schema),
	), nil
}

// NewRouter wires a router from already-built tools.
func NewRouter(log *logger.Logger, cfg *Config, llm completer, disease, downstream Tool) *Router {
	return &Router{
		log:        log.With("service", "QueryAgent"),
		llm:        llm,
		cfg:        cfg,
		disease:    disease,
		downstream: downstream,
	}
}

// Classify asks the model for the question's category and returns the raw
// response lowercased and trimmed.
func (r *Router) Classify(ctx context.Context, question string) (string, error) {
	system := renderPrompt(r.cfg.Prompts.ClassificationPrompt, map[string]string{"question": question})
	category, err := r.llm.Complete(ctx, system, question, 0, classifyMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(category)), nil
}

// SelectTool maps the classification to a tool. The "disease" substring is
// checked before "downstream"; a category containing neither yields a
// RoutingError.
func (r *Router) SelectTool(ctx context.Context, question string) (Tool, error) {
	category, err := r.Classify(ctx, question)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.Contains(category, "disease"):
		return r.disease, nil
	case strings.Contains(category, "downstream"):
		return r.downstream, nil
	default:
		return nil, &RoutingError{Question: question, Category: category}
	}
}

// Ask selects a tool and invokes it, propagating the tool's own result or
// failure.
func (r *Router) Ask(ctx context.Context, question string) (Answer, error) {
	tool, err := r.SelectTool(ctx, question)
	if err != nil {
		return Answer{}, err
	}
	r.log.Info("question routed", "tool", tool.Name())
	return tool.GenerateResponse(ctx, question)
}
