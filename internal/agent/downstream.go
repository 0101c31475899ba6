package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/genegraph/genegraph-backend/internal/data/vector"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

// NotFoundAnswer is returned when a downstream query matches no paths.
// Callers special-case this value instead of an empty path list.
const NotFoundAnswer = "I could not find the answer in the database. Please try again."

// searcher is the slice of the annotation index the tool needs.
type searcher interface {
	Search(ctx context.Context, query string, k int, goIDs []string) ([]vector.Match, error)
}

// DownstreamInteraction answers questions about interaction chains
// downstream of a gene.
type DownstreamInteraction struct {
	base
	prompts PromptSet
	types   map[string]string
	index   searcher
}

func NewDownstreamInteraction(log *logger.Logger, cfg *Config, graph graphRunner, llm completer, index searcher, schema string) *DownstreamInteraction {
	return &DownstreamInteraction{
		base: base{
			log:    log.With("tool", "downstream_interaction"),
			graph:  graph,
			llm:    llm,
			schema: schema,
		},
		prompts: cfg.Prompts.DownstreamInteraction,
		types:   cfg.InteractionTypes,
		index:   index,
	}
}

func (t *DownstreamInteraction) Name() string { return "downstream_interaction" }

func (t *DownstreamInteraction) GenerateResponse(ctx context.Context, question string) (Answer, error) {
	cypher, err := t.generate(ctx, t.prompts.InitialPrompt, question, map[string]string{"schema": t.schema}, 0)
	if err != nil {
		return Answer{}, err
	}

	rows, err := t.runQuery(ctx, t.prompts, question, cypher)
	if err != nil {
		return Answer{}, err
	}

	paths := extractPaths(rows)
	if len(paths) == 0 {
		return Answer{Text: NotFoundAnswer}, nil
	}

	// Identical interactions recur across paths; describe each distinct
	// structure once per invocation.
	described := make(map[string]string)
	out := make([][]string, 0, len(paths))
	for _, path := range paths {
		descriptions := make([]string, 0, len(path))
		for _, interaction := range path {
			key := interactionKey(interaction)
			if desc, ok := described[key]; ok {
				descriptions = append(descriptions, desc)
				continue
			}
			desc, err := t.describeInteraction(ctx, interaction)
			if err != nil {
				return Answer{}, err
			}
			described[key] = desc
			descriptions = append(descriptions, desc)
		}
		out = append(out, descriptions)
	}
	return Answer{Paths: out}, nil
}

// describeInteraction looks up the start gene's annotation ids, finds the
// closest annotation text for the interaction, and turns it into a
// sentence.
func (t *DownstreamInteraction) describeInteraction(ctx context.Context, interaction map[string]any) (string, error) {
	start := propsMap(interaction["start"])
	end := propsMap(interaction["end"])

	goIDs, err := t.annotationIDs(ctx, asString(start["unique_id"]))
	if err != nil {
		return "", err
	}

	startNames := joinList(start["names"])
	endNames := joinList(end["names"])
	// An empty id set must not widen the search to the whole index.
	if len(goIDs) == 0 {
		return "", fmt.Errorf("agent: no annotation ids for gene %s; cannot describe %s -> %s",
			asString(start["unique_id"]), startNames, endNames)
	}
	query := fmt.Sprintf("%s, %s, %s, %s",
		startNames,
		joinList(interaction["subtypes"]),
		endNames,
		t.types[asString(interaction["type"])],
	)

	matches, err := t.index.Search(ctx, query, 1, goIDs)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("agent: no annotation text for interaction %s -> %s", startNames, endNames)
	}

	question := fmt.Sprintf("Please describe the interaction of %s with %s using the description %s.",
		startNames, endNames, matches[0].Text)
	return t.generate(ctx, t.prompts.FinalPrompt, question, nil, 0)
}

func (t *DownstreamInteraction) annotationIDs(ctx context.Context, uniqueID string) ([]string, error) {
	rows, err := t.graph.Run(ctx, `
		MATCH (g:Gene {unique_id: $unique_id})-[:HAS_GO_ANNOTATION]->(a:GO_Annotation)
		RETURN collect(a.GO_ID) AS GO_ID`, map[string]any{"unique_id": uniqueID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return stringList(rows[0]["GO_ID"]), nil
}

// extractPaths reads the "interactions" field of the first result row: a
// list of paths, each a list of interaction maps. Malformed entries are
// dropped rather than erroring, so a partially usable result still yields
// descriptions.
func extractPaths(rows []map[string]any) [][]map[string]any {
	if len(rows) == 0 {
		return nil
	}
	rawPaths, ok := rows[0]["interactions"].([]any)
	if !ok {
		return nil
	}
	paths := make([][]map[string]any, 0, len(rawPaths))
	for _, rawPath := range rawPaths {
		elems, ok := rawPath.([]any)
		if !ok {
			continue
		}
		path := make([]map[string]any, 0, len(elems))
		for _, elem := range elems {
			if m, ok := elem.(map[string]any); ok {
				path = append(path, m)
			}
		}
		if len(path) > 0 {
			paths = append(paths, path)
		}
	}
	return paths
}

func propsMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case dbtype.Node:
		return t.Props
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func joinList(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return strings.Join(stringList(v), ", ")
}
