package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
)

const (
	answerMaxTokens   = 500
	classifyMaxTokens = 10
)

// Answer is the result of one tool invocation. Disease questions fill
// Text; downstream questions fill Paths unless the sentinel applies.
type Answer struct {
	Text  string     `json:"text,omitempty"`
	Paths [][]string `json:"paths,omitempty"`
}

// Tool is one variant of the agent, selected by the routing classifier.
type Tool interface {
	Name() string
	GenerateResponse(ctx context.Context, question string) (Answer, error)
}

// graphRunner is the slice of the Neo4j client the tools need.
type graphRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// completer is the slice of the LLM client the tools need.
type completer interface {
	Complete(ctx context.Context, system string, user string, temperature float64, maxTokens int) (string, error)
}

// base carries the query-generation/execution cycle shared by both tools.
type base struct {
	log    *logger.Logger
	graph  graphRunner
	llm    completer
	schema string
}

// generate renders the template with vars plus the question and sends it as
// the system prompt, with the question as the user turn.
func (b *base) generate(ctx context.Context, template, question string, vars map[string]string, temperature float64) (string, error) {
	merged := map[string]string{"question": question}
	for k, v := range vars {
		merged[k] = v
	}
	system := renderPrompt(template, merged)
	return b.llm.Complete(ctx, system, question, temperature, answerMaxTokens)
}

// runQuery executes a generated Cypher statement. On a syntax error it
// regenerates the statement once from the error message and re-executes;
// a second failure is fatal for the question.
func (b *base) runQuery(ctx context.Context, prompts PromptSet, question, cypher string) ([]map[string]any, error) {
	rows, err := b.graph.Run(ctx, stripFences(cypher), nil)
	if err == nil {
		return rows, nil
	}
	if !neo4jdb.IsSyntaxError(err) {
		return nil, err
	}

	b.log.Warn("generated cypher rejected; regenerating once", "error", err)
	corrected, genErr := b.generate(ctx, prompts.RetryPrompt, question, map[string]string{
		"cypher_statement": cypher,
		"error_message":    err.Error(),
	}, 0)
	if genErr != nil {
		return nil, fmt.Errorf("agent: regenerate query: %w", genErr)
	}

	rows, err = b.graph.Run(ctx, stripFences(corrected), nil)
	if err != nil {
		return nil, fmt.Errorf("agent: regenerated query failed: %w", err)
	}
	return rows, nil
}

// stripFences removes markdown code fences the model sometimes wraps
// statements in despite instructions.
func stripFences(cypher string) string {
	s := strings.TrimSpace(cypher)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "cypher")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// formatRows renders query results for interpolation into a prompt.
func formatRows(rows []map[string]any) string {
	b, err := json.Marshal(rows)
	if err != nil {
		return fmt.Sprintf("%v", rows)
	}
	return string(b)
}
