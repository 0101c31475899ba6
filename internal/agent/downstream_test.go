package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/genegraph/genegraph-backend/internal/data/vector"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

type fakeGraph struct {
	pathRows    []map[string]any
	goRows      []map[string]any
	failures    int
	queryCalls  int
	goCalls     int
	lastQueries []string
}

func (g *fakeGraph) Run(_ context.Context, cypher string, _ map[string]any) ([]map[string]any, error) {
	if strings.Contains(cypher, "HAS_GO_ANNOTATION") {
		g.goCalls++
		return []map[string]any{g.goRows[0]}, nil
	}
	g.queryCalls++
	g.lastQueries = append(g.lastQueries, cypher)
	if g.failures > 0 {
		g.failures--
		return nil, &db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad query"}
	}
	return []map[string]any{g.pathRows[0]}, nil
}

type countingSearcher struct {
	calls   int
	queries []string
}

func (s *countingSearcher) Search(_ context.Context, query string, _ int, _ []string) ([]vector.Match, error) {
	s.calls++
	s.queries = append(s.queries, query)
	return []vector.Match{{GOID: "GO:0000001", Text: "enables, kinase activity", Score: 0.9}}, nil
}

func testDownstream(t *testing.T, graph graphRunner, llm completer, index searcher) *DownstreamInteraction {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return NewDownstreamInteraction(log, cfg, graph, llm, index, "Gene, GO_Annotation")
}

func interactionFixture() map[string]any {
	return map[string]any{
		"type":     "PPrel",
		"subtypes": []any{"activation"},
		"start": map[string]any{
			"unique_id": "04930_23",
			"names":     []any{"INS"},
		},
		"end": map[string]any{
			"unique_id": "04930_40",
			"names":     []any{"INSR"},
		},
	}
}

func TestGenerateResponseNoPathsReturnsSentinel(t *testing.T) {
	graph := &fakeGraph{pathRows: []map[string]any{{"interactions": []any{}}}}
	llm := &scriptedCompleter{replies: []string{"MATCH (g) RETURN g"}}
	tool := testDownstream(t, graph, llm, &countingSearcher{})

	ans, err := tool.GenerateResponse(context.Background(), "What happens downstream of gene INS?")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ans.Text != NotFoundAnswer {
		t.Fatalf("want sentinel, got %q", ans.Text)
	}
	if len(ans.Paths) != 0 {
		t.Fatalf("want no paths alongside sentinel, got %d", len(ans.Paths))
	}
}

func TestGenerateResponseDeduplicatesInteractions(t *testing.T) {
	// The same interaction appears twice in one path and once in another;
	// it must be described exactly once.
	graph := &fakeGraph{
		pathRows: []map[string]any{{
			"interactions": []any{
				[]any{interactionFixture(), interactionFixture()},
				[]any{interactionFixture()},
			},
		}},
		goRows: []map[string]any{{"GO_ID": []any{"GO:0000001"}}},
	}
	llm := &scriptedCompleter{replies: []string{
		"MATCH (g) RETURN g",
		"INS activates INSR.",
	}}
	index := &countingSearcher{}
	tool := testDownstream(t, graph, llm, index)

	ans, err := tool.GenerateResponse(context.Background(), "What happens downstream of gene INS?")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if index.calls != 1 {
		t.Fatalf("want 1 similarity search, got %d", index.calls)
	}
	if graph.goCalls != 1 {
		t.Fatalf("want 1 annotation lookup, got %d", graph.goCalls)
	}
	want := [][]string{
		{"INS activates INSR.", "INS activates INSR."},
		{"INS activates INSR."},
	}
	if len(ans.Paths) != len(want) {
		t.Fatalf("want %d paths, got %d", len(want), len(ans.Paths))
	}
	for i := range want {
		if len(ans.Paths[i]) != len(want[i]) {
			t.Fatalf("path %d: want %d steps, got %d", i, len(want[i]), len(ans.Paths[i]))
		}
		for j := range want[i] {
			if ans.Paths[i][j] != want[i][j] {
				t.Fatalf("path %d step %d: want %q, got %q", i, j, want[i][j], ans.Paths[i][j])
			}
		}
	}
}

func TestGenerateResponseUnannotatedStartGeneIsFatal(t *testing.T) {
	// A start gene with no annotation edges must not fall back to an
	// unrestricted index scan.
	graph := &fakeGraph{
		pathRows: []map[string]any{{
			"interactions": []any{[]any{interactionFixture()}},
		}},
		goRows: []map[string]any{{"GO_ID": []any{}}},
	}
	llm := &scriptedCompleter{replies: []string{"MATCH (g) RETURN g"}}
	index := &countingSearcher{}
	tool := testDownstream(t, graph, llm, index)

	if _, err := tool.GenerateResponse(context.Background(), "What happens downstream of gene INS?"); err == nil {
		t.Fatalf("want error for unannotated start gene")
	}
	if index.calls != 0 {
		t.Fatalf("want no similarity search, got %d", index.calls)
	}
}

func TestGenerateResponseSearchQueryShape(t *testing.T) {
	graph := &fakeGraph{
		pathRows: []map[string]any{{
			"interactions": []any{[]any{interactionFixture()}},
		}},
		goRows: []map[string]any{{"GO_ID": []any{"GO:0000001"}}},
	}
	llm := &scriptedCompleter{replies: []string{
		"MATCH (g) RETURN g",
		"INS activates INSR.",
	}}
	index := &countingSearcher{}
	tool := testDownstream(t, graph, llm, index)

	if _, err := tool.GenerateResponse(context.Background(), "What happens downstream of gene INS?"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(index.queries) != 1 {
		t.Fatalf("want 1 search query, got %d", len(index.queries))
	}
	want := "INS, activation, INSR, protein-protein interaction"
	if index.queries[0] != want {
		t.Fatalf("want search query %q, got %q", want, index.queries[0])
	}
}

func TestRunQueryRetriesOnceOnSyntaxError(t *testing.T) {
	graph := &fakeGraph{
		failures: 1,
		pathRows: []map[string]any{{"interactions": []any{}}},
	}
	llm := &scriptedCompleter{replies: []string{
		"MTACH (g) RETURN g",
		"MATCH (g) RETURN g",
	}}
	tool := testDownstream(t, graph, llm, &countingSearcher{})

	ans, err := tool.GenerateResponse(context.Background(), "What happens downstream of gene INS?")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ans.Text != NotFoundAnswer {
		t.Fatalf("want sentinel after recovered retry, got %q", ans.Text)
	}
	if graph.queryCalls != 2 {
		t.Fatalf("want 2 query executions, got %d", graph.queryCalls)
	}
	if graph.lastQueries[1] != "MATCH (g) RETURN g" {
		t.Fatalf("want regenerated statement executed, got %q", graph.lastQueries[1])
	}
}

func TestRunQuerySecondSyntaxErrorIsFatal(t *testing.T) {
	graph := &fakeGraph{failures: 2}
	llm := &scriptedCompleter{replies: []string{
		"MTACH (g) RETURN g",
		"MTACH (g) RETURN g",
	}}
	tool := testDownstream(t, graph, llm, &countingSearcher{})

	if _, err := tool.GenerateResponse(context.Background(), "What happens downstream of gene INS?"); err == nil {
		t.Fatalf("want error after second syntax failure")
	}
	if graph.queryCalls != 2 {
		t.Fatalf("want exactly 2 query executions, got %d", graph.queryCalls)
	}
}
