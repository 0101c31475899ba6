package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

type scriptedCompleter struct {
	replies []string
	calls   int
}

func (c *scriptedCompleter) Complete(_ context.Context, _ string, _ string, _ float64, _ int) (string, error) {
	if c.calls >= len(c.replies) {
		return "", errors.New("no scripted reply left")
	}
	reply := c.replies[c.calls]
	c.calls++
	return reply, nil
}

type stubTool struct {
	name   string
	answer Answer
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) GenerateResponse(context.Context, string) (Answer, error) {
	return s.answer, nil
}

func testRouter(t *testing.T, llm completer) *Router {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	disease := &stubTool{name: "disease_association", answer: Answer{Text: "disease answer"}}
	downstream := &stubTool{name: "downstream_interaction", answer: Answer{Paths: [][]string{{"step"}}}}
	return NewRouter(log, cfg, llm, disease, downstream)
}

func TestSelectToolDiseaseQuestion(t *testing.T) {
	r := testRouter(t, &scriptedCompleter{replies: []string{"Disease"}})

	tool, err := r.SelectTool(context.Background(), "What genes are associated with Type II diabetes?")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if tool.Name() != "disease_association" {
		t.Fatalf("want disease_association, got %s", tool.Name())
	}
}

func TestSelectToolDownstreamQuestion(t *testing.T) {
	r := testRouter(t, &scriptedCompleter{replies: []string{"downstream"}})

	tool, err := r.SelectTool(context.Background(), "What happens downstream of gene INS?")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if tool.Name() != "downstream_interaction" {
		t.Fatalf("want downstream_interaction, got %s", tool.Name())
	}
}

func TestSelectToolDiseaseWinsWhenBothAppear(t *testing.T) {
	r := testRouter(t, &scriptedCompleter{replies: []string{"downstream disease"}})

	tool, err := r.SelectTool(context.Background(), "ambiguous")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if tool.Name() != "disease_association" {
		t.Fatalf("want disease precedence, got %s", tool.Name())
	}
}

func TestSelectToolRoutingError(t *testing.T) {
	r := testRouter(t, &scriptedCompleter{replies: []string{"other"}})

	_, err := r.SelectTool(context.Background(), "What is the weather today?")
	var routingErr *RoutingError
	if !errors.As(err, &routingErr) {
		t.Fatalf("want RoutingError, got %v", err)
	}
	if routingErr.Category != "other" {
		t.Fatalf("want category other, got %q", routingErr.Category)
	}
}

func TestAskPropagatesToolAnswer(t *testing.T) {
	r := testRouter(t, &scriptedCompleter{replies: []string{"disease"}})

	ans, err := r.Ask(context.Background(), "What genes are associated with Type II diabetes?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if ans.Text != "disease answer" {
		t.Fatalf("want disease answer, got %q", ans.Text)
	}
}

func TestEvaluateToolSelection(t *testing.T) {
	llm := &scriptedCompleter{replies: []string{"disease", "downstream", "other", "downstream"}}
	r := testRouter(t, llm)

	dataset := []LabeledQuestion{
		{Question: "q1", Label: "disease_association"},
		{Question: "q2", Label: "downstream_interaction"},
		{Question: "q3", Label: "none"},
		{Question: "q4", Label: "disease_association"},
	}
	accuracy, err := r.EvaluateToolSelection(context.Background(), dataset)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if accuracy != 0.75 {
		t.Fatalf("want accuracy 0.75, got %v", accuracy)
	}
}
