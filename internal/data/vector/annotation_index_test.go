package vector

import (
	"context"
	"testing"

	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, 0, len(inputs))
	for _, in := range inputs {
		v, ok := f.vectors[in]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out = append(out, v)
	}
	return out, nil
}

func testIndex(t *testing.T) *AnnotationIndex {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	embed := &fakeEmbedder{vectors: map[string][]float32{
		"binding": {1, 0, 0},
	}}
	idx := &AnnotationIndex{
		log:   log,
		embed: embed,
		entries: []Entry{
			{GOID: "GO:0000001", Text: "enables, kinase activity", Vector: []float32{1, 0, 0}},
			{GOID: "GO:0000002", Text: "involved_in, apoptosis", Vector: []float32{0, 1, 0}},
			{GOID: "GO:0000003", Text: "located_in, nucleus", Vector: []float32{0.9, 0.1, 0}},
		},
		byGOID: map[string][]int{
			"GO:0000001": {0},
			"GO:0000002": {1},
			"GO:0000003": {2},
		},
	}
	return idx
}

func TestAnnotationText(t *testing.T) {
	got := AnnotationText("enables", "kinase activity", "", "molecular_function")
	want := "enables, kinase activity, molecular_function"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestSearchRanksByCosine(t *testing.T) {
	idx := testIndex(t)

	matches, err := idx.Search(context.Background(), "binding", 2, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("want 2 matches, got %d", len(matches))
	}
	if matches[0].GOID != "GO:0000001" {
		t.Fatalf("want GO:0000001 first, got %s", matches[0].GOID)
	}
	if matches[1].GOID != "GO:0000003" {
		t.Fatalf("want GO:0000003 second, got %s", matches[1].GOID)
	}
}

func TestSearchFiltersByGOID(t *testing.T) {
	idx := testIndex(t)

	matches, err := idx.Search(context.Background(), "binding", 5, []string{"GO:0000002"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("want 1 match, got %d", len(matches))
	}
	if matches[0].GOID != "GO:0000002" {
		t.Fatalf("want GO:0000002, got %s", matches[0].GOID)
	}
}

func TestSearchEmptyFilterSetWithUnknownID(t *testing.T) {
	idx := testIndex(t)

	matches, err := idx.Search(context.Background(), "binding", 5, []string{"GO:9999999"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("want no matches, got %d", len(matches))
	}
}
