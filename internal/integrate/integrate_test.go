package integrate

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/genegraph/genegraph-backend/internal/domain"
	"github.com/genegraph/genegraph-backend/internal/platform/geneontology"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

type fakeTermClient struct {
	mu      sync.Mutex
	calls   map[string]int
	failing map[string]bool
}

func newFakeTermClient(failing ...string) *fakeTermClient {
	f := &fakeTermClient{calls: map[string]int{}, failing: map[string]bool{}}
	for _, id := range failing {
		f.failing[id] = true
	}
	return f
}

func (f *fakeTermClient) LookupTerm(_ context.Context, goID string) (geneontology.Term, error) {
	f.mu.Lock()
	f.calls[goID]++
	f.mu.Unlock()
	if f.failing[goID] {
		return geneontology.Term{}, fmt.Errorf("lookup %s: http 500", goID)
	}
	label := "label of " + goID
	definition := "definition of " + goID
	return geneontology.Term{Label: &label, Definition: &definition}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testPathway() *domain.Pathway {
	return &domain.Pathway{
		ID:   "04930",
		Name: "Type II diabetes mellitus",
		Genes: []domain.PathwayEntry{
			{EntryID: "23", Type: domain.EntryGene, Symbols: []string{"INS", "IDDM2"}},
			{EntryID: "24", Type: domain.EntryGene, Symbols: []string{"INSR"}},
			{EntryID: "99", Type: domain.EntryGene, Symbols: []string{"NOMATCH"}},
		},
	}
}

func testAnnotations() []domain.AnnotationRecord {
	return []domain.AnnotationRecord{
		{Qualifier: "enables", GOID: "GO:0005179", Aspect: "F", ObjectType: "protein",
			ObjectName: "Insulin", Synonyms: []string{"INS", "IDDM2"}},
		{Qualifier: "involved_in", GOID: "GO:0008152", Aspect: "P", ObjectType: "protein",
			ObjectName: "Insulin precursor", Synonyms: []string{"INS"}},
		{Qualifier: "enables", GOID: "GO:0005009", Aspect: "F", ObjectType: "protein",
			ObjectName: "Insulin receptor", Synonyms: []string{"INSR", "CD220"}},
	}
}

func TestIntegrateExcludesOrphanGenes(t *testing.T) {
	engine := NewEngine(testLogger(t), newFakeTermClient())
	records, err := engine.Integrate(context.Background(), testPathway(), testAnnotations(), Options{})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	for _, rec := range records {
		if rec.GeneID == "99" {
			t.Fatalf("orphan gene produced a record: %+v", rec)
		}
	}
}

func TestIntegrateOneRecordPerTripleWithAggregatedSets(t *testing.T) {
	engine := NewEngine(testLogger(t), newFakeTermClient())
	records, err := engine.Integrate(context.Background(), testPathway(), testAnnotations(), Options{})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	// Gene 23 matches annotation 1 twice (INS and IDDM2) and annotation 2
	// once, so it yields two distinct triples; gene 24 yields one.
	if len(records) != 3 {
		t.Fatalf("records: want=3 got=%d", len(records))
	}

	var gene23 []domain.IntegratedGeneRecord
	for _, rec := range records {
		if rec.GeneID == "23" {
			gene23 = append(gene23, rec)
		}
	}
	if len(gene23) != 2 {
		t.Fatalf("gene 23 triples: want=2 got=%d", len(gene23))
	}

	wantNames := []string{"Insulin", "Insulin precursor"}
	wantSynonyms := []string{"IDDM2", "INS"}
	for _, rec := range gene23 {
		if !reflect.DeepEqual(rec.Names, wantNames) {
			t.Fatalf("gene 23 names: want=%v got=%v", wantNames, rec.Names)
		}
		if !reflect.DeepEqual(rec.Synonyms, wantSynonyms) {
			t.Fatalf("gene 23 synonyms: want=%v got=%v", wantSynonyms, rec.Synonyms)
		}
	}
}

func TestIntegrateAspectRemap(t *testing.T) {
	engine := NewEngine(testLogger(t), newFakeTermClient())
	vocab := map[string]string{"F": "molecular_function", "P": "biological_process"}
	records, err := engine.Integrate(context.Background(), testPathway(), testAnnotations(), Options{AspectVocabulary: vocab})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	for _, rec := range records {
		if rec.Aspect != "molecular_function" && rec.Aspect != "biological_process" {
			t.Fatalf("aspect not remapped: got=%q", rec.Aspect)
		}
	}

	// Unmapped codes pass through.
	records, err = engine.Integrate(context.Background(), testPathway(), testAnnotations(),
		Options{AspectVocabulary: map[string]string{"F": "molecular_function"}})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	foundPassthrough := false
	for _, rec := range records {
		if rec.Aspect == "P" {
			foundPassthrough = true
		}
	}
	if !foundPassthrough {
		t.Fatalf("unmapped aspect should pass through unchanged")
	}
}

func TestIntegrateEnrichmentFailureDegradesPerID(t *testing.T) {
	engine := NewEngine(testLogger(t), newFakeTermClient("GO:0008152"))
	records, err := engine.Integrate(context.Background(), testPathway(), testAnnotations(), Options{})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	for _, rec := range records {
		if rec.GOID == "GO:0008152" {
			if rec.GOLabel != nil || rec.GODefinition != nil {
				t.Fatalf("failed lookup should yield nil term text: %+v", rec)
			}
			continue
		}
		if rec.GOLabel == nil || rec.GODefinition == nil {
			t.Fatalf("successful lookup lost term text: %+v", rec)
		}
	}
}

func TestEnrichTermsDeduplicatesLookups(t *testing.T) {
	client := newFakeTermClient()
	ids := []string{"GO:1", "GO:2", "GO:1", "GO:2", "GO:3", ""}
	terms := EnrichTerms(context.Background(), client, testLogger(t), ids, 2)

	if len(terms) != 3 {
		t.Fatalf("terms: want=3 got=%d", len(terms))
	}
	for id, n := range client.calls {
		if n != 1 {
			t.Fatalf("lookup count for %s: want=1 got=%d", id, n)
		}
	}
	if terms["GO:3"].Label == nil || *terms["GO:3"].Label != "label of GO:3" {
		t.Fatalf("term GO:3: got=%+v", terms["GO:3"])
	}
}
