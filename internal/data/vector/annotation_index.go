package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
)

const embedBatchSize = 64

// Embedder is the slice of the OpenAI client the index needs.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Entry is one indexed annotation.
type Entry struct {
	GOID   string
	Text   string
	Vector []float32
}

// Match is a search hit.
type Match struct {
	GOID  string
	Text  string
	Score float64
}

// AnnotationIndex holds an in-memory embedding index over every
// GO_Annotation node. It is built once at startup and is read-only
// afterwards, so Search needs no locking.
type AnnotationIndex struct {
	log     *logger.Logger
	embed   Embedder
	entries []Entry
	byGOID  map[string][]int
}

// AnnotationText renders the node properties into the string that gets
// embedded.
func AnnotationText(qualifier, name, definition, aspect string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{qualifier, name, definition, aspect} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// BuildAnnotationIndex reads every GO_Annotation node, embeds its text and
// writes the embedding back onto the node.
func BuildAnnotationIndex(ctx context.Context, log *logger.Logger, client *neo4jdb.Client, embed Embedder) (*AnnotationIndex, error) {
	rows, err := client.Run(ctx, `
		MATCH (a:GO_Annotation)
		RETURN a.GO_ID AS go_id,
		       coalesce(a.qualifier, '') AS qualifier,
		       coalesce(a.name, '') AS name,
		       coalesce(a.definition, '') AS definition,
		       coalesce(a.aspect, '') AS aspect`, nil)
	if err != nil {
		return nil, fmt.Errorf("vector: load annotations: %w", err)
	}

	idx := &AnnotationIndex{
		log:    log.With("component", "AnnotationIndex"),
		embed:  embed,
		byGOID: make(map[string][]int),
	}
	for _, row := range rows {
		goID, _ := row["go_id"].(string)
		if goID == "" {
			continue
		}
		text := AnnotationText(
			asString(row["qualifier"]),
			asString(row["name"]),
			asString(row["definition"]),
			asString(row["aspect"]),
		)
		idx.entries = append(idx.entries, Entry{GOID: goID, Text: text})
	}

	if err := idx.embedAll(ctx); err != nil {
		return nil, err
	}
	for i, e := range idx.entries {
		idx.byGOID[e.GOID] = append(idx.byGOID[e.GOID], i)
	}
	if err := idx.persist(ctx, client); err != nil {
		idx.log.Warn("embedding writeback failed", "error", err)
	}
	idx.log.Info("annotation index built", "entries", len(idx.entries))
	return idx, nil
}

func (idx *AnnotationIndex) embedAll(ctx context.Context) error {
	for start := 0; start < len(idx.entries); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(idx.entries) {
			end = len(idx.entries)
		}
		texts := make([]string, 0, end-start)
		for _, e := range idx.entries[start:end] {
			texts = append(texts, e.Text)
		}
		vectors, err := idx.embed.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("vector: embed batch at %d: %w", start, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("vector: embed batch at %d: want %d vectors, got %d", start, len(texts), len(vectors))
		}
		for i := range vectors {
			idx.entries[start+i].Vector = vectors[i]
		}
	}
	return nil
}

func (idx *AnnotationIndex) persist(ctx context.Context, client *neo4jdb.Client) error {
	rows := make([]map[string]any, 0, len(idx.entries))
	for _, e := range idx.entries {
		rows = append(rows, map[string]any{"go_id": e.GOID, "embedding": toFloat64s(e.Vector)})
	}
	_, err := client.Run(ctx, `
		UNWIND $rows AS row
		MATCH (a:GO_Annotation {GO_ID: row.go_id})
		SET a.embedding = row.embedding`, map[string]any{"rows": rows})
	return err
}

// Search embeds the query and returns the top k entries by cosine
// similarity. When goIDs is non-empty only entries with one of those ids
// are considered.
func (idx *AnnotationIndex) Search(ctx context.Context, query string, k int, goIDs []string) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	vectors, err := idx.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("vector: embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("vector: embed query: want 1 vector, got %d", len(vectors))
	}
	queryVec := vectors[0]

	candidates := idx.candidateIndexes(goIDs)
	matches := make([]Match, 0, len(candidates))
	for _, i := range candidates {
		e := idx.entries[i]
		matches = append(matches, Match{GOID: e.GOID, Text: e.Text, Score: cosine(queryVec, e.Vector)})
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (idx *AnnotationIndex) candidateIndexes(goIDs []string) []int {
	if len(goIDs) == 0 {
		all := make([]int, len(idx.entries))
		for i := range idx.entries {
			all[i] = i
		}
		return all
	}
	seen := make(map[int]struct{})
	var out []int
	for _, id := range goIDs {
		for _, i := range idx.byGOID[id] {
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Len reports how many entries the index holds.
func (idx *AnnotationIndex) Len() int {
	return len(idx.entries)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = float64(v[i])
	}
	return out
}
