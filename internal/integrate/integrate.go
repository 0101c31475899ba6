// Package integrate joins KGML pathway genes against GAF annotation records
// on gene-symbol synonyms and produces enriched, aggregated gene records.
package integrate

import (
	"context"
	"sort"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/domain"
	"github.com/genegraph/genegraph-backend/internal/platform/geneontology"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
)

// Options tune one integration run. AspectVocabulary remaps GAF aspect codes
// to readable values; unmapped codes pass through unchanged.
type Options struct {
	AspectVocabulary map[string]string
	EnrichPartitions int
}

type Engine struct {
	log   *logger.Logger
	terms geneontology.Client
}

func NewEngine(log *logger.Logger, terms geneontology.Client) *Engine {
	return &Engine{
		log:   log.With("service", "IntegrationEngine"),
		terms: terms,
	}
}

// joinedRow is one exploded pathway row matched to one exploded annotation
// row on symbol == synonym.
type joinedRow struct {
	geneID     string
	qualifier  string
	goID       string
	aspect     string
	objectType string
	objectName string
	synonym    string
}

// Integrate joins the pathway's gene entries against the annotation records:
// explode symbols and synonyms, inner-join on equality, aggregate name and
// synonym sets per gene, then emit one record per distinct
// (gene, qualifier, GO id) triple with term text resolved. Genes whose
// symbols match no synonym produce no records. Output order is deterministic
// for identical inputs; term text depends on the lookup service.
func (e *Engine) Integrate(ctx context.Context, pathway *domain.Pathway, annotations []domain.AnnotationRecord, opts Options) ([]domain.IntegratedGeneRecord, error) {
	bySynonym := indexBySynonym(annotations)

	var joined []joinedRow
	seen := make(map[string]struct{})
	for _, gene := range pathway.Genes {
		for _, symbol := range gene.Symbols {
			for _, rec := range bySynonym[symbol] {
				row := joinedRow{
					geneID:     gene.EntryID,
					qualifier:  rec.Qualifier,
					goID:       rec.GOID,
					aspect:     rec.Aspect,
					objectType: rec.ObjectType,
					objectName: rec.ObjectName,
					synonym:    symbol,
				}
				key := strings.Join([]string{
					row.geneID, row.qualifier, row.goID, row.aspect,
					row.objectType, row.objectName, row.synonym,
				}, "\x1f")
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				joined = append(joined, row)
			}
		}
	}

	names := make(map[string]map[string]struct{})
	synonyms := make(map[string]map[string]struct{})
	for _, row := range joined {
		if names[row.geneID] == nil {
			names[row.geneID] = make(map[string]struct{})
			synonyms[row.geneID] = make(map[string]struct{})
		}
		if row.objectName != "" {
			names[row.geneID][row.objectName] = struct{}{}
		}
		synonyms[row.geneID][row.synonym] = struct{}{}
	}

	type tripleKey struct {
		geneID    string
		qualifier string
		goID      string
	}
	triples := make(map[tripleKey]joinedRow)
	order := make([]tripleKey, 0, len(joined))
	for _, row := range joined {
		key := tripleKey{geneID: row.geneID, qualifier: row.qualifier, goID: row.goID}
		if _, ok := triples[key]; ok {
			continue
		}
		triples[key] = row
		order = append(order, key)
	}

	goIDs := make([]string, 0, len(order))
	for _, key := range order {
		goIDs = append(goIDs, key.goID)
	}
	terms := EnrichTerms(ctx, e.terms, e.log, goIDs, opts.EnrichPartitions)

	out := make([]domain.IntegratedGeneRecord, 0, len(order))
	for _, key := range order {
		row := triples[key]
		term := terms[row.goID]
		out = append(out, domain.IntegratedGeneRecord{
			GeneID:       row.geneID,
			Qualifier:    row.qualifier,
			GOID:         row.goID,
			Aspect:       remapAspect(row.aspect, opts.AspectVocabulary),
			ObjectType:   row.objectType,
			Names:        setToSorted(names[row.geneID]),
			Synonyms:     setToSorted(synonyms[row.geneID]),
			GOLabel:      term.Label,
			GODefinition: term.Definition,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GeneID != out[j].GeneID {
			return out[i].GeneID < out[j].GeneID
		}
		if out[i].Qualifier != out[j].Qualifier {
			return out[i].Qualifier < out[j].Qualifier
		}
		return out[i].GOID < out[j].GOID
	})

	e.log.Debug("integration complete",
		"pathway_id", pathway.ID,
		"joined_rows", len(joined),
		"records", len(out),
	)
	return out, nil
}

func indexBySynonym(annotations []domain.AnnotationRecord) map[string][]domain.AnnotationRecord {
	index := make(map[string][]domain.AnnotationRecord)
	for _, rec := range annotations {
		for _, syn := range rec.Synonyms {
			if syn == "" {
				continue
			}
			index[syn] = append(index[syn], rec)
		}
	}
	return index
}

func remapAspect(aspect string, vocabulary map[string]string) string {
	if mapped, ok := vocabulary[aspect]; ok {
		return mapped
	}
	return aspect
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
