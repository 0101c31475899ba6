// Package graph materializes integrated pathway data as Neo4j nodes and
// edges. Every write uses MERGE on a natural key so re-importing a pathway
// file refreshes properties instead of duplicating graph elements.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/genegraph/genegraph-backend/internal/domain"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
)

// AssociationEvidence is the provenance tag recorded on every
// gene-disease association created by the importer.
const AssociationEvidence = "from KGML"

// GeneUniqueID scopes a pathway-local gene entry id to its disease context.
// The same biological gene appears as a distinct node per pathway.
func GeneUniqueID(diseaseID, geneID string) string {
	return diseaseID + "_" + geneID
}

func writeSession(ctx context.Context, client *neo4jdb.Client) neo4j.SessionWithContext {
	return client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
}

func runInWriteTx(ctx context.Context, client *neo4jdb.Client, cypher string, params map[string]any) error {
	if client == nil || client.Driver == nil {
		return fmt.Errorf("graph: client not initialized")
	}
	session := writeSession(ctx, client)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	return err
}

func consume(ctx context.Context, res neo4j.ResultWithContext) error {
	_, err := res.Consume(ctx)
	return err
}

// EnsureSchema creates uniqueness constraints. Best-effort: restricted users
// may not hold schema privileges, so failures are logged and ignored.
func EnsureSchema(ctx context.Context, client *neo4jdb.Client, log *logger.Logger) {
	statements := []string{
		`CREATE CONSTRAINT gene_unique_id IF NOT EXISTS FOR (g:Gene) REQUIRE g.unique_id IS UNIQUE`,
		`CREATE CONSTRAINT disease_id_unique IF NOT EXISTS FOR (d:Disease) REQUIRE d.disease_id IS UNIQUE`,
	}
	session := writeSession(ctx, client)
	defer session.Close(ctx)
	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func UpsertDisease(ctx context.Context, client *neo4jdb.Client, d domain.Disease) error {
	return runInWriteTx(ctx, client, `
MERGE (d:Disease {disease_id: $disease_id})
SET d.name = $name
`, map[string]any{
		"disease_id": d.DiseaseID,
		"name":       d.Name,
	})
}

func UpsertGene(ctx context.Context, client *neo4jdb.Client, rec domain.IntegratedGeneRecord, diseaseID string) error {
	return runInWriteTx(ctx, client, `
MERGE (g:Gene {unique_id: $unique_id})
SET g.names = $names,
    g.synonyms = $synonyms
`, map[string]any{
		"unique_id": GeneUniqueID(diseaseID, rec.GeneID),
		"names":     rec.Names,
		"synonyms":  rec.Synonyms,
	})
}

func UpsertAnnotation(ctx context.Context, client *neo4jdb.Client, rec domain.IntegratedGeneRecord) error {
	return runInWriteTx(ctx, client, `
MERGE (a:GO_Annotation {qualifier: $qualifier, GO_ID: $go_id})
SET a.aspect = $aspect,
    a.object_type = $object_type,
    a.name = $label,
    a.definition = $definition
`, map[string]any{
		"qualifier":   rec.Qualifier,
		"go_id":       rec.GOID,
		"aspect":      rec.Aspect,
		"object_type": rec.ObjectType,
		"label":       nullable(rec.GOLabel),
		"definition":  nullable(rec.GODefinition),
	})
}

func UpsertDiseaseAssociation(ctx context.Context, client *neo4jdb.Client, rec domain.IntegratedGeneRecord, diseaseID, evidence string) error {
	return runInWriteTx(ctx, client, `
MATCH (g:Gene {unique_id: $unique_id})
MATCH (d:Disease {disease_id: $disease_id})
MERGE (g)-[r:ASSOCIATED_WITH {evidence: $evidence}]->(d)
`, map[string]any{
		"unique_id":  GeneUniqueID(diseaseID, rec.GeneID),
		"disease_id": diseaseID,
		"evidence":   evidence,
	})
}

func UpsertAnnotationEdge(ctx context.Context, client *neo4jdb.Client, rec domain.IntegratedGeneRecord, diseaseID string) error {
	return runInWriteTx(ctx, client, `
MATCH (g:Gene {unique_id: $unique_id})
MATCH (a:GO_Annotation {qualifier: $qualifier, GO_ID: $go_id})
MERGE (g)-[r:HAS_GO_ANNOTATION]->(a)
`, map[string]any{
		"unique_id": GeneUniqueID(diseaseID, rec.GeneID),
		"qualifier": rec.Qualifier,
		"go_id":     rec.GOID,
	})
}

// UpsertInteractions merges the pathway's relation list in one batch. MATCH
// on both endpoints means a relation whose genes were never created (no
// annotation match, or a skipped record) is silently dropped, so this must
// run after all gene upserts for the pathway.
func UpsertInteractions(ctx context.Context, client *neo4jdb.Client, relations []domain.PathwayRelation, diseaseID string) error {
	if len(relations) == 0 {
		return nil
	}
	rels := make([]map[string]any, 0, len(relations))
	for _, rel := range relations {
		subtypes := rel.Subtypes
		if subtypes == nil {
			subtypes = []string{}
		}
		rels = append(rels, map[string]any{
			"entry1":   GeneUniqueID(diseaseID, rel.Entry1),
			"entry2":   GeneUniqueID(diseaseID, rel.Entry2),
			"type":     rel.Type,
			"subtypes": subtypes,
		})
	}
	return runInWriteTx(ctx, client, `
UNWIND $rels AS rel
MATCH (g1:Gene {unique_id: rel.entry1})
MATCH (g2:Gene {unique_id: rel.entry2})
MERGE (g1)-[r:INTERACTS_WITH {type: rel.type, subtypes: rel.subtypes}]->(g2)
`, map[string]any{"rels": rels})
}

// SetGeneDisplayNames backfills a display_name property on existing Gene
// nodes. Used by the optional KEGG page enrichment; unknown ids are ignored.
func SetGeneDisplayNames(ctx context.Context, client *neo4jdb.Client, names []map[string]any) error {
	if len(names) == 0 {
		return nil
	}
	return runInWriteTx(ctx, client, `
UNWIND $names AS n
MATCH (g:Gene {unique_id: n.unique_id})
SET g.display_name = n.display_name
`, map[string]any{"names": names})
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
