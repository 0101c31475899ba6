package domain

import "fmt"

// ValidationError marks a single record that fails its shape contract. The
// importer logs and skips such records instead of aborting the batch.
type ValidationError struct {
	Record string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s.%s: %s", e.Record, e.Field, e.Reason)
}

// IntegratedGeneRecord is one row of the KEGG/GO join, keyed by
// (GeneID, Qualifier, GOID). Names and Synonyms are the aggregated,
// deduplicated sets across every annotation line that matched the gene.
// GOLabel and GODefinition stay nil when term enrichment failed.
type IntegratedGeneRecord struct {
	GeneID       string
	Qualifier    string
	GOID         string
	Aspect       string
	ObjectType   string
	Names        []string
	Synonyms     []string
	GOLabel      *string
	GODefinition *string
}

func (r IntegratedGeneRecord) Validate() error {
	if r.GeneID == "" {
		return &ValidationError{Record: "IntegratedGeneRecord", Field: "GeneID", Reason: "must not be empty"}
	}
	if r.GOID == "" {
		return &ValidationError{Record: "IntegratedGeneRecord", Field: "GOID", Reason: "must not be empty"}
	}
	return nil
}

// Disease is the per-pathway disease node payload.
type Disease struct {
	DiseaseID string
	Name      string
}

func (d Disease) Validate() error {
	if d.DiseaseID == "" {
		return &ValidationError{Record: "Disease", Field: "DiseaseID", Reason: "must not be empty"}
	}
	if d.Name == "" {
		return &ValidationError{Record: "Disease", Field: "Name", Reason: "must not be empty"}
	}
	return nil
}
