package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/genegraph/genegraph-backend/internal/data/graph"
	"github.com/genegraph/genegraph-backend/internal/domain"
	"github.com/genegraph/genegraph-backend/internal/gaf"
	"github.com/genegraph/genegraph-backend/internal/integrate"
	"github.com/genegraph/genegraph-backend/internal/kgml"
	"github.com/genegraph/genegraph-backend/internal/platform/kegg"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
)

// ImportConfig holds the per-deployment knobs of the import pipeline.
type ImportConfig struct {
	// GAFPath is the annotation file joined against every pathway file.
	GAFPath string
	// AspectVocabulary remaps GAF aspect codes; defaults to the GO aspects.
	AspectVocabulary map[string]string
	// EnrichPartitions bounds the GO term lookup fan-out (0 = NumCPU).
	EnrichPartitions int
	// PathwayPages optionally maps a pathway/disease id to its KEGG page
	// URL for display-name scraping.
	PathwayPages map[string]string
}

// DefaultAspectVocabulary maps GAF single-letter aspect codes to the GO
// namespace names stored on annotation nodes.
func DefaultAspectVocabulary() map[string]string {
	return map[string]string{
		"F": "molecular_function",
		"P": "biological_process",
		"C": "cellular_component",
	}
}

// FileReport is the outcome of importing one pathway file.
type FileReport struct {
	File         string `json:"file"`
	DiseaseID    string `json:"disease_id,omitempty"`
	Records      int    `json:"records"`
	Skipped      int    `json:"skipped"`
	Interactions int    `json:"interactions"`
	Error        string `json:"error,omitempty"`
}

// Report is the outcome of one import run.
type Report struct {
	RunID string       `json:"run_id"`
	Files []FileReport `json:"files"`
}

type ImportService struct {
	log    *logger.Logger
	client *neo4jdb.Client
	engine *integrate.Engine
	kegg   kegg.Client
	cfg    ImportConfig
}

// NewImportService wires the import pipeline. keggClient may be nil when
// display-name scraping is not configured.
func NewImportService(log *logger.Logger, client *neo4jdb.Client, engine *integrate.Engine, keggClient kegg.Client, cfg ImportConfig) *ImportService {
	if cfg.AspectVocabulary == nil {
		cfg.AspectVocabulary = DefaultAspectVocabulary()
	}
	return &ImportService{
		log:    log.With("service", "ImportService"),
		client: client,
		engine: engine,
		kegg:   keggClient,
		cfg:    cfg,
	}
}

// Run imports every pathway file sequentially. A file that cannot be parsed
// fails only its own report entry; a record that fails validation is logged
// and skipped. Interaction edges are merged only after all gene and
// annotation upserts for the same pathway have completed.
func (s *ImportService) Run(ctx context.Context, kgmlPaths []string) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := s.log.With("run_id", report.RunID)

	annotations, err := gaf.ParseFile(s.cfg.GAFPath)
	if err != nil {
		return report, fmt.Errorf("import: annotation file: %w", err)
	}
	log.Info("annotation file loaded", "path", s.cfg.GAFPath, "records", len(annotations))

	graph.EnsureSchema(ctx, s.client, log)

	for _, path := range kgmlPaths {
		fileReport := s.importFile(ctx, log, path, annotations)
		report.Files = append(report.Files, fileReport)
	}
	return report, nil
}

func (s *ImportService) importFile(ctx context.Context, log *logger.Logger, path string, annotations []domain.AnnotationRecord) FileReport {
	report := FileReport{File: path}

	pathway, err := kgml.ParseFile(path)
	if err != nil {
		log.Error("pathway file unusable; skipping", "file", path, "error", err)
		report.Error = err.Error()
		return report
	}
	report.DiseaseID = pathway.ID
	log = log.With("disease_id", pathway.ID)

	disease := domain.Disease{DiseaseID: pathway.ID, Name: pathway.Name}
	if err := disease.Validate(); err != nil {
		log.Error("pathway header invalid; skipping file", "file", path, "error", err)
		report.Error = err.Error()
		return report
	}
	if err := graph.UpsertDisease(ctx, s.client, disease); err != nil {
		report.Error = err.Error()
		return report
	}

	records, err := s.engine.Integrate(ctx, pathway, annotations, integrate.Options{
		AspectVocabulary: s.cfg.AspectVocabulary,
		EnrichPartitions: s.cfg.EnrichPartitions,
	})
	if err != nil {
		report.Error = err.Error()
		return report
	}

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			log.Warn("record failed validation; skipping", "gene_id", rec.GeneID, "error", err)
			report.Skipped++
			continue
		}
		if err := s.upsertRecord(ctx, rec, pathway.ID); err != nil {
			log.Error("record upsert failed; skipping", "gene_id", rec.GeneID, "error", err)
			report.Skipped++
			continue
		}
		report.Records++
	}

	if err := graph.UpsertInteractions(ctx, s.client, pathway.Relations, pathway.ID); err != nil {
		log.Error("interaction upsert failed", "error", err)
		report.Error = err.Error()
		return report
	}
	report.Interactions = len(pathway.Relations)

	s.enrichDisplayNames(ctx, log, pathway)

	log.Info("pathway imported",
		"file", path,
		"records", report.Records,
		"skipped", report.Skipped,
		"interactions", report.Interactions,
	)
	return report
}

func (s *ImportService) upsertRecord(ctx context.Context, rec domain.IntegratedGeneRecord, diseaseID string) error {
	if err := graph.UpsertGene(ctx, s.client, rec, diseaseID); err != nil {
		return err
	}
	if err := graph.UpsertAnnotation(ctx, s.client, rec); err != nil {
		return err
	}
	if err := graph.UpsertDiseaseAssociation(ctx, s.client, rec, diseaseID, graph.AssociationEvidence); err != nil {
		return err
	}
	return graph.UpsertAnnotationEdge(ctx, s.client, rec, diseaseID)
}

// enrichDisplayNames scrapes the pathway's KEGG page for symbol -> name
// pairs and backfills display_name on matching Gene nodes. Best-effort.
func (s *ImportService) enrichDisplayNames(ctx context.Context, log *logger.Logger, pathway *domain.Pathway) {
	if s.kegg == nil {
		return
	}
	pageURL, ok := s.cfg.PathwayPages[pathway.ID]
	if !ok {
		return
	}

	names, err := s.kegg.GeneNames(ctx, pageURL)
	if err != nil {
		log.Warn("KEGG page scrape failed; display names skipped", "url", pageURL, "error", err)
		return
	}

	updates := make([]map[string]any, 0, len(pathway.Genes))
	for _, gene := range pathway.Genes {
		if len(gene.Symbols) == 0 {
			continue
		}
		name, ok := names[gene.Symbols[0]]
		if !ok {
			continue
		}
		updates = append(updates, map[string]any{
			"unique_id":    graph.GeneUniqueID(pathway.ID, gene.EntryID),
			"display_name": name,
		})
	}
	if err := graph.SetGeneDisplayNames(ctx, s.client, updates); err != nil {
		log.Warn("display name backfill failed", "error", err)
	}
}
