package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/integrate"
	"github.com/genegraph/genegraph-backend/internal/platform/envutil"
	"github.com/genegraph/genegraph-backend/internal/platform/geneontology"
	"github.com/genegraph/genegraph-backend/internal/platform/kegg"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
	"github.com/genegraph/genegraph-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	paths := os.Args[1:]
	if len(paths) == 0 {
		log.Fatal("usage: import <pathway.xml> [more.xml ...]")
	}

	gafPath := envutil.String("GAF_PATH", "")
	if gafPath == "" {
		log.Fatal("GAF_PATH is required")
	}

	ctx := context.Background()

	// Neo4j
	db, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Fatal("Neo4j init failed", "error", err)
	}
	defer db.Close(ctx)

	// Clients
	goClient, err := geneontology.NewClient(log)
	if err != nil {
		log.Fatal("GO client init failed", "error", err)
	}
	keggClient, err := kegg.NewClient(log)
	if err != nil {
		log.Fatal("KEGG client init failed", "error", err)
	}

	// Services
	engine := integrate.NewEngine(log, goClient)
	svc := services.NewImportService(log, db, engine, keggClient, services.ImportConfig{
		GAFPath:          gafPath,
		EnrichPartitions: envutil.Int("ENRICH_PARTITIONS", 0),
		PathwayPages:     parsePathwayPages(envutil.String("KEGG_PATHWAY_PAGES", "")),
	})

	report, err := svc.Run(ctx, paths)
	if err != nil {
		log.Fatal("import failed", "error", err)
	}
	for _, f := range report.Files {
		if f.Error != "" {
			log.Warn("file failed", "file", f.File, "error", f.Error)
			continue
		}
		log.Info("file imported",
			"file", f.File,
			"records", f.Records,
			"skipped", f.Skipped,
			"interactions", f.Interactions,
		)
	}
}

// parsePathwayPages reads "id=url,id=url" pairs.
func parsePathwayPages(raw string) map[string]string {
	pages := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, url, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		pages[strings.TrimSpace(id)] = strings.TrimSpace(url)
	}
	return pages
}
