package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/agent"
	"github.com/genegraph/genegraph-backend/internal/data/vector"
	"github.com/genegraph/genegraph-backend/internal/handlers"
	"github.com/genegraph/genegraph-backend/internal/integrate"
	"github.com/genegraph/genegraph-backend/internal/platform/envutil"
	"github.com/genegraph/genegraph-backend/internal/platform/geneontology"
	"github.com/genegraph/genegraph-backend/internal/platform/kegg"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
	"github.com/genegraph/genegraph-backend/internal/platform/openai"
	"github.com/genegraph/genegraph-backend/internal/server"
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

	ctx := context.Background()

	// Neo4j
	db, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Fatal("Neo4j init failed", "error", err)
	}
	defer db.Close(ctx)

	// Clients
	llm, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("OpenAI init failed", "error", err)
	}
	goClient, err := geneontology.NewClient(log)
	if err != nil {
		log.Fatal("GO client init failed", "error", err)
	}
	keggClient, err := kegg.NewClient(log)
	if err != nil {
		log.Fatal("KEGG client init failed", "error", err)
	}

	// Annotation index (built once, shared by every agent question)
	index, err := vector.BuildAnnotationIndex(ctx, log, db, llm)
	if err != nil {
		log.Fatal("annotation index build failed", "error", err)
	}

	// Agent
	cfg, err := agent.LoadConfig()
	if err != nil {
		log.Fatal("agent config load failed", "error", err)
	}
	agentRouter, err := agent.New(ctx, log, cfg, db, llm, index)
	if err != nil {
		log.Fatal("agent init failed", "error", err)
	}

	// Import pipeline
	engine := integrate.NewEngine(log, goClient)
	importSvc := services.NewImportService(log, db, engine, keggClient, services.ImportConfig{
		GAFPath:          envutil.String("GAF_PATH", ""),
		EnrichPartitions: envutil.Int("ENRICH_PARTITIONS", 0),
	})

	// HTTP
	router := server.NewRouter(server.RouterConfig{
		AskHandler:    handlers.NewAskHandler(log, agentRouter),
		ImportHandler: handlers.NewImportHandler(log, importSvc),
		AllowOrigins:  splitOrigins(envutil.String("CORS_ALLOW_ORIGINS", "")),
	})

	port := envutil.String("PORT", "8080")
	log.Info("server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
