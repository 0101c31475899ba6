package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/genegraph/genegraph-backend/internal/agent"
	"github.com/genegraph/genegraph-backend/internal/data/vector"
	"github.com/genegraph/genegraph-backend/internal/platform/envutil"
	"github.com/genegraph/genegraph-backend/internal/platform/logger"
	"github.com/genegraph/genegraph-backend/internal/platform/neo4jdb"
	"github.com/genegraph/genegraph-backend/internal/platform/openai"
)

func main() {
	evalPath := flag.String("eval", "", "path to a labeled question dataset; prints tool-selection accuracy")
	flag.Parse()

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

	// OpenAI
	llm, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("OpenAI init failed", "error", err)
	}

	// Annotation index
	index, err := vector.BuildAnnotationIndex(ctx, log, db, llm)
	if err != nil {
		log.Fatal("annotation index build failed", "error", err)
	}

	// Agent
	cfg, err := agent.LoadConfig()
	if err != nil {
		log.Fatal("agent config load failed", "error", err)
	}
	router, err := agent.New(ctx, log, cfg, db, llm, index)
	if err != nil {
		log.Fatal("agent init failed", "error", err)
	}

	if *evalPath != "" {
		runEvaluation(ctx, log, router, *evalPath)
		return
	}

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if question == "" {
		log.Fatal("usage: agent [-eval dataset.json] <question>")
	}

	answer, err := router.Ask(ctx, question)
	if err != nil {
		log.Fatal("question failed", "error", err)
	}
	out, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		log.Fatal("encode answer failed", "error", err)
	}
	fmt.Println(string(out))
}

func runEvaluation(ctx context.Context, log *logger.Logger, router *agent.Router, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("read dataset failed", "error", err)
	}
	var dataset []agent.LabeledQuestion
	if err := json.Unmarshal(raw, &dataset); err != nil {
		log.Fatal("parse dataset failed", "error", err)
	}
	accuracy, err := router.EvaluateToolSelection(ctx, dataset)
	if err != nil {
		log.Fatal("evaluation failed", "error", err)
	}
	fmt.Printf("tool selection accuracy: %.3f (%d questions)\n", accuracy, len(dataset))
}
