package main

import (
	"context"
	"flag"
	"log"

	"github.com/k0kubun/pp/v3"
	"github.com/letieu/ideaflow/config"
	"github.com/letieu/ideaflow/internal/analysis"
)

// Runs the enrichment call against a single problem statement and dumps
// the result. Handy for prompt tweaking.
func main() {
	problem := flag.String("problem", "Freelancers struggle to track billable hours across clients", "problem statement")
	description := flag.String("description", "", "longer description")
	upvotes := flag.Int("upvotes", 150, "reddit upvotes")
	comments := flag.Int("comments", 40, "reddit comments")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.Anthropic.APIKey == "" {
		log.Fatal("anthropic.api_key is required")
	}

	analyzer := analysis.New(cfg)

	res, err := analyzer.AnalyzeIdea(context.Background(), *problem, *description, *upvotes, *comments)
	if err != nil {
		log.Fatal(err)
	}

	pp.Print(res)
}
