package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/analysis"
	"github.com/meikuraledutech/pipeline/memory"
	"github.com/meikuraledutech/pipeline/workflow"
)

func main() {
	ctx := context.Background()

	endpoint := os.Getenv("PIPELINE_ENDPOINT")
	if endpoint == "" {
		endpoint = analysis.DefaultEndpoint
	}

	// The editing surface owns the store; the workflow only reads snapshots.
	store := memory.New(pipeline.Graph{
		Nodes: []pipeline.Node{
			{ID: "customInput-1", Type: "customInput", Data: json.RawMessage(`{"inputName": "question", "handles": [{"id": "value", "type": "source"}]}`)},
			{ID: "llm-1", Type: "llm", Handles: []pipeline.Handle{
				{ID: "system", Type: pipeline.HandleTarget},
				{ID: "prompt", Type: pipeline.HandleTarget},
				{ID: "response", Type: pipeline.HandleSource},
			}},
			{ID: "customOutput-1", Type: "customOutput", Handles: []pipeline.Handle{{ID: "value", Type: pipeline.HandleTarget}}},
		},
		Edges: []pipeline.Edge{
			{ID: "e1", Source: "customInput-1", SourceHandle: "value", Target: "llm-1", TargetHandle: "prompt"},
			{ID: "e2", Source: "llm-1", SourceHandle: "response", Target: "customOutput-1", TargetHandle: "value"},
		},
	})

	wf := workflow.New(store, analysis.NewClient(endpoint), workflow.NewConsoleReporter(os.Stdout, os.Stderr))

	// ── Submit a well-formed pipeline ─────────────────────────────────
	fmt.Println("submitting input → llm → output")
	if _, err := wf.Submit(ctx); err != nil {
		log.Printf("submit: %v", err)
	}

	// ── Close a loop and submit again ─────────────────────────────────
	store.AddEdge(pipeline.Edge{ID: "e3", Source: "customOutput-1", Target: "llm-1", TargetHandle: "system"})
	fmt.Println("\nsubmitting with output → llm loop")
	if _, err := wf.Submit(ctx); err != nil {
		log.Printf("submit: %v", err)
	}

	// ── Add a second entry point: rejected before any request ────────
	store.AddNode(pipeline.Node{ID: "text-1", Type: "text", Data: json.RawMessage(`{"text": "{{question}}"}`)})
	fmt.Println("\nsubmitting with two entry points")
	if _, err := wf.Submit(ctx); err != nil {
		log.Printf("submit: %v", err)
	}
}
