package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/analysis"
	"github.com/meikuraledutech/pipeline/memory"
	"github.com/meikuraledutech/pipeline/workflow"
)

var submitCmd = &cobra.Command{
	Use:   "submit [graph-file]",
	Short: "Check a pipeline and send it for analysis",
	Long: `Reads a graph from a JSON or YAML file, or from the database with --pipeline,
rejects it locally when more than one node has no target handles, and otherwise
posts it to the analysis service and prints the report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringP("pipeline", "p", "", "Read the graph of this stored pipeline and record the submission")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pipelineID, _ := cmd.Flags().GetString("pipeline")

	opts := []workflow.Option{
		workflow.WithLogger(log),
		workflow.WithPolicy(cfg.Policy()),
	}

	var source pipeline.GraphSource
	switch {
	case len(args) == 1:
		store, err := memory.LoadFile(args[0])
		if err != nil {
			return err
		}
		source = store
	case pipelineID != "":
		store, closeDB, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		source = store.Source(pipelineID)
		opts = append(opts, workflow.WithRecorder(store, pipelineID))
	default:
		return errors.New("give a graph file or --pipeline")
	}

	client := analysis.NewClient(cfg.Endpoint, analysis.WithTimeout(cfg.Timeout))
	reporter := workflow.NewConsoleReporter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	wf := workflow.New(source, client, reporter, opts...)

	if _, err := wf.Submit(ctx); err != nil {
		return errReported
	}
	return nil
}
