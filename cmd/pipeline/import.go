package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/pipeline/memory"
)

var importCmd = &cobra.Command{
	Use:   "import <pipeline-id> <graph-file>",
	Short: "Store a graph file as a pipeline",
	Long:  `Replaces the stored graph of <pipeline-id> with the nodes and edges of a JSON or YAML graph file.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		g, err := memory.ReadGraph(args[1])
		if err != nil {
			return err
		}

		store, closeDB, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := store.SavePipeline(cmd.Context(), args[0], &g); err != nil {
			return err
		}
		log.Info("pipeline imported", "pipeline_id", args[0], "nodes", len(g.Nodes), "edges", len(g.Edges))
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s: %d nodes, %d edges\n", args[0], len(g.Nodes), len(g.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
