package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <pipeline-id>",
	Short: "List recorded submissions of a pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, closeDB, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		subs, err := store.ListSubmissions(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSTATE\tNODES\tEDGES\tDAG\tID")
		for _, s := range subs {
			nodes, edges, dag := "-", "-", "-"
			if s.Result != nil {
				nodes = fmt.Sprint(s.Result.NumNodes)
				edges = fmt.Sprint(s.Result.NumEdges)
				dag = fmt.Sprint(s.Result.IsDAG)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.StartedAt.Local().Format(time.DateTime), s.State, nodes, edges, dag, s.ID)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of submissions to show (0 for all)")
}
