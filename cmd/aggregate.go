package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run one aggregation cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Orchestrator.RunCycle(ctx)

		statuses, err := a.Store.SnapshotStatuses(ctx)
		if err != nil {
			return err
		}
		for source, st := range statuses {
			zap.L().Info("source status",
				zap.String("source", string(source)),
				zap.String("outcome", string(st.Outcome)),
				zap.Int("fragments", st.FragmentCount),
				zap.String("error", st.ErrorDetail),
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}
