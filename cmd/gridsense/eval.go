package main

import (
	"fmt"
	"math/cmplx"

	"github.com/spf13/cobra"

	"github.com/gridsense/gridsense/pkg/client"
	"github.com/gridsense/gridsense/pkg/dataset"
	"github.com/gridsense/gridsense/pkg/estimator"
)

// NewEvalCommand runs a one-shot estimation over a dataset file without
// talking to the daemon.
func NewEvalCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:     "eval [dataset.json]",
		Short:   "Run a one-shot estimation over a dataset file, without the daemon",
		GroupID: gAdvanced,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load dataset: %v", err)
			}

			sol := estimator.Solve(ds)
			rep := sol.Report(ds)

			cmd.Println(bold("%4s  %8s  %12s  %s", "Node", "Observed", "u [pu]", "angle [rad]"))
			for _, id := range ds.Topology.IDs() {
				ns := sol.Nodes[id]
				if !ns.Observed {
					cmd.Printf("%4d  %8s  %12s  %s\n", id, bool2Text(false), "-", "-")
					continue
				}
				v := ns.U
				cmd.Printf("%4d  %8s  %12.6f  %+.6f\n", id, bool2Text(true), cmplx.Abs(v), cmplx.Phase(v))
			}

			cmd.Println()
			printOutputs(cmd, &client.Outputs{Sym: rep.Sym, Asym: rep.Asym}, mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "all", "residual representation (sym, asym or all)")

	return cmd
}
