package main

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gridsense/gridsense/pkg/dataset"
	"github.com/gridsense/gridsense/pkg/estimator"
)

func phasorPoints(us []complex128) plotter.XYs {
	pts := make(plotter.XYs, len(us))
	for i, u := range us {
		pts[i].X = real(u)
		pts[i].Y = imag(u)
	}
	return pts
}

// NewPlotCommand renders the solved per-phase voltage phasors of a dataset
// to a PNG, next to a balanced 1.0 pu reference set.
func NewPlotCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "plot [dataset.json]",
		Short:   "Render solved voltage phasors of a dataset file to a PNG",
		GroupID: gAdvanced,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load dataset: %v", err)
			}

			sol := estimator.Solve(ds)

			var solved []complex128
			for _, id := range ds.Topology.IDs() {
				ns := sol.Nodes[id]
				if !ns.Observed {
					continue
				}
				solved = append(solved, ns.UAsym[0], ns.UAsym[1], ns.UAsym[2])
			}
			if len(solved) == 0 {
				return fmt.Errorf("no observed nodes to plot")
			}

			p := plot.New()
			p.Title.Text = "Solved voltage phasors"
			p.X.Label.Text = "Re(u) [pu]"
			p.Y.Label.Text = "Im(u) [pu]"
			p.Add(plotter.NewGrid())

			ref := estimator.BalancedAsym(complex(1, 0))
			refScatter, err := plotter.NewScatter(phasorPoints(ref[:]))
			if err != nil {
				return fmt.Errorf("failed to build reference series: %v", err)
			}
			refScatter.GlyphStyle.Radius = vg.Points(2)

			solScatter, err := plotter.NewScatter(phasorPoints(solved))
			if err != nil {
				return fmt.Errorf("failed to build solution series: %v", err)
			}
			solScatter.GlyphStyle.Radius = vg.Points(4)

			p.Add(refScatter, solScatter)
			p.Legend.Add("1.0 pu reference", refScatter)
			p.Legend.Add("solved", solScatter)

			if err := p.Save(6*vg.Inch, 6*vg.Inch, output); err != nil {
				return fmt.Errorf("failed to save plot: %v", err)
			}

			var worst float64
			for _, u := range solved {
				if d := math.Abs(cmplx.Abs(u) - 1.0); d > worst {
					worst = d
				}
			}
			cmd.Printf("wrote %s (%d phasors, worst magnitude deviation %.4f pu)\n", output, len(solved), worst)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "gridsense-plot.png", "output PNG path")

	return cmd
}
