package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gridsense/gridsense/pkg/client"
)

func printOutputs(cmd *cobra.Command, out *client.Outputs, mode string) {
	if mode == "sym" || mode == "all" {
		cmd.Println(bold("Symmetric residuals:"))
		cmd.Println(bold("%4s  %3s  %14s  %s", "ID", "On", "u residual [V]", "angle residual [rad]"))
		for _, o := range out.Sym {
			cmd.Printf("%4d  %3s  %14.3f  %s\n", o.ID, bool2Text(o.Energized), o.UResidual, fmtAngle(o.UAngleResidual))
		}
	}

	if mode == "asym" || mode == "all" {
		if mode == "all" {
			cmd.Println()
		}
		cmd.Println(bold("Per-phase residuals:"))
		cmd.Println(bold("%4s  %3s  %5s  %14s  %s", "ID", "On", "Phase", "u residual [V]", "angle residual [rad]"))
		for _, o := range out.Asym {
			for p := 0; p < 3; p++ {
				cmd.Printf("%4d  %3s  %5c  %14.3f  %s\n",
					o.ID, bool2Text(o.Energized), 'a'+p, o.UResidual[p], fmtAngle(o.UAngleResidual[p]))
			}
		}
	}
}

func NewEstimateCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:     "estimate",
		Short:   "Run one estimation and print the residuals",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := apiClient.RunEstimation()
			if err != nil {
				return fmt.Errorf("failed to run estimation: %v", err)
			}
			printOutputs(cmd, out, mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "all", "residual representation (sym, asym or all)")

	return cmd
}

func NewOutputsCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:     "outputs",
		Short:   "Print the residuals of the last estimation run",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := apiClient.GetOutputs()
			if err != nil {
				return fmt.Errorf("failed to get outputs: %v", err)
			}
			printOutputs(cmd, out, mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "all", "residual representation (sym, asym or all)")

	return cmd
}

func NewSolutionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "solution",
		Short:   "Print the solved per-unit node voltages",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sols, err := apiClient.GetSolution()
			if err != nil {
				return fmt.Errorf("failed to get solution: %v", err)
			}

			cmd.Println(bold("%4s  %8s  %12s  %s", "Node", "Observed", "u [pu]", "angle [rad]"))
			for _, s := range sols {
				if !s.Observed {
					cmd.Printf("%4d  %8s  %12s  %s\n", s.NodeID, bool2Text(false), "-", "-")
					continue
				}
				cmd.Printf("%4d  %8s  %12.6f  %s\n", s.NodeID, bool2Text(true), s.U.UMagnitude, fmtAngle(s.U.UAngle))
			}
			return nil
		},
	}
}

func NewReloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reload",
		Short:   "Reload the dataset from disk",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.ReloadDataset()
			if err != nil {
				return fmt.Errorf("failed to reload dataset: %v", err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			logrus.Info("dataset reloaded")
			return nil
		},
	}
}

func NewCalibrationCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "calibration",
		Short:   "Print suggested sensor sigmas from observed residuals",
		GroupID: gAdvanced,
		Long:    `Print per-sensor standard deviation suggestions derived from the spread of recent estimation residuals. Sensors need a minimum number of samples before a suggestion appears.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suggestions, err := apiClient.GetCalibration()
			if err != nil {
				return fmt.Errorf("failed to get calibration suggestions: %v", err)
			}

			if len(suggestions) == 0 {
				cmd.Println("No suggestions yet. Let the daemon run a few more estimations.")
				return nil
			}

			cmd.Println(bold("%6s  %8s  %s", "Sensor", "Samples", "Suggested sigma [V]"))
			for _, s := range suggestions {
				cmd.Printf("%6d  %8d  %.3f\n", s.SensorID, s.Samples, s.USigma)
			}
			return nil
		},
	}
}
