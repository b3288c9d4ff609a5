package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewSensorsCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:     "sensors",
		Short:   "List voltage sensors",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := apiClient.GetSensors()
			if err != nil {
				return fmt.Errorf("failed to get sensors: %v", err)
			}

			cmd.Println(bold("%4s  %8s  %s", "ID", "Node", "Type"))
			for _, s := range infos {
				cmd.Printf("%4d  %8d  %s\n", s.ID, s.MeasuredObject, s.Type)
			}
			return nil
		},
	}

	paramCmd := &cobra.Command{
		Use:   "param [sensor-id]",
		Short: "Show a sensor's per-unit calculation parameter",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIntArg(args, "sensor id")
			if err != nil {
				return err
			}

			p, err := apiClient.GetSensorParam(id, mode)
			if err != nil {
				return fmt.Errorf("failed to get sensor %d param: %v", id, err)
			}

			cmd.Println(bold("Sensor %d (%s):", id, p.Mode))
			for i, v := range p.Value {
				label := "u"
				if p.Mode == "asym" {
					label = fmt.Sprintf("u%c", 'a'+i)
				}
				cmd.Printf("  %s: %.6f pu ∠ %s\n", label, v.UMagnitude, fmtAngle(v.UAngle))
			}
			cmd.Printf("  variance: %.6e\n", p.Variance)
			return nil
		},
	}
	paramCmd.Flags().StringVar(&mode, "mode", "sym", "parameter representation (sym or asym)")

	cmd.AddCommand(paramCmd)

	return cmd
}
