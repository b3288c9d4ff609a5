package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newEnergizeCommand(use string, energized bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [node-id]",
		Short: fmt.Sprintf("Mark a node as %s", use+"d"),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseIntArg(args, "node id")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetNodeEnergized(id, energized)
			if err != nil {
				return fmt.Errorf("failed to %s node %d: %v", use, id, err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			logrus.Infof("node %d is now %s", id, use+"d")
			return nil
		},
	}
}

func NewNodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Short:   "List grid nodes and toggle their energized state",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nodes, err := apiClient.GetNodes()
			if err != nil {
				return fmt.Errorf("failed to get nodes: %v", err)
			}

			cmd.Println(bold("%4s  %12s  %s", "ID", "U rated", "Energized"))
			for _, n := range nodes {
				cmd.Printf("%4d  %10.0f V  %s\n", n.ID, n.URated, bool2Text(n.Energized))
			}
			return nil
		},
	}

	cmd.AddCommand(
		newEnergizeCommand("energize", true),
		newEnergizeCommand("deenergize", false),
	)

	return cmd
}
