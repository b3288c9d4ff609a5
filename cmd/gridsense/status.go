package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridsense/gridsense/pkg/client"
	"github.com/gridsense/gridsense/pkg/topology"
)

type statusData struct {
	status *client.Status
	nodes  []topology.Node
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get daemon status: %w", err)
	}

	var nodes []topology.Node
	if st.DatasetLoaded {
		nodes, err = apiClient.GetNodes()
		if err != nil {
			return nil, fmt.Errorf("failed to get nodes: %w", err)
		}
	}

	return &statusData{
		status: st,
		nodes:  nodes,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of gridsense",
		Long:    `Get daemon status, the loaded grid topology, and recent estimation activity.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			st := data.status

			cmd.Println(bold("Daemon:"))
			cmd.Printf("  Version: %s\n", st.Version)
			cmd.Println("  Dataset loaded: " + bool2Text(st.DatasetLoaded))
			if st.DatasetLoaded {
				cmd.Printf("  Nodes: %d, sensors: %d\n", st.Nodes, st.Sensors)
			}
			cmd.Printf("  Estimation runs in the last minute: %d\n", st.RunsLastMinute)
			if st.LastRun != "" {
				cmd.Printf("  Last run: %s\n", st.LastRun)
			}

			if len(data.nodes) > 0 {
				cmd.Println()
				cmd.Println(bold("Nodes:"))
				for _, n := range data.nodes {
					cmd.Printf("  %4d  %10.0f V  energized: %s\n", n.ID, n.URated, bool2Text(n.Energized))
				}
			}

			return nil
		},
	}
}
