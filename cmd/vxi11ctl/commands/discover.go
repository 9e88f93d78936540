package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/vxi11/internal/portmap"
	"github.com/marmos91/vxi11/pkg/metrics"
	promvxi "github.com/marmos91/vxi11/pkg/metrics/prometheus"
	"github.com/marmos91/vxi11/pkg/vxi11"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Broadcast for VXI-11 instruments on the local network",
	Long: `discover sends a Portmap GETPORT broadcast for the VXI-11 Core
program and prints every instrument that replies before the idle
deadline elapses. There is no reply count to wait for: an instrument
that never answers simply never appears.`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	var m metrics.DiscoveryMetrics
	if cfg.Metrics.Enabled {
		if dm := promvxi.NewDiscoveryMetrics(); dm != nil {
			m = dm
		}
	}

	collector, err := portmap.CollectPorts(vxi11.Program, vxi11.CoreVersion, portmap.ProtoTCP,
		cfg.Discovery.BroadcastAddr, cfg.Discovery.IdleDeadline, m)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	found := 0
	for {
		d, ok := collector.Next()
		if !ok {
			break
		}
		found++
		fmt.Printf("%s  core port %d\n", d.Peer.IP, d.Port)
	}

	if found == 0 {
		fmt.Println("no instruments responded")
	}
	return nil
}
