package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	promvxi "github.com/marmos91/vxi11/pkg/metrics/prometheus"
	"github.com/marmos91/vxi11/pkg/scpi"
	"github.com/marmos91/vxi11/pkg/vxi11"
)

var queryCmd = &cobra.Command{
	Use:   "query <host> <command>",
	Short: "Write a SCPI command and print the device's response",
	Args:  cobra.ExactArgs(2),
	Long: `query opens a link, writes the command, reads back a single
response, and closes the link -- the round trip a "*IDN?" style query
needs.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	host, command := args[0], args[1]

	sess, err := connectSession(host)
	if err != nil {
		return err
	}
	defer sess.Close()

	resp, err := scpi.New(sess).Query(command)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	fmt.Println(resp)
	return nil
}

// connectSession dials host using the loaded configuration's connection
// defaults.
func connectSession(host string) (*vxi11.Session, error) {
	opts := vxi11.Options{
		Device:      cfg.Connection.Device,
		IOTimeout:   cfg.Connection.IOTimeout,
		LockTimeout: cfg.Connection.LockTimeout,
		TermChar:    cfg.Connection.TermCharByte(),
		RequestSize: cfg.Connection.RequestSize,
		Flags:       vxi11.FlagTermCharSet,
	}
	if cfg.Metrics.Enabled {
		if m := promvxi.NewCoreMetrics(); m != nil {
			opts.Metrics = m
		}
	}
	return vxi11.Connect(host, opts)
}
