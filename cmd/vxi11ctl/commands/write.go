package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <host> <command>",
	Short: "Write a SCPI command without reading a response",
	Args:  cobra.ExactArgs(2),
	RunE:  runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	host, command := args[0], args[1]

	sess, err := connectSession(host)
	if err != nil {
		return err
	}
	defer sess.Close()

	n, err := sess.Write([]byte(command), 0)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	fmt.Printf("wrote %d bytes\n", n)
	return nil
}
