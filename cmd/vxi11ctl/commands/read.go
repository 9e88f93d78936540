package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <host>",
	Short: "Read a pending response from the device",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	host := args[0]

	sess, err := connectSession(host)
	if err != nil {
		return err
	}
	defer sess.Close()

	resp, err := sess.Read()
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	fmt.Println(string(resp))
	return nil
}
