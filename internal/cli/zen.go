package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// zenCommand creates the zen command.
func (c *CLI) zenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "zen",
		Short: "Print a random line of GitHub zen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, cleanup, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			zen, _, err := client.Zen(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), zen)
			return nil
		},
	}
}
