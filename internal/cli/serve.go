package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/domon/internal/app"
	"github.com/MrSnakeDoc/domon/internal/version"
)

func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				c.cfg.ListenPort = listen
			}
			a, err := app.New(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides DOMON_LISTEN_PORT)")
	return cmd
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(c.out, version.String())
			return err
		},
	}
}
