package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/render"
)

func (c *CLI) listCommand() *cobra.Command {
	var (
		query  string
		filter string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the monitored domains as a table",
		Example: `  domon list
  domon list --query shop
  domon list --filter warn
  domon list --filter tag:prod --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, _, err := c.open()
			if err != nil {
				return err
			}
			d.SetQuery(query)
			if err := d.SetFilter(filter); err != nil {
				return err
			}

			_, loadErr := d.Load(cmd.Context())
			if errors.Is(loadErr, gateway.ErrAuthExpired) {
				return loadErr
			}

			v := d.View()
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(v); err != nil {
					return fmt.Errorf("failed to encode view: %w", err)
				}
			} else {
				render.WriteText(c.out, v.Table, c.colored())
				if v.Simulated {
					c.notice().warn("Showing demo data.")
				}
			}
			return loadErr
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search on domain, registrar and tags")
	cmd.Flags().StringVarP(&filter, "filter", "f", string(domain.FilterAll), "all, up, down, warn or tag:<label>")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	return cmd
}

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show DOMAIN",
		Short: "Print the details of one domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.open()
			if err != nil {
				return err
			}
			if _, err := d.Load(cmd.Context()); err != nil {
				return err
			}

			detail, err := d.Detail(args[0])
			if err != nil {
				return err
			}
			render.WriteDetail(c.out, detail)
			return nil
		},
	}
}
