package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/gateway"
)

func (c *CLI) checkCommand() *cobra.Command {
	var failUnhealthy bool

	cmd := &cobra.Command{
		Use:   "check DOMAIN...",
		Short: "Run a live health check of one or more domains",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.open()
			if err != nil {
				return err
			}

			results := d.CheckMany(cmd.Context(), args)
			c.writeChecks(results)

			failed, unhealthy := 0, 0
			for _, r := range results {
				switch {
				case r.Err != nil:
					failed++
				case !r.Report.Healthy:
					unhealthy++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			if failUnhealthy && unhealthy > 0 {
				return fmt.Errorf("%d of %d domains unhealthy", unhealthy, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failUnhealthy, "fail-unhealthy", false, "exit non-zero when a domain is not healthy")
	return cmd
}

func (c *CLI) writeChecks(results []dashboard.CheckResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(c.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Domain", "HTTP", "Certificate", "Expiry", "Issuer", "Healthy"})

	for _, r := range results {
		if r.Err != nil {
			msg := r.Err.Error()
			if isGatewayError(r.Err) {
				msg = gateway.Notice(r.Err)
			}
			tw.AppendRow(table.Row{r.Domain, c.paint(msg, text.FgRed), "", "", "", ""})
			continue
		}
		healthy := c.paint("yes", text.FgGreen)
		if !r.Report.Healthy {
			healthy = c.paint("no", text.FgRed)
		}
		tw.AppendRow(table.Row{
			r.Domain,
			fmt.Sprint(r.Report.StatusCode),
			r.Report.CertificateStatus,
			r.Report.CertificateExpiry,
			r.Report.Issuer,
			healthy,
		})
	}
	tw.Render()
}

func (c *CLI) paint(s string, col text.Color) string {
	if !c.colored() {
		return s
	}
	return col.Sprint(s)
}
