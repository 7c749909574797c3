package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var textHeader = table.Row{"Domain", "Status", "Uptime", "Issuer", "SSL Expiration", "Tags"}

// WriteText renders t as a text table followed by the summary line.
// The whole output is rewritten on every call.
func WriteText(w io.Writer, t Table, color bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(textHeader)

	if t.HasError() {
		tw.AppendRow(table.Row{t.Error, t.Error, t.Error, t.Error, t.Error, t.Error},
			table.RowConfig{AutoMerge: true})
		tw.Render()
		return
	}

	for _, r := range t.Rows {
		tw.AppendRow(table.Row{
			r.Domain,
			colorize(r.Status.Label, statusColor(r.Status.Class), color),
			r.Uptime,
			r.Issuer,
			colorize(r.SSL.Label, urgencyColor(r.SSL.Urgency), color),
			strings.Join(r.Tags, ", "),
		})
	}
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d domains", t.Summary.Total),
		fmt.Sprintf("%d down", t.Summary.Down),
		t.Summary.MeanUptimeLabel(),
		"",
		fmt.Sprintf("%d expiring soon", t.Summary.ExpiringSoon),
		"",
	})
	tw.Render()
}

// WriteDetail renders the drawer view as a two-column table
func WriteDetail(w io.Writer, d Detail) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(d.Row.Domain)

	tw.AppendRows([]table.Row{
		{"Status", d.Row.Status.Label},
		{"Uptime", d.Row.Uptime},
		{"SSL", d.SSLLine},
		{"Issuer", d.Row.Issuer},
		{"DNS", d.Row.DNS},
		{"Registrar", d.Row.Registrar},
		{"Tags", strings.Join(d.Row.Tags, ", ")},
	})
	tw.AppendSeparator()
	for _, c := range d.Checks {
		tw.AppendRow(table.Row{c.Text, c.When})
	}
	tw.Render()
}

func colorize(s string, c text.Color, on bool) string {
	if !on {
		return s
	}
	return c.Sprint(s)
}

func statusColor(class string) text.Color {
	if class == "up" {
		return text.FgGreen
	}
	return text.FgRed
}

func urgencyColor(u Urgency) text.Color {
	switch u {
	case UrgencyNominal:
		return text.FgGreen
	case UrgencyWarning:
		return text.FgYellow
	default:
		return text.FgRed
	}
}
