package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/utils"
)

func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add DOMAIN",
		Short: "Start monitoring a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.open()
			if err != nil {
				return err
			}
			msg, err := d.Add(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.notice().success(msg)
			return nil
		},
	}
}

func (c *CLI) removeCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove DOMAIN",
		Short: "Stop monitoring a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.open()
			if err != nil {
				return err
			}

			var confirmer dashboard.Confirmer = dashboard.Confirmed
			if !yes {
				confirmer = c.prompter()
			}
			msg, err := d.Remove(cmd.Context(), args[0], confirmer)
			if err != nil {
				return err
			}
			c.notice().success(msg)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// prompter asks on out and reads the answer from in. Only y or yes agree;
// end of input declines.
func (c *CLI) prompter() dashboard.Confirmer {
	reader := bufio.NewReader(c.in)
	return dashboard.ConfirmFunc(func(prompt string) bool {
		_, _ = fmt.Fprintf(c.out, "%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			_, _ = fmt.Fprintln(c.out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk upload a file of domains, one per line (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.open()
			if err != nil {
				return err
			}

			var (
				r    io.Reader
				name = filepath.Base(args[0])
			)
			if args[0] == "-" {
				r, name = c.in, "stdin.txt"
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer utils.Close(f)
				r = f
			}

			msg, err := d.BulkImport(cmd.Context(), name, r)
			if err != nil {
				if msg != "" {
					c.notice().warn(msg)
				}
				return err
			}
			c.notice().success(msg)
			return nil
		},
	}
}
