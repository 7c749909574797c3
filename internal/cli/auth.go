package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// sessionHolder is implemented by sources that keep a backend session
type sessionHolder interface {
	Session() string
}

func (c *CLI) loginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the monitoring backend and print the session cookie",
		Long: `Forwards the credentials to the backend. On success the session cookie is
printed as an export line; set DOMON_SESSION_COOKIE so later commands reuse it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, gw, err := c.open()
			if err != nil {
				return err
			}
			if !d.RequiresLogin() {
				c.notice().info("No login needed for the " + c.cfg.Source + " source.")
				return nil
			}

			reader := bufio.NewReader(c.in)
			if username == "" {
				username = c.ask(reader, "Username: ")
			}
			if password == "" {
				password = c.ask(reader, "Password: ")
			}

			msg, err := d.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			c.notice().success(msg)

			if s, ok := gw.(sessionHolder); ok {
				if cookie := s.Session(); cookie != "" {
					_, _ = fmt.Fprintf(c.out, "export DOMON_SESSION_COOKIE='%s'\n", cookie)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "backend username (prompted when empty)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "backend password (read from stdin when empty)")
	return cmd
}

func (c *CLI) ask(reader *bufio.Reader, prompt string) string {
	_, _ = fmt.Fprint(c.out, prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the backend session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, _, err := c.open()
			if err != nil {
				return err
			}
			d.Logout(cmd.Context())
			c.notice().success("Logged out.")
			if c.cfg.SessionCookie != "" {
				c.notice().warn("Unset DOMON_SESSION_COOKIE to forget the session.")
			}
			return nil
		},
	}
}
