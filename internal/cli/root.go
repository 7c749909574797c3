// Package cli implements the domon command line.
//
// Every command except serve builds a fresh dashboard, runs one operation
// against the configured source and exits.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/domon/internal/app"
	"github.com/MrSnakeDoc/domon/internal/config"
	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/logger"
)

const defaultEnvFile = ".env"

// globalFlags are shared by every command
type globalFlags struct {
	envFile  string
	source   string
	apiURL   string
	logLevel string
	noColor  bool
}

// CLI carries the streams and the per-invocation state of one run.
type CLI struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	flags globalFlags
	cfg   *config.Config
	log   logger.Logger

	// newLogger is swapped in tests
	newLogger func(cfg *config.Config) logger.Logger
}

// New creates a CLI reading from in and writing to out and errOut.
func New(in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{
		in:     in,
		out:    out,
		errOut: errOut,
		newLogger: func(cfg *config.Config) logger.Logger {
			return logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.PrettyLog, Output: errOut})
		},
	}
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	c := New(os.Stdin, os.Stdout, os.Stderr)
	return c.Run(context.Background(), os.Args[1:])
}

// Run executes args and reports failures as a colored notice.
func (c *CLI) Run(ctx context.Context, args []string) int {
	root := c.Command()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if c.log != nil {
		_ = c.log.Sync()
	}
	if err != nil {
		c.notice().failure(err)
		return 1
	}
	return 0
}

// Command builds the cobra tree.
func (c *CLI) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "domon",
		Short:         "Domain and SSL uptime dashboard",
		Long:          `domon shows the domains watched by a monitoring backend, with their status, uptime and certificate expiry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading DOMON_* variables")
	pf.StringVar(&c.flags.source, "source", "", "data source: api, fixture or payload (overrides DOMON_SOURCE)")
	pf.StringVar(&c.flags.apiURL, "api-url", "", "monitoring backend base URL (overrides DOMON_API_URL)")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "debug, info, warn or error (overrides DOMON_LOG_LEVEL)")
	pf.BoolVar(&c.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.serveCommand(),
		c.listCommand(),
		c.showCommand(),
		c.addCommand(),
		c.removeCommand(),
		c.importCommand(),
		c.checkCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.versionCommand(),
	)
	return root
}

// setup loads the dotenv file and the configuration.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.flags.noColor {
		color.NoColor = true
	}

	if err := godotenv.Load(c.flags.envFile); err != nil {
		explicit := cmd.Flags().Changed("env-file")
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", c.flags.envFile, err)
		}
	}

	cfg := config.Load()
	if c.flags.source != "" {
		cfg.Source = c.flags.source
	}
	if c.flags.apiURL != "" {
		cfg.APIURL = c.flags.apiURL
	}
	if c.flags.logLevel != "" {
		cfg.LogLevel = c.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.cfg = cfg
	c.log = c.newLogger(cfg)
	return nil
}

// open builds the gateway and a dashboard on top of it. One-shot commands
// skip the redis check cache and metrics.
func (c *CLI) open() (*dashboard.Dashboard, gateway.Gateway, error) {
	gw, err := app.NewGateway(c.cfg, c.log, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build %s source: %w", c.cfg.Source, err)
	}
	d, err := app.NewDashboard(gw, c.cfg, c.log, dashboard.Options{})
	if err != nil {
		return nil, nil, err
	}
	return d, gw, nil
}

func (c *CLI) colored() bool {
	return !c.flags.noColor && !color.NoColor
}
