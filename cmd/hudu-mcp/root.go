package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajitpratap0/hudu-mcp/pkg/config"
	"github.com/ajitpratap0/hudu-mcp/pkg/server"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = server.DefaultVersion

type flagOptions struct {
	transport string
	host      string
	port      int
	logLevel  string
	logFormat string
}

func newRootCommand(getenv func(string) string) *cobra.Command {
	var opts flagOptions

	root := &cobra.Command{
		Use:           "hudu-mcp",
		Short:         "MCP server for the Hudu documentation API",
		Long:          "hudu-mcp serves Hudu records as MCP tools and resources.\nConfiguration comes from the environment; flags override it.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Parse(getenv)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd.Flags(), &opts, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			return a.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.transport, "transport", "", "transport to serve: stdio or http (default: auto)")
	flags.StringVar(&opts.host, "host", config.DefaultHost, "HTTP listen host")
	flags.IntVar(&opts.port, "port", config.DefaultPort, "HTTP listen port")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	return root
}

// applyFlagOverrides copies only the flags set on the command line, so the
// environment keeps precedence over flag defaults.
func applyFlagOverrides(flags *pflag.FlagSet, opts *flagOptions, cfg *config.Config) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Server.Transport = config.Transport(strings.ToLower(opts.transport))
		case "host":
			cfg.Server.Host = opts.host
		case "port":
			cfg.Server.Port = opts.port
		case "log-level":
			cfg.Logging.Level = opts.logLevel
		case "log-format":
			cfg.Logging.Format = opts.logFormat
		}
	})
}
